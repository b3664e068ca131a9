package apitest

import (
	"max.ks1230/expense-tracker/internal/clients/api"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/model/storage"
)

const clientTimeoutSeconds = 5

// NewClient returns an API client pointed at the fake server, reading and
// clearing tokens through creds.
func (s *Server) NewClient(creds *storage.Scoped, opts ...api.Option) *api.Client {
	cfg := &config.APIConfig{URL: s.URL, TimeoutSeconds: clientTimeoutSeconds}
	return api.New(cfg, creds, opts...)
}
