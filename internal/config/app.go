package config

import "time"

const (
	StoreMemory    = "memory"
	StoreMemcached = "memcached"
	StorePostgres  = "postgres"
)

type AppConfig struct {
	Store    string `yaml:"credential-store"`
	Metrics  string `yaml:"metrics-addr"`
	TimeZone string `yaml:"location"`
}

func (s *AppConfig) CredentialStore() string {
	return s.Store
}

func (s *AppConfig) MetricsAddr() string {
	return s.Metrics
}

// Location is used for month boundaries, UTC when the zone is unknown.
func (s *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
