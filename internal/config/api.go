package config

import "time"

type APIConfig struct {
	URL            string `yaml:"base-url"`
	TimeoutSeconds int64  `yaml:"timeout-seconds"`
}

func (a *APIConfig) BaseURL() string {
	return a.URL
}

// Timeout of zero means requests wait until the transport resolves them.
func (a *APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}
