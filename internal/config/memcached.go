package config

import "time"

type MemcachedConfig struct {
	NodeHosts []string `yaml:"hosts"`
	TTL       int32    `yaml:"ttl-seconds"`
	TimeoutMs int64    `yaml:"timeout-ms"`
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}

// Expiration of stored credentials, zero keeps them until logout.
func (s *MemcachedConfig) Expiration() int32 {
	return s.TTL
}

func (s *MemcachedConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}
