package config

import "fmt"

const dsnTemplate = "user=%s password=%s host=%s port=%d dbname=%s sslmode=%s"

type PostgresConfig struct {
	Hostname string `yaml:"host"`
	Port     int    `yaml:"port"`
	Db       string `yaml:"db"`
	User     string `yaml:"username"`
	Pswd     string `yaml:"password"`
	SSL      string `yaml:"sslmode"`
}

// DSN builds a lib/pq connection string.
func (s *PostgresConfig) DSN() string {
	return fmt.Sprintf(dsnTemplate, s.User, s.Pswd, s.Hostname, s.Port, s.Db, s.SSL)
}
