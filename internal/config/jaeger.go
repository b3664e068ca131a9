package config

type JaegerConfig struct {
	Service   string `yaml:"service-name"`
	AgentHost string `yaml:"agent-host-port"`
	Disabled  bool   `yaml:"disabled"`
}

func (j *JaegerConfig) ServiceName() string {
	return j.Service
}

func (j *JaegerConfig) AgentHostPort() string {
	return j.AgentHost
}

func (j *JaegerConfig) IsDisabled() bool {
	return j.Disabled
}
