package config

type TelegramConfig struct {
	ApiToken       string `yaml:"token"`
	UpdateTimeout  int    `yaml:"update-timeout"`
	HandlerSeconds int64  `yaml:"handler-timeout-seconds"`
}

func (t *TelegramConfig) Token() string {
	return t.ApiToken
}

func (t *TelegramConfig) PollTimeout() int {
	if t.UpdateTimeout <= 0 {
		return 60
	}
	return t.UpdateTimeout
}

func (t *TelegramConfig) HandlerTimeoutSeconds() int64 {
	if t.HandlerSeconds <= 0 {
		return 10
	}
	return t.HandlerSeconds
}
