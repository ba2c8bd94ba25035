package config

type Config struct {
	EnvConfig *EnvConfig
}

func NewConfig() *Config {
	return &Config{
		EnvConfig: LoadEnvConfig(),
	}
}
