package config

import (
	"duckdnsd/common"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	Service  Service        `toml:"service" json:"service" yaml:"service"`
	Log      Log            `toml:"log" json:"log" yaml:"log"`
	Provider ProviderConfig `toml:"provider" json:"provider" yaml:"provider"`
	Lookup   []LookupSource `toml:"lookup" json:"lookup" yaml:"lookup"`
	Domain   []string       `toml:"domain" json:"domain" yaml:"domain"`
}

type Service struct {
	Name       string          `toml:"name" json:"name" yaml:"name"`
	Interval   common.Duration `toml:"interval" json:"interval" yaml:"interval"`
	MaxBackoff common.Duration `toml:"max_backoff" json:"max_backoff" yaml:"max_backoff"`
	StateDir   string          `toml:"state_dir" json:"state_dir" yaml:"state_dir"`
}

type Log struct {
	Level     *zapcore.Level `toml:"level" json:"level" yaml:"level"`
	Encoding  *string        `toml:"encoding" json:"encoding" yaml:"encoding"`
	InfoPath  *[]string      `toml:"info_path" json:"info_path" yaml:"info_path"`
	ErrorPath *[]string      `toml:"error_path" json:"error_path" yaml:"error_path"`
}

type ProviderConfig struct {
	Type     string          `toml:"type" json:"type" yaml:"type"`
	Endpoint string          `toml:"endpoint" json:"endpoint" yaml:"endpoint"`
	Token    string          `toml:"token" json:"token" yaml:"token"`
	Timeout  common.Duration `toml:"timeout" json:"timeout" yaml:"timeout"`
	Verbose  *bool           `toml:"verbose" json:"verbose" yaml:"verbose"`
}

type LookupSource struct {
	Type   string         `toml:"type" json:"type" yaml:"type"`
	Source string         `toml:"source" json:"source" yaml:"source"`
	Config map[string]any `toml:"config,omitempty" json:"config,omitempty" yaml:"config,omitempty"`
}

type LookupHTTPConfig struct {
	Family  common.Family   `mapstructure:"family"`
	Timeout common.Duration `mapstructure:"timeout"`
}
