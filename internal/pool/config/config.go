package config

// Cfg 对应 config/pool-service.yaml
type Cfg struct {
	Name     string   `yaml:"name" mapstructure:"name"`
	Addr     string   `yaml:"addr" mapstructure:"addr"`
	LogLevel string   `yaml:"log_level" mapstructure:"log_level"`
	Db       DBConfig `yaml:"db" mapstructure:"db"`
	Redis    Redis    `yaml:"redis" mapstructure:"redis"`
	OTel     OTel     `yaml:"otel" mapstructure:"otel"`
}

type DBConfig struct {
	SourceName             string `yaml:"source_name" mapstructure:"source_name"`
	MaxOpenConns           int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `yaml:"conn_max_lifetime_seconds" mapstructure:"conn_max_lifetime_seconds"`
	AutoMigrate            bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

type Redis struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	Database     int    `yaml:"db" mapstructure:"db"`
	Auth         string `yaml:"auth" mapstructure:"auth"`
	PoolSize     int    `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
}

type OTel struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr"`
}
