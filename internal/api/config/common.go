package config

// Config 配置主体
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	DB       DBConfig        `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Logstash LogstashConfig  `mapstructure:"logstash"`
	Graph    GraphConfig     `mapstructure:"graph"`
	Meta     MetaAppConfig   `mapstructure:"meta"`
	Accounts []AccountConfig `mapstructure:"accounts"`
	Sync     SyncConfig      `mapstructure:"sync"`
	Auth     AuthConfig      `mapstructure:"auth"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogstashConfig 远程日志配置，地址为空时只输出到 stdout
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// GraphConfig 上游 Graph API 配置
type GraphConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	OAuthURL         string `mapstructure:"oauth_url"`
	Timeout          int    `mapstructure:"timeout"`
	BreakerFailures  uint32 `mapstructure:"breaker_failures"`
	BreakerOpenSecs  int    `mapstructure:"breaker_open_secs"`
	PostsPageLimit   int    `mapstructure:"posts_page_limit"`
	DemographicRange string `mapstructure:"demographic_timeframe"`
}

// MetaAppConfig Meta 应用凭据，用于交换长期 token
type MetaAppConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
}

// AccountConfig 需要同步的账号
type AccountConfig struct {
	ID             string `mapstructure:"id"`
	AccessToken    string `mapstructure:"access_token"`
	LongLivedToken string `mapstructure:"long_lived_token"`
}

// SyncConfig 定时同步配置
type SyncConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
	LockTTL  int    `mapstructure:"lock_ttl"`
}

// AuthConfig 运维接口鉴权配置
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	TTLHours  int    `mapstructure:"ttl_hours"`
}

// FindAccount 根据账号 ID 查找配置
func (c *Config) FindAccount(id string) (AccountConfig, bool) {
	for _, acc := range c.Accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return AccountConfig{}, false
}
