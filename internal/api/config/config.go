package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	// .env 不存在时忽略，密钥也可以直接来自环境变量
	if _, err := os.Stat(".env"); err == nil {
		if err = godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 原服务使用的环境变量名
	if secret := os.Getenv("META_APP_SECRET"); secret != "" {
		cfg.Meta.AppSecret = secret
	}
	if appID := os.Getenv("META_APP_ID"); appID != "" {
		cfg.Meta.AppID = appID
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	Cfg = &cfg

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("graph.base_url", "https://graph.facebook.com/v21.0/")
	v.SetDefault("graph.oauth_url", "https://graph.facebook.com/v21.0/oauth/access_token")
	v.SetDefault("graph.timeout", 60)
	v.SetDefault("graph.breaker_failures", 5)
	v.SetDefault("graph.breaker_open_secs", 60)
	v.SetDefault("graph.posts_page_limit", 50)
	v.SetDefault("graph.demographic_timeframe", "this_week")
	v.SetDefault("sync.schedule", "0 0 */6 * * *")
	v.SetDefault("sync.lock_ttl", 600)
	v.SetDefault("auth.issuer", "InsightLedger")
	v.SetDefault("auth.ttl_hours", 24)
}

// Validate 校验启动所需的最小配置
func (c *Config) Validate() error {
	if c.DB.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	seen := make(map[string]struct{}, len(c.Accounts))
	for _, acc := range c.Accounts {
		if acc.ID == "" {
			return errors.New("accounts[].id is required")
		}
		if _, ok := seen[acc.ID]; ok {
			return fmt.Errorf("duplicate account %s", acc.ID)
		}
		seen[acc.ID] = struct{}{}
	}
	return nil
}
