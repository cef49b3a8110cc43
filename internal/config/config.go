package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Hindsight HindsightConfig `mapstructure:"hindsight"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// SecureCookies marks the auth cookie Secure; enable behind HTTPS.
	SecureCookies bool `mapstructure:"secure_cookies"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config configures transcript exports. An empty bucket disables them.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// HindsightConfig locates the memory service and the bank shared by all users.
type HindsightConfig struct {
	BaseURL string `mapstructure:"base_url"`
	BankID  string `mapstructure:"bank_id"`
}

// OpenAIConfig configures the chat completion provider.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// LoadConfig reads configuration from path/config.yaml and environment variables.
func LoadConfig(path string) (Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (config Config, err error) {
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, hindsight.base_url -> HINDSIGHT_BASE_URL
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	// BANK_ID and OPENAI_API_KEY are accepted without a prefix
	_ = v.BindEnv("hindsight.bank_id", "HINDSIGHT_BANK_ID", "BANK_ID")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")

	// Unmarshal only sees keys viper knows about, so every key needs a default.
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "workout_tracker")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "168h")
	v.SetDefault("hindsight.base_url", "http://localhost:8888")
	v.SetDefault("hindsight.bank_id", "workout-tracker")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file; defaults and env vars only
		err = nil
	} else if err != nil {
		return
	}

	// Durations are parsed from strings like "60m" by the mapstructure decode hook.
	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, nil
}
