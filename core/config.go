package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		AppName  string

		SecretKey string
		Build     string

		Server   ServerConfig
		Database DatabaseConfig

		SendgridApiKey   string
		DefaultFromEmail string
		RollbarToken     string

		OpenRouter OpenRouterConfig

		// DefaultPassword is assigned to roster members created without an
		// explicit password.
		DefaultPassword string
	}

	ServerConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	OpenRouterConfig struct {
		ApiKey  string
		Model   string
		ApiURL  string
		Referer string
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the configuration from the environment, overlaying a
// config/.env.<env> file if one exists.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "TaskBoard")
	v.SetDefault("secretKey", "jwt-secret-key-change-in-production")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("defaultPassword", "123456")

	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "taskboard")
	v.SetDefault("dbUser", "taskboard")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("openRouterModel", "openai/gpt-4o")
	v.SetDefault("openRouterApiUrl", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("openRouterReferer", "https://taskboard.example.com")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:    v.GetBool("debug"),
		TestMode: strings.EqualFold(env, "TEST"),
		Env:      env,
		AppName:  v.GetString("appName"),

		SecretKey: v.GetString("secretKey"),
		Build:     v.GetString("build"),

		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetInt("serverPort"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetInt("dbPort"),
			Name:       v.GetString("dbName"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			DisableTLS: v.GetBool("dbDisableTLS"),
		},

		SendgridApiKey:   v.GetString("sendgridApiKey"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		RollbarToken:     v.GetString("rollbarToken"),

		OpenRouter: OpenRouterConfig{
			ApiKey:  v.GetString("openRouterApiKey"),
			Model:   v.GetString("openRouterModel"),
			ApiURL:  v.GetString("openRouterApiUrl"),
			Referer: v.GetString("openRouterReferer"),
		},

		DefaultPassword: v.GetString("defaultPassword"),
	}
}

// NewTestConfig returns a Config suitable for unit tests; no env loading.
func NewTestConfig() *Config {
	return &Config{
		Debug:    true,
		TestMode: true,
		Env:      "TEST",
		AppName:  "TaskBoard",

		SecretKey: "secret",
		Server: ServerConfig{
			Host:               "localhost",
			Port:               8000,
			JWTExpirationDelta: 10 * time.Minute,
		},
		DefaultFromEmail: "noreply@localhost",
		DefaultPassword:  "123456",
	}
}
