package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		DisableReqLogs            bool
	}

	UpstreamConfig struct {
		BaseURL   string
		Timeout   time.Duration
		LoginPath string
	}

	DatabaseConfig struct {
		Engine string // sqlite | postgres
		DSN    string
	}

	ListingConfig struct {
		DefaultPageSize int
		MaxPageSize     int
		MaxVisiblePages int
		SnapshotTTL     time.Duration
		SessionTTL      time.Duration // used when the upstream token carries no expiry
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Upstream UpstreamConfig
		Database DatabaseConfig
		Listing  ListingConfig
	}
)

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values come from defaults, then config/.env.<env> if present, then the environment
// (eg. DEV_UPSTREAM_BASEURL overrides upstream.baseURL).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "CampusDesk")
	conf.SetDefault("build", "dev")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("secretKey", "k2#f9v!mt0q-7xw_campusdesk-dev-only-rj3z&8n")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 8*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 24*time.Hour)
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("upstream.baseURL", "http://localhost:5000/api")
	conf.SetDefault("upstream.timeout", 15*time.Second)
	conf.SetDefault("upstream.loginPath", "/admin/login")

	conf.SetDefault("database.engine", "sqlite")
	conf.SetDefault("database.dsn", "file:campusdesk.db?_pragma=busy_timeout(5000)&_time_format=sqlite")

	conf.SetDefault("listing.defaultPageSize", 10)
	conf.SetDefault("listing.maxPageSize", 100)
	conf.SetDefault("listing.maxVisiblePages", 5)
	conf.SetDefault("listing.snapshotTTL", 2*time.Minute)
	conf.SetDefault("listing.sessionTTL", 24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Address:                   conf.GetString("server.address"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
			DisableReqLogs:            conf.GetBool("server.disableReqLogs"),
		},
		Upstream: UpstreamConfig{
			BaseURL:   conf.GetString("upstream.baseURL"),
			Timeout:   conf.GetDuration("upstream.timeout"),
			LoginPath: conf.GetString("upstream.loginPath"),
		},
		Database: DatabaseConfig{
			Engine: conf.GetString("database.engine"),
			DSN:    conf.GetString("database.dsn"),
		},
		Listing: ListingConfig{
			DefaultPageSize: conf.GetInt("listing.defaultPageSize"),
			MaxPageSize:     conf.GetInt("listing.maxPageSize"),
			MaxVisiblePages: conf.GetInt("listing.maxVisiblePages"),
			SnapshotTTL:     conf.GetDuration("listing.snapshotTTL"),
			SessionTTL:      conf.GetDuration("listing.sessionTTL"),
		},
	}
}
