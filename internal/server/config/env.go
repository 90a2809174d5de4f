package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is the DTO for environment variables. Parsed separately from
// Config so unset variables do not clobber earlier layers.
type envConfig struct {
	Addr           string        `env:"ADDRESS"`
	StorageAdapter string        `env:"STORAGE_ADAPTER"`
	DatabaseDSN    string        `env:"DATABASE_DSN"`
	JWTSecret      string        `env:"JWT_SECRET"`
	TokenTTL       time.Duration `env:"JWT_EXPIRATION"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL"`
	AdminLogin     string        `env:"ADMIN_LOGIN"`
	AdminPassword  string        `env:"ADMIN_PASSWORD"`
	AdminEmail     string        `env:"ADMIN_EMAIL"`
}

// parseEnv overlays settings from the environment onto config. Variables that
// are not set leave the corresponding field untouched.
func parseEnv(config *Config) {
	e := envConfig{}
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	if e.Addr != "" {
		config.Addr = e.Addr
	}
	if e.StorageAdapter != "" {
		config.StorageAdapter = e.StorageAdapter
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}
	if e.JWTSecret != "" {
		config.JWTSecret = e.JWTSecret
	}
	if e.TokenTTL != 0 {
		config.TokenTTL = e.TokenTTL
	}
	if e.SweepInterval != 0 {
		config.SweepInterval = e.SweepInterval
	}
	if e.AdminLogin != "" {
		config.AdminLogin = e.AdminLogin
	}
	if e.AdminPassword != "" {
		config.AdminPassword = e.AdminPassword
	}
	if e.AdminEmail != "" {
		config.AdminEmail = e.AdminEmail
	}
}
