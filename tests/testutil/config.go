package testutil

import (
	"time"

	"github.com/ducali/ducali-api/config"
)

// TestConfig returns a valid configuration for an in-memory test run and installs it as the process config
func TestConfig() *config.Config {
	cfg := &config.Config{
		DatabaseURL:        ":memory:",
		DBDriver:           config.DriverSQLite,
		Port:               "8080",
		GoEnv:              "test",
		Auth0Domain:        "test.auth0.local",
		Auth0Audience:      "https://api.ducali.test",
		AWSRegion:          "us-east-1",
		LogLevel:           "error",
		RequestTimeout:     5 * time.Second,
		NotifierDriver:     config.NotifierLog,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	config.SetConfig(cfg)
	return cfg
}
