package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avelichko/notekeeper/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. Durations are plain integers (minutes for the token
// lifetime, seconds for the poll interval) so the file stays editable
// by hand.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into
// the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	BindAddr                    string `json:"bind_addr"`
	DatabaseDSN                 string `json:"database_dsn"`
	SecretKey                   string `json:"secret_key"`
	TokenValidityMinutes        int    `json:"token_validity_minutes"`
	ReminderPollIntervalSeconds int    `json:"reminder_poll_interval_seconds"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. Non-zero values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BindAddr != "" {
		cfg.BindAddr = jc.BindAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.TokenValidityMinutes > 0 {
		cfg.TokenValidityDuration = time.Duration(jc.TokenValidityMinutes) * time.Minute
	}
	if jc.ReminderPollIntervalSeconds > 0 {
		cfg.ReminderPollInterval = time.Duration(jc.ReminderPollIntervalSeconds) * time.Second
	}
}
