// Package config loads typed configuration structs from environment
// variables.
//
// Structs declare their knobs with `env` tags (caarlos0/env syntax,
// including envDefault, required and unset). A .env file in the working
// directory is picked up once per process for local development.
//
//	type QuotaConfig struct {
//		Driver     string `env:"QUOTA_DRIVER" envDefault:"redis"`
//		DailyLimit int64  `env:"QUOTA_DAILY_LIMIT" envDefault:"200"`
//	}
//
//	var cfg QuotaConfig
//	config.MustLoad(&cfg)
//
// Loaded values are cached per type so every package sees the same
// configuration regardless of load order.
package config
