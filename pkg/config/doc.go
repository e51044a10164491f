// Package config loads typed configuration structs from environment
// variables.
//
// Structs declare their surface with `env` tags (caarlos0/env); a .env file is
// loaded once on first use via godotenv so local development needs no shell
// exports. Each config type is parsed at most once per process and cached, so
// independent components can call Load for the same type without re-reading
// the environment.
//
//	type HTTPConfig struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg HTTPConfig
//	config.MustLoad(&cfg)
package config
