// Package config provides environment-based configuration.
//
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env struct tags.
// Derives environment-dependent defaults and validates the token store selection.
// The dev server adds its own checks through ValidateServer.
package config
