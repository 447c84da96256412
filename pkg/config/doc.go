// Package config loads typed configuration structs from environment
// variables.
//
// Configuration is declared as plain structs with `env` tags and loaded
// through Load or MustLoad. A .env file in the working directory is
// picked up automatically for local development.
//
//	type EmailConfig struct {
//		ServerToken string `env:"POSTMARK_SERVER_TOKEN,required"`
//		SenderEmail string   `env:"SENDER_EMAIL,required"`
//	}
//
//	var cfg EmailConfig
//	config.MustLoad(&cfg)
package config
