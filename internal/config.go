package internal

import (
	"contact-lab/errors"
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds the settings shared by every binary opening the contact list.
type Config struct {
	ConfirmationTimeout time.Duration `env:"CONFIRMATION_TIMEOUT,default=10s" validate:"gt=0"`
	LogLevel            string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,required=true" validate:"required"`
	BlugeFilepath       string        `env:"BLUGE_FILEPATH,required=true" validate:"required"`
}

// LoadConfig fills a config struct from the environment, preloaded from the
// given .env files when they exist, then checks its validate tags.
func LoadConfig[T any](files ...string) (T, error) {
	var config T
	_ = godotenv.Load(files...)
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return config, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return config, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}
	return config, nil
}
