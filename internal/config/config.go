package config

import (
	"github.com/joho/godotenv"
)

type PGConfig interface {
	DSN() string
}

type HTTPConfig interface {
	Address() string
}

type LogConfig interface {
	Level() string
}

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}
