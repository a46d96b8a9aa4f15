package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DefaultLanguage string
	WorkerCount     int
	OutputDir       string
	StandardDir     string
	LabelKeysPath   string
	CountryListPath string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DefaultLanguage: getEnv("SFXLATE_DEFAULT_LANG", "en_US"),
		WorkerCount:     getEnvInt("SFXLATE_WORKER_COUNT", 8),
		OutputDir:       getEnv("SFXLATE_OUTPUT_DIR", "."),
		StandardDir:     getEnv("SFXLATE_STANDARD_DIR", ""),
		LabelKeysPath:   getEnv("SFXLATE_LABEL_KEYS", ""),
		CountryListPath: getEnv("SFXLATE_COUNTRY_LIST", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
