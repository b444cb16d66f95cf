package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ConfigFile is looked up in the working directory and overrides
// environment values when present.
const ConfigFile = "loclint.yaml"

type Config struct {
	CorpusDir       string `yaml:"corpus_dir"`
	ScriptsDir      string `yaml:"scripts_dir"`
	Columns         int    `yaml:"columns"`
	Recursive       bool   `yaml:"recursive"`
	WorkerCount     int    `yaml:"workers"`
	WatchDebounceMS int    `yaml:"watch_debounce_ms"`
}

// fileConfig mirrors Config with optional fields so an absent key in
// the YAML file leaves the environment value alone.
type fileConfig struct {
	CorpusDir       *string `yaml:"corpus_dir"`
	ScriptsDir      *string `yaml:"scripts_dir"`
	Columns         *int    `yaml:"columns"`
	Recursive       *bool   `yaml:"recursive"`
	WorkerCount     *int    `yaml:"workers"`
	WatchDebounceMS *int    `yaml:"watch_debounce_ms"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		CorpusDir:       getEnv("LOCLINT_CORPUS_DIR", "localisation"),
		ScriptsDir:      getEnv("LOCLINT_SCRIPTS_DIR", ""),
		Columns:         getEnvInt("LOCLINT_COLUMNS", 14),
		Recursive:       getEnvBool("LOCLINT_RECURSIVE", false),
		WorkerCount:     getEnvInt("LOCLINT_WORKERS", 4),
		WatchDebounceMS: getEnvInt("LOCLINT_WATCH_DEBOUNCE_MS", 300),
	}

	if err := cfg.applyFile(ConfigFile); err != nil {
		log.Warn().Err(err).Str("file", ConfigFile).Msg("Ignoring unreadable config file")
	}
	return cfg
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.CorpusDir != nil {
		c.CorpusDir = *fc.CorpusDir
	}
	if fc.ScriptsDir != nil {
		c.ScriptsDir = *fc.ScriptsDir
	}
	if fc.Columns != nil {
		c.Columns = *fc.Columns
	}
	if fc.Recursive != nil {
		c.Recursive = *fc.Recursive
	}
	if fc.WorkerCount != nil {
		c.WorkerCount = *fc.WorkerCount
	}
	if fc.WatchDebounceMS != nil {
		c.WatchDebounceMS = *fc.WatchDebounceMS
	}
	return nil
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

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
