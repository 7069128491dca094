package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	LogLevel     string
	Storage      string
	DB           DBConfig
	SubjectsFile string
	SessionKey   string
	MeetBaseURL  string
	BcryptCost   int
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Load reads .env when present, then the process environment. Variables already set
// in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Storage:  strings.ToLower(getEnv("STORAGE", "postgres")),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "classplan"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SubjectsFile: getEnv("SUBJECTS_FILE", "subjects.csv"),
		SessionKey:   getEnv("SESSION_KEY", ""),
		MeetBaseURL:  getEnv("MEET_BASE_URL", "https://meet.google.com/"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10),
	}
}

func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}
