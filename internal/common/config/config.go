package config

import (
	"os"
	"strconv"

	"level-engine/internal/code"
	"level-engine/internal/mapgraph"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Environment string
	DBPath      string
	LogLevel    string

	// Параметры карты по умолчанию
	GridSize     float32
	Subdivisions float32

	// Параметры интерпретатора
	ScriptDebug  bool
	MaxCallDepth int

	// Допуск склейки вершин при импорте стен
	ImportMergeTolerance float64
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Environment:          getEnv("LEVEL_ENV", "development"),
		DBPath:               getEnv("LEVEL_DB_PATH", "data/db/level.db"),
		LogLevel:             getEnv("LEVEL_LOG_LEVEL", "info"),
		GridSize:             float32(getEnvAsFloat("LEVEL_GRID_SIZE", 30)),
		Subdivisions:         float32(getEnvAsFloat("LEVEL_SUBDIVISIONS", 1)),
		ScriptDebug:          getEnvAsBool("LEVEL_SCRIPT_DEBUG", false),
		MaxCallDepth:         getEnvAsInt("LEVEL_MAX_CALL_DEPTH", code.DefaultMaxCallDepth),
		ImportMergeTolerance: getEnvAsFloat("LEVEL_IMPORT_MERGE_TOLERANCE", 0.25),
	}
}

// NewMap создает пустую карту с параметрами сетки из конфигурации.
func (c *Config) NewMap(name string) *mapgraph.Map {
	m := mapgraph.New()
	m.Name = name
	m.GridSize = c.GridSize
	m.Subdivisions = c.Subdivisions
	return m
}

// NewSandbox создает песочницу с настройками отладки и глубины вызовов.
func (c *Config) NewSandbox() *code.Sandbox {
	sb := code.NewSandbox()
	sb.DebugMode = c.ScriptDebug
	sb.MaxCallDepth = c.MaxCallDepth
	return sb
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
