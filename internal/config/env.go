package config

import (
	"os"
	"strconv"
)

// FromEnv applies environment overrides on top of cfg.
func FromEnv(cfg *Config) *Config {
	if v := os.Getenv("FLOWPRINT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("FLOWPRINT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FLOWPRINT_DELETE_POLICY"); v != "" {
		cfg.Tasks.DeletePolicy = v
	}
	if v := getEnvInt("FLOWPRINT_MAX_COLUMNS"); v > 0 {
		cfg.Columns.Max = v
	}
	if v := getEnvInt("FLOWPRINT_PRINTER_WIDTH"); v > 0 {
		cfg.Printer.Width = v
	}
	if v := os.Getenv("FLOWPRINT_PRINTER_DEVICE"); v != "" {
		cfg.Printer.DevicePath = v
	}
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
