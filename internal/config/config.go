package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr    string        `yaml:"addr" json:"addr"`
	DataDir string        `yaml:"data_dir" json:"data_dir"`
	Tasks   TasksConfig   `yaml:"tasks" json:"tasks"`
	Columns ColumnsConfig `yaml:"columns" json:"columns"`
	Printer PrinterConfig `yaml:"printer" json:"printer"`
}

type TasksConfig struct {
	// DeletePolicy: "orphan" (default), "cascade" or "reparent".
	DeletePolicy string `yaml:"delete_policy" json:"delete_policy"`
}

type ColumnsConfig struct {
	// Max caps the drill-down board width.
	Max int `yaml:"max" json:"max"`
}

type PrinterConfig struct {
	// Width is the printable character count per receipt line.
	Width int    `yaml:"width" json:"width"`
	Title string `yaml:"title" json:"title"`
	// DevicePath points at the raw printer device (e.g. /dev/usb/lp0).
	// Empty means spool to a file under the data dir instead.
	DevicePath string `yaml:"device_path" json:"device_path"`
}

func Default() *Config {
	return &Config{
		Addr:    ":8090",
		DataDir: "data",
		Tasks:   TasksConfig{DeletePolicy: "orphan"},
		Columns: ColumnsConfig{Max: 5},
		Printer: PrinterConfig{Width: 32, Title: "FLOWPRINT"},
	}
}

// Load reads a YAML config over the defaults. A missing file is not an
// error; you get the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
