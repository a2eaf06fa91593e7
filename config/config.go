package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"partsdesk/validate"
)

// Config is the top-level application configuration.
type Config struct {
	DatabasePath string `yaml:"database_path"`
	BackupDir    string `yaml:"backup_dir"`

	Web     WebConfig     `yaml:"web"`
	Company CompanyConfig `yaml:"company"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionTimeout time.Duration `yaml:"session_timeout"`
	WarningWindow  time.Duration `yaml:"warning_window"`
}

// CompanyConfig is the letterhead printed on quotes and invoices.
type CompanyConfig struct {
	Name            string   `yaml:"name"`
	DistributorLine string   `yaml:"distributor_line"`
	AddressLine1    string   `yaml:"address_line1"`
	AddressLine2    string   `yaml:"address_line2"`
	Specialties     []string `yaml:"specialties"`
	Phones          []string `yaml:"phones"`
	Email           string   `yaml:"email"`
	Website         string   `yaml:"website"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		DatabasePath: "partsdesk.db",
		BackupDir:    ".",
		Web: WebConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			SessionTimeout: time.Hour,
			WarningWindow:  5 * time.Minute,
		},
		Company: CompanyConfig{
			Name:            "Brent J. Marketing",
			DistributorLine: "Distributors of European mechanical & body parts",
			AddressLine1:    "#46 Eastern Main Road, Silver Mill",
			AddressLine2:    "Trinidad and Tobago, San Juan",
			Specialties: []string{
				"3M reflective, aluminum shapes, sheets, safety equipment",
				"Traffic and road marking signage",
				"GLOUDS water pumps & parts",
			},
			Phones:  []string{"868-675-7294", "868-713-2990", "868-743-9004"},
			Email:   "brentjmarketingcompany@yahoo.com",
			Website: "bmwpartstt.com",
		},
	}
}

// Load reads a YAML config file. If the file doesn't exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Company.Email != "" && !validate.Email(cfg.Company.Email) {
		return nil, fmt.Errorf("config: invalid company email %q", cfg.Company.Email)
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
