// Package config loads the gateway's YAML configuration: one SQL
// connection per named service, and one resource block per exposed
// table.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the top-level gateway configuration file shape.
type File struct {
	Server   ServerConfig      `yaml:"server"`
	Logging  LoggingConfig     `yaml:"logging"`
	Services []ServiceConfig   `yaml:"services"`
	Tables   []TableConfig     `yaml:"tables"`
}

// ServerConfig controls HTTP listener behavior.
type ServerConfig struct {
	Host            string     `yaml:"host"`
	Port            int        `yaml:"port"`
	ShutdownTimeout string     `yaml:"shutdown_timeout"`
	RateLimit       int        `yaml:"rate_limit_per_minute"`
	CORS            CORSConfig `yaml:"cors"`

	// AuthSecret, when set, requires every request to carry a Bearer JWT
	// signed with this HMAC secret. Empty disables authentication.
	AuthSecret string `yaml:"auth_secret"`
}

// CORSConfig controls cross-origin resource sharing.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// ServiceConfig names one SQL connection: an engine driver plus DSN.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	Driver   string `yaml:"driver"` // sqlite | postgres | mysql | mssql
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"` // mysql: schema that scopes information_schema introspection
}

// TableConfig binds one table on one service to a named REST resource,
// mirroring Api's Config plus the DataModel options it needs at
// construction time.
type TableConfig struct {
	Service      string   `yaml:"service"`
	TableName    string   `yaml:"table_name"`
	APIName      string   `yaml:"api_name"`
	ExcludeFields []string `yaml:"exclude_fields"`

	FailOnOversizedValues  bool `yaml:"fail_on_oversized_values"`
	FailOnUpdateOnAutoinc  bool `yaml:"fail_on_update_on_autoinc"`
	FailOnInsertWithoutKey bool `yaml:"fail_on_insert_without_key"`
	UseDatesAsString       bool `yaml:"use_dates_as_string"`
	DebugOnError           bool `yaml:"debug_on_error"`

	HashidKey       string `yaml:"hashid_key"`
	HashidLength    int    `yaml:"hashid_length"`
	HashidStaticIds bool   `yaml:"hashid_static_ids"`

	CacheModifiedField string `yaml:"cache_modified_field"`
}

// Load reads and parses a gateway YAML config file. Environment
// variables referenced as ${VAR_NAME} are expanded before parsing, so
// DSNs can carry secrets without touching disk in plaintext.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	seen := make(map[string]bool, len(f.Services))
	for _, s := range f.Services {
		if s.Name == "" {
			return fmt.Errorf("config: service entry missing name")
		}
		if s.Driver == "" {
			return fmt.Errorf("config: service %q missing driver", s.Name)
		}
		seen[s.Name] = true
	}
	for _, t := range f.Tables {
		if t.TableName == "" {
			return fmt.Errorf("config: table entry missing table_name")
		}
		if !seen[t.Service] {
			return fmt.Errorf("config: table %q references unknown service %q", t.TableName, t.Service)
		}
	}
	return nil
}

// Default returns a File pre-filled with the defaults a freshly
// scaffolded gateway.yaml ships with.
func Default() *File {
	return &File{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: "30s",
			RateLimit:       600,
			CORS:            CORSConfig{Origins: []string{"*"}},
			AuthSecret:      "",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Save writes f back to path, overwriting it. Used by the resource
// add/remove CLI commands to persist edits.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
