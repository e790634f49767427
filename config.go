package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"seltable/internal/dblib"
	"seltable/internal/grid"
)

// Config is the contents of config.yaml. Every section is optional.
type Config struct {
	Databases map[string]DatabaseConfig `yaml:"databases"`
	Grid      GridConfig                `yaml:"grid"`
	Telemetry TelemetryConfig           `yaml:"telemetry"`
}

// DatabaseConfig is a named connection.
type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// GridConfig holds the table behavior. Scroll values are in terminal rows.
type GridConfig struct {
	AutoReload       int           `yaml:"auto_reload"`
	AutoScroll       bool          `yaml:"auto_scroll"`
	ScrollSpeed      float64       `yaml:"scroll_speed"`
	ScrollMargin     float64       `yaml:"scroll_margin"`
	SelectFullRow    bool          `yaml:"select_full_row"`
	SerialColumn     bool          `yaml:"serial_column"`
	HorizontalScroll bool          `yaml:"horizontal_scroll"`
	NoSelectAll      bool          `yaml:"no_select_all_capture"`
	SearchLimit      int           `yaml:"search_limit"`
	BatchSize        int           `yaml:"batch_size"`
	Watch            time.Duration `yaml:"watch"`
}

type TelemetryConfig struct {
	DSN string `yaml:"dsn"`
}

// ConnectionFlags are the connection settings given on the command line. They
// win over the config file.
type ConnectionFlags struct {
	Type     string
	Host     string
	Port     string
	Username string
	Password string
}

func defaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			AutoReload:   1000,
			AutoScroll:   true,
			ScrollSpeed:  1,
			ScrollMargin: 2,
			BatchSize:    500,
		},
	}
}

func defaultConfigPath() (string, error) {
	dir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file is not an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	g := c.Grid
	switch {
	case g.AutoReload < 0:
		return fmt.Errorf("grid.auto_reload must not be negative")
	case g.ScrollSpeed < 0 || g.ScrollMargin < 0:
		return fmt.Errorf("grid.scroll_speed and grid.scroll_margin must not be negative")
	case g.SearchLimit < 0:
		return fmt.Errorf("grid.search_limit must not be negative")
	case g.BatchSize <= 0:
		return fmt.Errorf("grid.batch_size must be positive")
	case g.Watch < 0:
		return fmt.Errorf("grid.watch must not be negative")
	}
	for name, db := range c.Databases {
		if db.Type == "" {
			continue
		}
		if _, err := dblib.ParseDatabaseType(db.Type); err != nil {
			return fmt.Errorf("database %s: %w", name, err)
		}
	}
	return nil
}

// connection resolves name to connection settings. A name that is not in the
// config file is used as the database name itself.
func (c *Config) connection(name string, flags ConnectionFlags) (dblib.ConnConfig, error) {
	db, ok := c.Databases[name]
	if !ok {
		db = DatabaseConfig{Database: name}
	}
	if db.Database == "" {
		db.Database = name
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&db.Type, flags.Type)
	override(&db.Host, flags.Host)
	override(&db.Port, flags.Port)
	override(&db.Username, flags.Username)
	override(&db.Password, flags.Password)

	conn := dblib.ConnConfig{
		Database: db.Database,
		Host:     db.Host,
		Port:     db.Port,
		Username: db.Username,
		Password: db.Password,
	}
	if db.Type != "" {
		dbType, err := dblib.ParseDatabaseType(db.Type)
		if err != nil {
			return conn, err
		}
		conn.TypeOverride = &dbType
	}
	return conn, nil
}

// options converts the grid section to table options. The terminal renders
// one row per line, so the row height is 1.
func (g GridConfig) options() []grid.Option {
	opts := []grid.Option{
		grid.WithRowHeight(1),
		grid.WithAutoReload(g.AutoReload),
		grid.WithAutoScroll(grid.NewAutoScroll(g.AutoScroll).
			WithMaxSpeed(g.ScrollSpeed).
			WithMargin(g.ScrollMargin)),
	}
	if g.SelectFullRow {
		opts = append(opts, grid.WithSelectFullRow())
	}
	if g.SerialColumn {
		opts = append(opts, grid.WithSerialColumn())
	}
	if g.HorizontalScroll {
		opts = append(opts, grid.WithHorizontalScroll())
	}
	if g.NoSelectAll {
		opts = append(opts, grid.WithoutSelectAllCapture())
	}
	return opts
}

// searchOptions limits searches when search_limit is set.
func (g GridConfig) searchOptions() []grid.SearchOption {
	if g.SearchLimit > 0 {
		return []grid.SearchOption{grid.WithLimit(g.SearchLimit)}
	}
	return nil
}
