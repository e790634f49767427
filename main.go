package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"seltable/internal/dblib"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "seltable [database] [table]",
	Short: "seltable browses database tables with mouse selection",
	Long: `seltable shows a table or query result as a sortable, searchable grid.
Drag with the mouse to select a rectangle of cells, hold ctrl to add to the
selection and press y to copy it as tab separated text.

Examples:
  seltable shop.db users
  seltable shop -c "select id, name from users where active"
  seltable shop orders --watch 5s`,
	Args:          cobra.MaximumNArgs(2),
	RunE:          runSeltable,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flags      ConnectionFlags
	command    string
	configPath string
	gridFlags  GridConfig
)

func init() {
	f := rootCmd.Flags()
	f.BoolP("help", "", false, "help for seltable")
	f.StringVarP(&flags.Host, "host", "h", "", "Database host")
	f.StringVarP(&flags.Port, "port", "p", "", "Database port")
	f.StringVarP(&flags.Username, "username", "U", "", "Database username")
	f.StringVarP(&flags.Password, "password", "W", "", "Database password")
	f.StringVarP(&flags.Type, "type", "t", "", "Database type: sqlite, postgres or mysql")
	f.StringVarP(&command, "command", "c", "", "SELECT query to show instead of a table")
	f.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/seltable/config.yaml)")

	f.IntVar(&gridFlags.AutoReload, "auto-reload", 0, "Re-sort after this many loaded rows, 0 to sort once at the end")
	f.BoolVar(&gridFlags.AutoScroll, "auto-scroll", true, "Scroll while dragging near the top or bottom edge")
	f.Float64Var(&gridFlags.ScrollSpeed, "scroll-speed", 0, "Rows scrolled per tick while dragging at an edge")
	f.BoolVar(&gridFlags.SelectFullRow, "full-row", false, "Select whole rows")
	f.BoolVar(&gridFlags.SerialColumn, "serial", false, "Show row numbers")
	f.BoolVar(&gridFlags.HorizontalScroll, "horizontal", false, "Scroll columns horizontally instead of clipping")
	f.IntVar(&gridFlags.SearchLimit, "search-limit", 0, "Stop searching after this many matches")
	f.IntVar(&gridFlags.BatchSize, "batch", 0, "Rows read per batch")
	f.DurationVar(&gridFlags.Watch, "watch", 0, "Re-read the rows at this interval")
}

// applyGridFlags copies the grid flags the user set over the config file.
func applyGridFlags(cmd *cobra.Command, g *GridConfig) {
	changed := cmd.Flags().Changed
	if changed("auto-reload") {
		g.AutoReload = gridFlags.AutoReload
	}
	if changed("auto-scroll") {
		g.AutoScroll = gridFlags.AutoScroll
	}
	if changed("scroll-speed") {
		g.ScrollSpeed = gridFlags.ScrollSpeed
	}
	if changed("full-row") {
		g.SelectFullRow = gridFlags.SelectFullRow
	}
	if changed("serial") {
		g.SerialColumn = gridFlags.SerialColumn
	}
	if changed("horizontal") {
		g.HorizontalScroll = gridFlags.HorizontalScroll
	}
	if changed("search-limit") {
		g.SearchLimit = gridFlags.SearchLimit
	}
	if changed("batch") {
		g.BatchSize = gridFlags.BatchSize
	}
	if changed("watch") {
		g.Watch = gridFlags.Watch
	}
}

func runSeltable(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	applyGridFlags(cmd, &config.Grid)
	if err := config.validate(); err != nil {
		return err
	}

	settingsDir, err := getConfigDir()
	if err != nil {
		return err
	}
	settings, err := loadSettings(settingsDir)
	if err != nil {
		return err
	}
	if settings.TelemetryEnabled {
		if err := initTelemetry(config.Telemetry.DSN); err != nil {
			debugLog("telemetry disabled: %v\n", err)
		}
		defer flushTelemetry()
	}

	var dbName, table string
	switch len(args) {
	case 2:
		dbName, table = args[0], args[1]
	case 1:
		dbName = args[0]
	default:
		if settings.LastDatabase == "" {
			return errors.New("must specify a database name")
		}
		dbName, table = settings.LastDatabase, settings.LastTable
	}

	ctx := context.Background()
	db, dbType, err := connect(ctx, config, dbName)
	if err != nil {
		captureError(err)
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	var rel *dblib.Relation
	if command != "" {
		rel, err = dblib.NewQueryRelation(ctx, db, dbType, command)
	} else {
		if len(args) < 2 {
			if table, err = pickTable(ctx, db, dbType, table); err != nil || table == "" {
				return err
			}
		}
		rel, err = dblib.NewRelation(db, dbType, table)
	}
	if err != nil {
		return err
	}

	settings.FirstRunComplete = true
	settings.LastDatabase = dbName
	if command == "" {
		settings.LastTable = table
	}
	if err := settings.save(settingsDir); err != nil {
		debugLog("could not save settings: %v\n", err)
	}

	return run(ctx, rel, config.Grid, fmt.Sprintf("%s %s", dbType, displayName(dbName, rel)))
}

func run(ctx context.Context, rel *dblib.Relation, conf GridConfig, title string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := newLoader(rel, conf.BatchSize, conf.Watch)
	model := newModel(rel, conf, title, l.request)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go l.run(ctx, p.Send)

	if _, err := p.Run(); err != nil {
		captureError(err)
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// connect opens dbName. A name that is neither configured, typed nor a SQLite
// file is tried as a PostgreSQL and then a MySQL database on localhost.
func connect(ctx context.Context, config *Config, dbName string) (*sql.DB, dblib.DatabaseType, error) {
	conn, err := config.connection(dbName, flags)
	if err != nil {
		return nil, 0, err
	}
	if conn.TypeOverride != nil || conn.DetectType() == dblib.SQLite {
		return dblib.Open(ctx, conn)
	}

	var errs []error
	for _, dbType := range []dblib.DatabaseType{dblib.PostgreSQL, dblib.MySQL} {
		attempt := conn
		attempt.TypeOverride = &dbType
		db, opened, err := dblib.Open(ctx, attempt)
		if err == nil {
			return db, opened, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", dbType, err))
	}
	return nil, 0, errors.Join(errs...)
}

func pickTable(ctx context.Context, db *sql.DB, dbType dblib.DatabaseType, last string) (string, error) {
	tables, err := dblib.ListTables(ctx, db, dbType)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", errors.New("database has no tables")
	}

	final, err := tea.NewProgram(NewFuzzySelector(tables, last), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return "", fmt.Errorf("error running table picker: %w", err)
	}
	return final.(FuzzySelector).Chosen(), nil
}

func displayName(dbName string, rel *dblib.Relation) string {
	name := filepath.Base(dbName)
	switch {
	case rel.IsCustomSQL:
		return name + " query"
	case rel.Name != "":
		return name + "." + rel.Name
	}
	return name
}
