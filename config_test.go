package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"seltable/internal/dblib"
	"seltable/internal/grid"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
databases:
  shop:
    type: postgres
    database: shop_prod
    host: db.internal
    port: "5433"
    username: eve
grid:
  auto_reload: 250
  serial_column: true
  watch: 5s
telemetry:
  dsn: https://key@sentry.example.com/1
`)
	config, err := parseConfig(data)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}

	shop, ok := config.Databases["shop"]
	if !ok {
		t.Fatal("database shop missing")
	}
	if shop.Database != "shop_prod" || shop.Host != "db.internal" || shop.Port != "5433" {
		t.Errorf("shop = %+v", shop)
	}

	g := config.Grid
	if g.AutoReload != 250 || !g.SerialColumn || g.Watch != 5*time.Second {
		t.Errorf("grid = %+v", g)
	}
	// Keys missing from the file keep their defaults.
	if !g.AutoScroll || g.ScrollSpeed != 1 || g.ScrollMargin != 2 || g.BatchSize != 500 {
		t.Errorf("defaults lost: %+v", g)
	}
	if config.Telemetry.DSN != "https://key@sentry.example.com/1" {
		t.Errorf("dsn = %q", config.Telemetry.DSN)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "grid: [", "could not parse"},
		{"negative reload", "grid:\n  auto_reload: -1", "auto_reload"},
		{"negative speed", "grid:\n  scroll_speed: -2", "scroll_speed"},
		{"negative limit", "grid:\n  search_limit: -5", "search_limit"},
		{"zero batch", "grid:\n  batch_size: 0", "batch_size"},
		{"negative watch", "grid:\n  watch: -1s", "watch"},
		{"unknown type", "databases:\n  x:\n    type: oracle", "database x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	config, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config: %v", err)
	}
	if config.Grid.BatchSize != 500 {
		t.Errorf("batch size = %d, want default", config.Grid.BatchSize)
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit config file should be an error")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("grid:\n  batch_size: 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err = loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig(%s) error = %v", path, err)
	}
	if config.Grid.BatchSize != 20 {
		t.Errorf("batch size = %d, want 20", config.Grid.BatchSize)
	}
}

func TestConnection(t *testing.T) {
	config := &Config{Databases: map[string]DatabaseConfig{
		"shop":  {Type: "postgres", Database: "shop_prod", Host: "db", Username: "eve"},
		"local": {Host: "localhost"},
	}}

	tests := []struct {
		name     string
		flags    ConnectionFlags
		wantDB   string
		wantHost string
		wantUser string
		wantType *dblib.DatabaseType
	}{
		{
			name:     "shop",
			wantDB:   "shop_prod",
			wantHost: "db",
			wantUser: "eve",
			wantType: ptr(dblib.PostgreSQL),
		},
		{
			name:     "shop",
			flags:    ConnectionFlags{Host: "replica", Type: "mysql"},
			wantDB:   "shop_prod",
			wantHost: "replica",
			wantUser: "eve",
			wantType: ptr(dblib.MySQL),
		},
		{
			name:     "local",
			wantDB:   "local",
			wantHost: "localhost",
		},
		{
			name:   "data.db",
			wantDB: "data.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := config.connection(tt.name, tt.flags)
			if err != nil {
				t.Fatalf("connection() error = %v", err)
			}
			if conn.Database != tt.wantDB || conn.Host != tt.wantHost || conn.Username != tt.wantUser {
				t.Errorf("connection() = %+v", conn)
			}
			switch {
			case tt.wantType == nil && conn.TypeOverride != nil:
				t.Errorf("type override = %v, want none", *conn.TypeOverride)
			case tt.wantType != nil && (conn.TypeOverride == nil || *conn.TypeOverride != *tt.wantType):
				t.Errorf("type override = %v, want %v", conn.TypeOverride, *tt.wantType)
			}
		})
	}

	if _, err := config.connection("shop", ConnectionFlags{Type: "oracle"}); err == nil {
		t.Error("unknown type flag should be an error")
	}
}

func ptr[T any](v T) *T { return &v }

func TestGridOptions(t *testing.T) {
	g := defaultConfig().Grid
	g.AutoReload = 10
	g.ScrollSpeed = 0.5
	g.SelectFullRow = true
	g.SerialColumn = true
	g.NoSelectAll = true

	table := grid.New[dblib.Record]([]field{0, 1}, g.options()...)
	if table.RowHeight() != 1 {
		t.Errorf("row height = %v", table.RowHeight())
	}
	if table.AutoReloadThreshold() != 10 {
		t.Errorf("auto reload = %d", table.AutoReloadThreshold())
	}
	a := table.AutoScrollConfig()
	if !a.Enabled || a.MaxSpeed != 0.5 || a.Margin != 2 {
		t.Errorf("autoscroll = %+v", a)
	}
	if !table.SelectFullRow() || !table.SerialColumn() || table.HorizontalScroll() {
		t.Error("display flags not applied")
	}
	if table.CapturesSelectAll() {
		t.Error("select all capture should be off")
	}

	if opts := g.searchOptions(); opts != nil {
		t.Errorf("searchOptions() without limit = %d options", len(opts))
	}
	g.SearchLimit = 3
	if opts := g.searchOptions(); len(opts) != 1 {
		t.Errorf("searchOptions() with limit = %d options", len(opts))
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seltable")

	settings, err := loadSettings(dir)
	if err != nil {
		t.Fatalf("loadSettings() on missing dir: %v", err)
	}
	if *settings != (Settings{}) {
		t.Errorf("first run settings = %+v", settings)
	}

	settings.FirstRunComplete = true
	settings.LastDatabase = "shop"
	settings.LastTable = "orders"
	if err := settings.save(dir); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	loaded, err := loadSettings(dir)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if *loaded != *settings {
		t.Errorf("loaded %+v, saved %+v", loaded, settings)
	}
}

func TestFieldValues(t *testing.T) {
	rec := dblib.Record{int64(7), "seven", nil}

	if got := field(1).Text(rec); got != "seven" {
		t.Errorf("Text() = %q", got)
	}
	if got := field(2).Text(rec); got != dblib.NullDisplay {
		t.Errorf("Text(nil) = %q", got)
	}
	if got := field(5).Text(rec); got != "" {
		t.Errorf("Text() past the record = %q", got)
	}

	tests := []struct {
		f    field
		a, b dblib.Record
		want int
	}{
		{0, dblib.Record{int64(1)}, dblib.Record{int64(2)}, -1},
		{0, dblib.Record{int64(10)}, dblib.Record{int64(9)}, 1},
		{1, dblib.Record{0, "a"}, dblib.Record{0, "a"}, 0},
		{1, dblib.Record{0, nil}, dblib.Record{0, "a"}, -1},
		{3, dblib.Record{0}, dblib.Record{0, 1, 2, "x"}, -1},
	}
	for _, tt := range tests {
		if got := tt.f.Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("field(%d).Compare(%v, %v) = %d, want %d", tt.f, tt.a, tt.b, got, tt.want)
		}
	}
}
