package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"fidelity-backend/internal/table"
)

var (
	// ErrUnsupportedType is returned for source types other than postgres and sqlite.
	ErrUnsupportedType = errors.New("unsupported data source type")
	// ErrUnknownTable is returned when a requested table is not listed by the source.
	ErrUnknownTable = errors.New("unknown table")
)

// Config holds connection details
type Config struct {
	Type     string `json:"type" toml:"type"` // "postgres", "sqlite"
	Host     string `json:"host" toml:"host"`
	Port     int    `json:"port" toml:"port"`
	User     string `json:"user" toml:"user"`
	Password string `json:"password" toml:"password"`
	DBName   string `json:"dbname" toml:"dbname"`
	SSLMode  string `json:"sslmode" toml:"sslmode"` // "disable", "require"
	// DSN overrides the fields above; for sqlite it is the database file path.
	DSN string `json:"dsn" toml:"dsn"`
}

// DataSource loads tables from a database
type DataSource interface {
	Close() error
	ListTables(ctx context.Context) ([]string, error)
	LoadTable(ctx context.Context, name string, limit int) (*table.Table, error)
}

// SQLSource implements DataSource over database/sql
type SQLSource struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

var _ DataSource = (*SQLSource)(nil)

type dialect struct {
	driver     string
	listTables string
}

var dialects = map[string]dialect{
	"postgres": {
		driver: "postgres",
		listTables: `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = 'public'
			ORDER BY table_name;
		`,
	},
	"sqlite": {
		driver: "sqlite",
		listTables: `
			SELECT name
			FROM sqlite_master
			WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
			ORDER BY name;
		`,
	},
}

// Open connects to the configured source and verifies the connection.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*SQLSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kind := strings.ToLower(config.Type)
	d, ok := dialects[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, config.Type)
	}

	db, err := sql.Open(d.driver, connString(kind, config))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", kind, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", kind, err)
	}

	logger.Info("data source connected", "type", kind, "database", config.DBName)
	return &SQLSource{db: db, dialect: d, logger: logger}, nil
}

func connString(kind string, config Config) string {
	if config.DSN != "" {
		return config.DSN
	}
	if kind == "sqlite" {
		return config.DBName
	}
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, sslMode)
}

func (s *SQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.listTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// LoadTable reads up to limit rows (all when limit <= 0) of a listed table.
// The name is checked against ListTables before it is quoted into the query.
func (s *SQLSource) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(tables, name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}

	query := "SELECT * FROM " + quoteIdent(name)
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records [][]string
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make([]string, len(columns))
		for i, val := range values {
			record[i] = cellString(val)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("table loaded", "table", name, "rows", len(records), "columns", len(columns))
	return table.New(name, columns, records), nil
}

// cellString renders a scanned driver value as CSV-like text. NULL becomes empty.
func cellString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return fmt.Sprint(val)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
