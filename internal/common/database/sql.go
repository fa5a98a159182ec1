// internal/common/database/sql.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resto-chatbot/internal/common/config"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between the supported menu stores.
type Dialect string

const (
	DialectPostgres Dialect = config.DriverPostgres
	DialectMySQL    Dialect = config.DriverMySQL
	DialectSQLite   Dialect = config.DriverSQLite
)

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// QuoteIdent quotes a whitelisted identifier.
func (d Dialect) QuoteIdent(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// LikeOperator is the case-insensitive pattern operator. MySQL and SQLite
// compare LIKE case-insensitively already; Postgres needs ILIKE.
func (d Dialect) LikeOperator() string {
	if d == DialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// LikeExpr renders "column LIKE placeholder". Postgres casts the column to
// text so pattern filters also work on numeric columns.
func (d Dialect) LikeExpr(quotedColumn, placeholder string) string {
	if d == DialectPostgres {
		return quotedColumn + "::text ILIKE " + placeholder
	}
	return quotedColumn + " LIKE " + placeholder
}

// SQLClient wraps the SQL database connection
type SQLClient struct {
	DB      *sql.DB
	Dialect Dialect
}

// NewSQL opens the menu store for the configured driver.
func NewSQL(cfg config.SQLConfig) (*SQLClient, error) {
	driverName, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &SQLClient{DB: db, Dialect: Dialect(cfg.Driver)}, nil
}

// NewSQLFromDB wraps an already opened handle, e.g. a sqlmock connection.
func NewSQLFromDB(db *sql.DB, dialect Dialect) *SQLClient {
	return &SQLClient{DB: db, Dialect: dialect}
}

// DSN returns the database/sql driver name and connection string for cfg.
func DSN(cfg config.SQLConfig) (string, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return "postgres", cfg.GetPostgresDSN(), nil
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		mc.DBName = cfg.Database
		mc.ParseTime = true
		return "mysql", mc.FormatDSN(), nil
	case config.DriverSQLite:
		return "sqlite", cfg.Path, nil
	default:
		return "", "", fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}
}

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// QueryMaps runs query and returns each row as column/value pairs in select
// order. Driver byte slices are returned as strings.
func (c *SQLClient) QueryMaps(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[i] = Field{Name: col, Value: v}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
