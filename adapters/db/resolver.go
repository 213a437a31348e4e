package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"goexpect/domain/batch"
	"goexpect/domain/core"
	"goexpect/domain/dataset"
)

// dialectAdapter describes how to reach one relational engine. The adapter
// table is populated once at init and read-only afterwards.
type dialectAdapter struct {
	// driverName is the registered database/sql driver. Empty means the
	// dialect is recognized but its driver is not compiled in.
	driverName string
	buildDSN   func(cfg dataset.DBConfig) string
	// probeQuery is a cheap metadata query used for connectivity-only
	// resolution (descriptor without a table).
	probeQuery string
}

var dialects = map[dataset.Dialect]dialectAdapter{
	dataset.DialectPostgres: {
		driverName: "postgres",
		buildDSN:   postgresDSN,
		probeQuery: "SELECT table_name FROM information_schema.tables LIMIT 1",
	},
	dataset.DialectMySQL: {
		driverName: "mysql",
		buildDSN:   mysqlDSN,
		probeQuery: "SELECT table_name FROM information_schema.tables LIMIT 1",
	},
	dataset.DialectSQLite: {
		driverName: "sqlite3",
		buildDSN:   sqliteDSN,
		probeQuery: "SELECT name FROM sqlite_master LIMIT 1",
	},
	// Recognized but no driver linked in; fails with a typed error instead
	// of silently substituting a default engine.
	dataset.DialectMSSQL:  {},
	dataset.DialectOracle: {},
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Resolver materializes relational tables into batches via database/sql.
type Resolver struct {
	connectTimeout time.Duration
}

// NewResolver creates a relational source resolver.
func NewResolver() *Resolver {
	return &Resolver{connectTimeout: 10 * time.Second}
}

// Resolve opens a connection for the descriptor and reads up to rowLimit
// rows of the configured table (rowLimit <= 0 scans the whole table). An
// empty table name turns the call into a connectivity probe that returns an
// empty batch, letting callers validate credentials before choosing what to
// scan.
func (r *Resolver) Resolve(ctx context.Context, cfg dataset.DBConfig, rowLimit int) (*batch.Batch, error) {
	dialect := cfg.Dialect()
	adapter, ok := dialects[dialect]
	if !ok {
		// Graph/document stores and anything else unknown fail before any
		// connection attempt.
		return nil, core.NewUnsupportedDialectError(cfg.Type)
	}
	if adapter.driverName == "" {
		return nil, fmt.Errorf("%w: %s", core.ErrDriverUnavailable, dialect)
	}

	conn, err := sqlx.Open(adapter.driverName, adapter.buildDSN(cfg))
	if err != nil {
		return nil, core.NewSourceUnavailableError(string(dialect), err)
	}
	defer conn.Close()

	pingCtx, cancel := context.WithTimeout(ctx, r.connectTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return nil, core.NewSourceUnavailableError(string(dialect), err)
	}

	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		log.Printf("[DBResolver] connectivity probe for %s@%s", dialect, cfg.Host)
		rows, err := conn.QueryContext(ctx, adapter.probeQuery)
		if err != nil {
			return nil, core.NewSourceUnavailableError(string(dialect), err)
		}
		rows.Close()
		return batch.Empty(), nil
	}

	if !identifierPattern.MatchString(table) {
		return nil, core.NewSourceUnavailableError(string(dialect), fmt.Errorf("invalid table name %q", table))
	}

	query := fmt.Sprintf("SELECT * FROM %s", table)
	if rowLimit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, rowLimit)
	}

	log.Printf("[DBResolver] %s: %s", dialect, query)
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, core.NewSourceUnavailableError(string(dialect), err)
	}
	defer rows.Close()

	b, err := batchFromRows(rows)
	if err != nil {
		return nil, core.NewSourceUnavailableError(string(dialect), err)
	}
	return b, nil
}

// batchFromRows maps a result set row-by-row into a batch, normalizing
// driver-specific scan types to the batch value domain.
func batchFromRows(rows *sql.Rows) (*batch.Batch, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var out []batch.Row
	for rows.Next() {
		cells := make([]interface{}, len(columns))
		refs := make([]interface{}, len(columns))
		for i := range cells {
			refs[i] = &cells[i]
		}
		if err := rows.Scan(refs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(batch.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(cells[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result set: %w", err)
	}

	return batch.New(columns, out), nil
}

// normalizeValue converts driver scan types into {nil, string, float64, bool}.
func normalizeValue(v interface{}) batch.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return float64(t)
	case float64:
		return t
	case bool:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// --- connection string builders ---

// postgresDSN builds a URL-form DSN. url.UserPassword percent-encodes the
// credential components, so special characters never break the string.
func postgresDSN(cfg dataset.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	q := u.Query()
	q.Set("sslmode", "prefer")
	u.RawQuery = q.Encode()
	return u.String()
}

// mysqlDSN delegates escaping to the driver's own config formatter.
func mysqlDSN(cfg dataset.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	return mc.FormatDSN()
}

// sqliteDSN reads the file path from the host field when present, otherwise
// from the database field.
func sqliteDSN(cfg dataset.DBConfig) string {
	if strings.TrimSpace(cfg.Host) != "" {
		return cfg.Host
	}
	return cfg.Database
}
