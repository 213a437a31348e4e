package dataset

import "strings"

// Dialect identifies a relational database engine.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectMSSQL    Dialect = "mssql"
	DialectOracle   Dialect = "oracle"
)

// DBConfig describes a relational table source.
type DBConfig struct {
	Type     string `json:"type"` // postgres, mysql, sqlite, mssql, oracle
	Host     string `json:"host"`
	Port     string `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Table    string `json:"table"`
}

// Dialect normalizes the free-form connection type into a Dialect.
// Matching is substring-based so "PostgreSQL" and "postgres" both map to
// DialectPostgres, mirroring how users type connection kinds.
func (c DBConfig) Dialect() Dialect {
	kind := strings.ToLower(strings.TrimSpace(c.Type))
	switch {
	case strings.Contains(kind, "postgres"):
		return DialectPostgres
	case strings.Contains(kind, "mysql"):
		return DialectMySQL
	case strings.Contains(kind, "sqlite"):
		return DialectSQLite
	case strings.Contains(kind, "sql server"), strings.Contains(kind, "mssql"):
		return DialectMSSQL
	case strings.Contains(kind, "oracle"):
		return DialectOracle
	default:
		return Dialect(kind)
	}
}

// Descriptor identifies where a dataset lives: either a file-backed table or
// a relational table. Exactly one of FilePath and DB is set. Immutable once
// resolved for a run.
type Descriptor struct {
	FilePath string    `json:"file_path,omitempty"`
	DB       *DBConfig `json:"db,omitempty"`
}

// IsFile reports whether the descriptor names a file-backed source.
func (d Descriptor) IsFile() bool {
	return strings.TrimSpace(d.FilePath) != ""
}

// IsRelational reports whether the descriptor names a relational source.
func (d Descriptor) IsRelational() bool {
	return d.DB != nil
}
