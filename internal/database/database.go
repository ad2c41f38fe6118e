package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/trinodb/trino-go-client/trino"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/zdziszkee/swift-codes-catalog/internal/logging"
)

const (
	TypeTrino  = "trino"
	TypeSQLite = "sqlite"
	TypeMemory = "memory"
)

var ErrUnsupportedType = errors.New("unsupported database type")

//go:embed schema/*.sql
var schemas embed.FS

// Config holds configuration for the SWIFT code store
type Config struct {
	Type              string            `koanf:"type"`
	ServerURI         string            `koanf:"server_uri"`
	Catalog           string            `koanf:"catalog"`
	Schema            string            `koanf:"schema"`
	TableName         string            `koanf:"table_name"`
	Path              string            `koanf:"path"`
	SchemaFile        string            `koanf:"schema_file"`
	SessionProperties map[string]string `koanf:"session_properties"`
	ExtraCredentials  map[string]string `koanf:"extra_credentials"`
	MaxOpenConns      int               `koanf:"max_open_conns"`
	MaxIdleConns      int               `koanf:"max_idle_conns"`
	ConnMaxLifetime   time.Duration     `koanf:"conn_max_lifetime"`
	ConnectTimeout    time.Duration     `koanf:"connect_timeout"`
}

// Database provides a database/sql connection to Trino or SQLite
type Database struct {
	*sql.DB
	Config Config
	log    zerolog.Logger
}

// Wrap builds a Database around an already opened connection.
func Wrap(db *sql.DB, config Config, logger zerolog.Logger) *Database {
	return &Database{
		DB:     db,
		Config: config,
		log:    logging.Component(logger, "database"),
	}
}

// New opens a connection for config.Type, waits for it to answer and bootstraps the schema
func New(ctx context.Context, config Config, logger zerolog.Logger) (*Database, error) {
	driver, dsn, err := dataSource(config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", config.Type, err)
	}

	if config.Type == TypeSQLite {
		// modernc sqlite serialises writers; one connection keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(config.MaxOpenConns)
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	database := Wrap(db, config, logger)

	if err := database.waitReady(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := database.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return database, nil
}

func dataSource(config Config) (driver, dsn string, err error) {
	switch config.Type {
	case TypeTrino:
		trinoConfig := &trino.Config{
			ServerURI:         config.ServerURI,
			Source:            "swift-codes",
			Catalog:           config.Catalog,
			Schema:            config.Schema,
			SessionProperties: config.SessionProperties,
			ExtraCredentials:  config.ExtraCredentials,
		}
		dsn, err := trinoConfig.FormatDSN()
		if err != nil {
			return "", "", fmt.Errorf("failed to build Trino DSN: %w", err)
		}
		return "trino", dsn, nil
	case TypeSQLite:
		path := config.Path
		if path == "" {
			path = ":memory:"
		}
		return "sqlite", path, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, config.Type)
	}
}

// waitReady pings until the server answers or ConnectTimeout elapses.
// Trino coordinators take a while to accept queries after the container starts.
func (db *Database) waitReady(ctx context.Context) error {
	timeout := db.Config.ConnectTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		db.log.Debug().Err(err).Msg("database not ready yet")

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to ping %s: %w", db.Config.Type, err)
		case <-ticker.C:
		}
	}
}

// QualifiedTableName returns the table name as it appears in statements.
func (db *Database) QualifiedTableName() string {
	if db.Config.Type == TypeTrino {
		return fmt.Sprintf("%s.%s.%s", db.Config.Catalog, db.Config.Schema, db.Config.TableName)
	}
	return db.Config.TableName
}

// Bootstrap creates the table from Config.SchemaFile, or from the embedded
// schema of the configured dialect when no file is set.
func (db *Database) Bootstrap(ctx context.Context) error {
	if db.Config.SchemaFile != "" {
		return db.ExecuteSchema(ctx, db.Config.SchemaFile)
	}

	schemaSQL, err := schemas.ReadFile("schema/" + db.Config.Type + ".sql")
	if err != nil {
		return fmt.Errorf("%w: no embedded schema for %s", ErrUnsupportedType, db.Config.Type)
	}
	return db.ExecuteSchemaSQL(ctx, string(schemaSQL))
}

// ExecuteSchema loads and executes a schema file
func (db *Database) ExecuteSchema(ctx context.Context, filePath string) error {
	db.log.Info().Str("file", filePath).Msg("executing schema")

	schemaSQL, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return db.ExecuteSchemaSQL(ctx, string(schemaSQL))
}

// ExecuteSchemaSQL expands the {{table}}, {{table_name}} and {{schema}}
// placeholders and executes each statement on its own.
func (db *Database) ExecuteSchemaSQL(ctx context.Context, schemaSQL string) error {
	schemaSQL = db.expand(schemaSQL)

	// Trino does not support multi-statement execution
	for _, query := range strings.Split(schemaSQL, ";") {
		query = strings.TrimSpace(query)
		if query == "" || isComment(query) {
			continue
		}

		db.log.Debug().Str("query", query).Msg("executing schema statement")
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
		}
	}

	db.log.Info().Str("table", db.QualifiedTableName()).Msg("schema successfully executed")
	return nil
}

func (db *Database) expand(schemaSQL string) string {
	schema := db.Config.Schema
	if db.Config.Type == TypeTrino {
		schema = db.Config.Catalog + "." + db.Config.Schema
	}
	return strings.NewReplacer(
		"{{table}}", db.QualifiedTableName(),
		"{{table_name}}", db.Config.TableName,
		"{{schema}}", schema,
	).Replace(schemaSQL)
}

// isComment reports whether every line of the statement is a -- comment.
func isComment(query string) bool {
	for _, line := range strings.Split(query, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
