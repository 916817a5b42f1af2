package pgdb

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/internal/log"
)

var _ trial.Database = (*Client)(nil)

const driverName = "postgres"

type Config struct {
	Host          string
	Port          int
	User          string
	Password      string
	SSLMode       string
	MaintenanceDB string
}

// DSN renders a libpq key/value connection string for the given database.
func (c Config) DSN(database string) string {
	params := map[string]string{
		"dbname": database,
	}
	if c.Host != "" {
		params["host"] = c.Host
	}
	if c.Port != 0 {
		params["port"] = strconv.Itoa(c.Port)
	}
	if c.User != "" {
		params["user"] = c.User
	}
	if c.Password != "" {
		params["password"] = c.Password
	}
	if c.SSLMode != "" {
		params["sslmode"] = c.SSLMode
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quoteValue(params[k]))
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

type conn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Close() error
}

// Client prepares the upgrade database through the server's maintenance database.
type Client struct {
	cfg     Config
	connect func(ctx context.Context, dsn string) (conn, error)
}

func New(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		connect: open,
	}
}

func open(ctx context.Context, dsn string) (conn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Recreate drops the database if it exists and creates it empty.
func (c *Client) Recreate(ctx context.Context, name string) error {
	return c.exec(ctx, c.cfg.MaintenanceDB,
		"DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(name),
		"CREATE DATABASE "+pq.QuoteIdentifier(name),
	)
}

// InstallExtension (re)creates the extension in the database with the currently installed binaries.
func (c *Client) InstallExtension(ctx context.Context, database, extension string) error {
	return c.exec(ctx, database,
		"DROP EXTENSION IF EXISTS "+pq.QuoteIdentifier(extension)+" CASCADE",
		"CREATE EXTENSION "+pq.QuoteIdentifier(extension),
	)
}

func (c *Client) exec(ctx context.Context, database string, statements ...string) error {
	db, err := c.connect(ctx, c.cfg.DSN(database))
	if err != nil {
		return fmt.Errorf("unable to connect to database %q: %w", database, err)
	}
	defer log.CloseAndLogError(db, "database "+database)

	for _, stmt := range statements {
		log.Debugf("database %s: %s", database, stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
