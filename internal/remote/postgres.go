package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/logger"
)

var ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")

// PostgresPersister updates one row of a users table holding jsonb
// daily_intake, daily_history and recent_meals columns.
type PostgresPersister struct {
	connStr string
	table   string
	db      *sql.DB
}

// NewPostgresPersister validates connStr and prepares a connection pool.
// No connection is made until the first Persist.
func NewPostgresPersister(connStr, table string) (*PostgresPersister, error) {
	if err := ValidateConnString(connStr); err != nil {
		return nil, err
	}
	if table == "" {
		table = constants.DefaultRemoteTable
	}
	if _, err := quoteTable(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresPersister{connStr: connStr, table: table, db: db}, nil
}

func (p *PostgresPersister) Persist(ctx context.Context, userID string, update Update) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	query, args, err := buildUpdate(p.table, userID, update)
	if err != nil {
		return err
	}

	logger.Debug("Persisting remote update", "table", p.table, "fields", update.Fields())
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(p.connStr) {
			return fmt.Errorf("failed to update %s: %w (hint: try adding ?sslmode=disable to your connection string)", p.table, err)
		}
		return fmt.Errorf("failed to update %s: %w", p.table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no %s row for user %s", p.table, userID)
	}
	return nil
}

// Ping checks that the remote database is reachable.
func (p *PostgresPersister) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

func (p *PostgresPersister) Close() error {
	return p.db.Close()
}

// buildUpdate renders the UPDATE statement for the fields present in u.
// $1 is always the user id and updated_at is always set.
func buildUpdate(table, userID string, u Update) (string, []any, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return "", nil, err
	}
	values, err := u.columnValues()
	if err != nil {
		return "", nil, err
	}

	at := u.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}

	args := []any{userID}
	var sets []string
	for _, col := range u.Fields() {
		args = append(args, string(values[col]))
		sets = append(sets, fmt.Sprintf("%s = $%d::jsonb", pq.QuoteIdentifier(col), len(args)))
	}
	args = append(args, at.UTC())
	sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(ColumnUpdatedAt), len(args)))

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", quoted, strings.Join(sets, ", "))
	return query, args, nil
}

// quoteTable quotes a table name, optionally schema qualified.
func quoteTable(table string) (string, error) {
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			return "", fmt.Errorf("invalid table name %q", table)
		}
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, "."), nil
}

// hasSSLMode checks if the connection string contains an sslmode parameter key (case-insensitive).
// It supports both URL-style and DSN-style connection strings.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "sslmode") {
			return true
		}
	}
	return false
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// ValidateConnString checks that connStr is a PostgreSQL URI or DSN that
// lib/pq can parse.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	}
	return nil
}

// HasEmbeddedPassword reports whether connStr carries a password. Such
// strings belong in the OS keyring rather than in env files or flags.
func HasEmbeddedPassword(connStr string) bool {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil || u.User == nil {
			return false
		}
		_, set := u.User.Password()
		return set
	}
	for _, pair := range strings.Fields(connStr) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
			return true
		}
	}
	return false
}

// Redact masks the password in connStr for display.
func Redact(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return "postgresql"
		}
		return u.Redacted()
	}
	fields := strings.Fields(connStr)
	for i, pair := range fields {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			fields[i] = kv[0] + "=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}
