// Package sqlsource serves option lists, address suggestions and saved
// submissions from a SQLite database. It implements every collaborator in
// package sources and is the backend the CLI uses when given a database path.
package sqlsource

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formflow/pkg/sources"
)

const driverName = "sqlite"

// Record kinds stored in the records table.
const (
	KindForm       = "form"
	KindRepository = "repository"
)

const defaultMaxSuggestions = 30

// Store is a SQLite backed collaborator.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for query diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens dsn with the pure Go SQLite driver and applies the schema. Use
// ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlsource: dsn is required")
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlsource: open: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlsource: ping: %w", err)
	}
	s := New(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. Call Migrate before use.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Set wires the store into every slot of a sources.Set.
func (s *Store) Set() sources.Set {
	return sources.Set{
		Columns:      s,
		Repositories: s,
		Predefined:   s,
		Addresses:    s,
		Submissions:  s,
	}
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			kind     TEXT NOT NULL,
			owner_id TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_owner ON records (kind, owner_id);

		CREATE TABLE IF NOT EXISTS cells (
			record_id   INTEGER NOT NULL REFERENCES records (id) ON DELETE CASCADE,
			column_name TEXT NOT NULL,
			value       TEXT NOT NULL,
			PRIMARY KEY (record_id, column_name)
		);
		CREATE INDEX IF NOT EXISTS idx_cells_column ON cells (column_name, value);

		CREATE TABLE IF NOT EXISTS users (
			name      TEXT NOT NULL,
			email     TEXT NOT NULL DEFAULT '',
			user_type TEXT NOT NULL DEFAULT 'Normal'
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id          TEXT PRIMARY KEY,
			text        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			city        TEXT NOT NULL DEFAULT '',
			province    TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS submissions (
			workflow_id    TEXT NOT NULL,
			process_id     TEXT NOT NULL,
			transaction_id TEXT NOT NULL DEFAULT '',
			activity_id    TEXT NOT NULL DEFAULT '',
			raised_by      TEXT NOT NULL DEFAULT '',
			fields         TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (workflow_id, process_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("sqlsource: migrate: %w", err)
	}
	return nil
}

// PutRow stores one row of form formID. Cells are keyed by column id.
func (s *Store) PutRow(ctx context.Context, formID string, cells map[string]string) (int64, error) {
	return s.putRecord(ctx, KindForm, formID, cells)
}

// PutRepositoryRow stores one row of repository repositoryID.
func (s *Store) PutRepositoryRow(ctx context.Context, repositoryID string, cells map[string]string) (int64, error) {
	return s.putRecord(ctx, KindRepository, repositoryID, cells)
}

func (s *Store) putRecord(ctx context.Context, kind, ownerID string, cells map[string]string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlsource: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO records (kind, owner_id) VALUES (?, ?)`, kind, ownerID)
	if err != nil {
		return 0, fmt.Errorf("sqlsource: insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlsource: record id: %w", err)
	}
	for column, value := range cells {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cells (record_id, column_name, value) VALUES (?, ?, ?)`,
			id, column, value,
		); err != nil {
			return 0, fmt.Errorf("sqlsource: insert cell %s: %w", column, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlsource: commit: %w", err)
	}
	return id, nil
}

// PutUser adds a user to the predefined user list.
func (s *Store) PutUser(ctx context.Context, name, email, userType string) error {
	if userType == "" {
		userType = "Normal"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, user_type) VALUES (?, ?, ?)`,
		name, email, userType,
	)
	if err != nil {
		return fmt.Errorf("sqlsource: insert user: %w", err)
	}
	return nil
}

// PutAddress adds or replaces one address suggestion.
func (s *Store) PutAddress(ctx context.Context, a Address) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO addresses (id, text, description, city, province, postal_code)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			text = excluded.text,
			description = excluded.description,
			city = excluded.city,
			province = excluded.province,
			postal_code = excluded.postal_code`,
		a.ID, a.Text, a.Description, a.City, a.Province, a.PostalCode,
	)
	if err != nil {
		return fmt.Errorf("sqlsource: insert address: %w", err)
	}
	return nil
}

// PutSubmission stores or replaces the saved submission of ref.
func (s *Store) PutSubmission(ctx context.Context, ref sources.SubmissionRef, sub sources.Submission) error {
	fields := sub.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("sqlsource: encode submission: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (workflow_id, process_id, transaction_id, activity_id, raised_by, fields)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (workflow_id, process_id) DO UPDATE SET
			transaction_id = excluded.transaction_id,
			activity_id = excluded.activity_id,
			raised_by = excluded.raised_by,
			fields = excluded.fields`,
		ref.WorkflowID, ref.ProcessID, ref.TransactionID, sub.ActivityID, sub.RaisedBy, string(payload),
	)
	if err != nil {
		return fmt.Errorf("sqlsource: insert submission: %w", err)
	}
	return nil
}

// ColumnOptions implements sources.ColumnSource over the rows of formID.
func (s *Store) ColumnOptions(ctx context.Context, formID string, q sources.ColumnQuery) ([]string, error) {
	return s.distinct(ctx, KindForm, formID, q)
}

// RepositoryOptions implements sources.RepositorySource.
func (s *Store) RepositoryOptions(ctx context.Context, field, repositoryID string) ([]string, error) {
	return s.distinct(ctx, KindRepository, repositoryID, sources.ColumnQuery{Column: field})
}

// RepositoryOptionsFiltered implements sources.RepositorySource.
func (s *Store) RepositoryOptionsFiltered(ctx context.Context, repositoryID string, q sources.ColumnQuery) ([]string, error) {
	return s.distinct(ctx, KindRepository, repositoryID, q)
}

// distinct returns the non-empty values of q.Column in first-seen order,
// restricted to rows matching every filter.
func (s *Store) distinct(ctx context.Context, kind, ownerID string, q sources.ColumnQuery) ([]string, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT c.value
		FROM cells c
		JOIN records r ON r.id = c.record_id
		WHERE r.kind = ? AND r.owner_id = ? AND c.column_name = ? AND c.value <> ''`)
	args := []any{kind, ownerID, q.Column}

	for _, f := range q.Filters {
		if f.Condition != "" && f.Condition != sources.ConditionEquals {
			return nil, fmt.Errorf("sqlsource: unsupported condition %q", f.Condition)
		}
		b.WriteString(`
		AND EXISTS (
			SELECT 1 FROM cells f
			WHERE f.record_id = c.record_id AND f.column_name = ? AND f.value = ?
		)`)
		args = append(args, f.Criteria, f.Value)
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		b.WriteString(` AND c.value LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(kw)+"%")
	}
	b.WriteString(`
		GROUP BY c.value
		ORDER BY MIN(c.record_id)
		LIMIT ? OFFSET ?`)
	limit := -1
	if q.RowCount > 0 {
		limit = q.RowCount
	}
	args = append(args, limit, max(q.RowFrom, 0))

	s.logger.Debug("sqlsource: distinct values",
		zap.String("kind", kind),
		zap.String("owner", ownerID),
		zap.String("column", q.Column),
		zap.Int("filters", len(q.Filters)),
	)
	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlsource: query %s %s: %w", kind, ownerID, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("sqlsource: scan value: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlsource: read values: %w", err)
	}
	return out, nil
}

var userCriteria = map[string]string{
	"userType": "user_type",
	"email":    "email",
	"name":     "name",
}

// PredefinedList implements sources.PredefinedSource. Only the user list is
// stored; c selects users by type, email or name.
func (s *Store) PredefinedList(ctx context.Context, c sources.Criteria) ([]string, error) {
	query := `SELECT name FROM users`
	var args []any
	if c.Criteria != "" {
		column, ok := userCriteria[c.Criteria]
		if !ok {
			return nil, fmt.Errorf("sqlsource: unknown criteria %q", c.Criteria)
		}
		query += ` WHERE ` + column + ` = ?`
		args = append(args, c.Value)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlsource: query users: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlsource: scan user: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// AddressSuggestions implements sources.AddressSource with a case-insensitive
// substring match on the address text and postal code.
func (s *Store) AddressSuggestions(ctx context.Context, q sources.AddressQuery) (sources.AddressResult, error) {
	term := strings.TrimSpace(q.Query)
	if term == "" {
		return sources.AddressResult{Items: []sources.AddressItem{}}, nil
	}
	limit := q.MaxSuggestions
	if limit <= 0 {
		limit = defaultMaxSuggestions
	}
	pattern := "%" + escapeLike(term) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, description, city, province, postal_code
		FROM addresses
		WHERE text LIKE ? ESCAPE '\' OR postal_code LIKE ? ESCAPE '\'
		ORDER BY text
		LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return sources.AddressResult{}, fmt.Errorf("sqlsource: query addresses: %w", err)
	}
	defer rows.Close()

	items := []sources.AddressItem{}
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.Text, &a.Description, &a.City, &a.Province, &a.PostalCode); err != nil {
			return sources.AddressResult{}, fmt.Errorf("sqlsource: scan address: %w", err)
		}
		items = append(items, a.item())
	}
	if err := rows.Err(); err != nil {
		return sources.AddressResult{}, fmt.Errorf("sqlsource: read addresses: %w", err)
	}
	return sources.AddressResult{Items: items}, nil
}

// SavedSubmission implements sources.SubmissionSource. An empty workflow id
// matches any workflow.
func (s *Store) SavedSubmission(ctx context.Context, ref sources.SubmissionRef) (sources.Submission, error) {
	var (
		sub    sources.Submission
		fields string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT activity_id, raised_by, fields
		FROM submissions
		WHERE process_id = ? AND (? = '' OR workflow_id = ?)
		LIMIT 1`,
		ref.ProcessID, ref.WorkflowID, ref.WorkflowID,
	).Scan(&sub.ActivityID, &sub.RaisedBy, &fields)
	if errors.Is(err, sql.ErrNoRows) {
		return sources.Submission{}, fmt.Errorf("sqlsource: submission %q: %w", ref.ProcessID, sources.ErrNotFound)
	}
	if err != nil {
		return sources.Submission{}, fmt.Errorf("sqlsource: query submission: %w", err)
	}
	if err := json.Unmarshal([]byte(fields), &sub.Fields); err != nil {
		return sources.Submission{}, fmt.Errorf("sqlsource: decode submission %q: %w", ref.ProcessID, err)
	}
	return sub, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
