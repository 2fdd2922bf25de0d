package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// filePragmas apply to every pooled connection of a file database.
const filePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Settings keys stored in app_settings.
const (
	keySelectedProject = "selected_project_id"
	keyExpanded        = "expanded"
	keyMineOnly        = "mine_only"
)

var _ app.SettingsStore = (*Repository)(nil)

// Repository represents repository data used by this package.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, fileDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Board toggles save from concurrent commands; one connection keeps writers in line.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return newRepository(db)
}

// fileDSN appends the connection pragmas to a database path.
func fileDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + filePragmas
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Ping reports whether the settings database answers.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS hidden_columns (
			project_id TEXT NOT NULL,
			column_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY(project_id, column_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_hidden_columns_project ON hidden_columns(project_id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadSettings reads every persisted preference.
func (r *Repository) LoadSettings(ctx context.Context) (domain.Settings, error) {
	settings := domain.Settings{Hidden: map[string]domain.HiddenSet{}}

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Settings{}, err
		}
		switch key {
		case keySelectedProject:
			settings.SelectedProjectID = value
		case keyExpanded:
			settings.Expanded = parseBool(value)
		case keyMineOnly:
			settings.MineOnly = parseBool(value)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Settings{}, err
	}

	hiddenRows, err := r.db.QueryContext(ctx, `SELECT project_id, column_id FROM hidden_columns ORDER BY project_id, column_id`)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("query hidden columns: %w", err)
	}
	defer hiddenRows.Close()
	for hiddenRows.Next() {
		var projectID, columnID string
		if err := hiddenRows.Scan(&projectID, &columnID); err != nil {
			return domain.Settings{}, err
		}
		set, ok := settings.Hidden[projectID]
		if !ok {
			set = domain.HiddenSet{}
			settings.Hidden[projectID] = set
		}
		set[columnID] = struct{}{}
	}
	if err := hiddenRows.Err(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// SaveSelectedProject persists the selected project id.
func (r *Repository) SaveSelectedProject(ctx context.Context, projectID string) error {
	return r.putSetting(ctx, keySelectedProject, strings.TrimSpace(projectID))
}

// SaveExpanded persists the expanded flag.
func (r *Repository) SaveExpanded(ctx context.Context, expanded bool) error {
	return r.putSetting(ctx, keyExpanded, strconv.FormatBool(expanded))
}

// SaveMineOnly persists the mine-only filter flag.
func (r *Repository) SaveMineOnly(ctx context.Context, mineOnly bool) error {
	return r.putSetting(ctx, keyMineOnly, strconv.FormatBool(mineOnly))
}

// SaveHiddenColumns replaces the hidden set for one project.
func (r *Repository) SaveHiddenColumns(ctx context.Context, projectID string, hidden domain.HiddenSet) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.ErrInvalidID
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hidden columns tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM hidden_columns WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clear hidden columns: %w", err)
	}
	createdAt := ts(r.now())
	for _, columnID := range hidden.Slice() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hidden_columns(project_id, column_id, created_at)
			VALUES (?, ?, ?)
		`, projectID, columnID, createdAt); err != nil {
			return fmt.Errorf("insert hidden column: %w", err)
		}
	}
	return tx.Commit()
}

// putSetting upserts one settings row.
func (r *Repository) putSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_settings(key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, ts(r.now()))
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// parseBool parses input into a normalized form.
func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
