// Package store persists users and sent newsletters in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"newsly/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Listing limits matching the admin API.
const (
	userHistoryLimit   = 50
	globalHistoryLimit = 100
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the database under dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "newsly.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		spec TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	newslettersTable := `
	CREATE TABLE IF NOT EXISTS newsletters (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		content TEXT NOT NULL,
		sent_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	);`

	for _, table := range []string{usersTable, newslettersTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser inserts a new user. ID and timestamps are assigned here.
func (s *Store) CreateUser(ctx context.Context, email, name, spec string) (*core.User, error) {
	now := time.Now().UTC()
	user := &core.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Spec:      spec,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, spec, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Spec, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, spec, created_at, updated_at FROM users WHERE id = ?`, id))
}

// GetUserByEmail fetches a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, spec, created_at, updated_at FROM users WHERE email = ?`, email))
}

func (s *Store) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Spec, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, spec, created_at, updated_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Spec, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser overwrites spec and/or name; nil pointers leave the field
// untouched. Returns the updated record.
func (s *Store) UpdateUser(ctx context.Context, id string, spec, name *string) (*core.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if spec != nil {
		user.Spec = *spec
	}
	if name != nil {
		user.Name = *name
	}
	user.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET spec = ?, name = ?, updated_at = ? WHERE id = ?`,
		user.Spec, user.Name, user.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user and, via the foreign key, their newsletters.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveNewsletter records a generated issue for a user.
func (s *Store) SaveNewsletter(ctx context.Context, userID string, content core.NewsletterContent) (*core.Newsletter, error) {
	nl := &core.Newsletter{
		ID:      uuid.NewString(),
		UserID:  userID,
		Subject: content.Subject,
		Content: content.Content,
		SentAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO newsletters (id, user_id, subject, content, sent_at) VALUES (?, ?, ?, ?, ?)`,
		nl.ID, nl.UserID, nl.Subject, nl.Content, nl.SentAt)
	if err != nil {
		return nil, fmt.Errorf("insert newsletter: %w", err)
	}
	return nl, nil
}

// ListNewslettersByUser returns a user's issues, most recent first.
func (s *Store) ListNewslettersByUser(ctx context.Context, userID string) ([]core.Newsletter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, subject, content, sent_at FROM newsletters
		 WHERE user_id = ? ORDER BY sent_at DESC LIMIT ?`, userID, userHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	defer rows.Close()

	var out []core.Newsletter
	for rows.Next() {
		var nl core.Newsletter
		if err := rows.Scan(&nl.ID, &nl.UserID, &nl.Subject, &nl.Content, &nl.SentAt); err != nil {
			return nil, fmt.Errorf("scan newsletter: %w", err)
		}
		out = append(out, nl)
	}
	return out, rows.Err()
}

// ListNewsletters returns recent issues across all users with recipient
// info, most recent first.
func (s *Store) ListNewsletters(ctx context.Context) ([]core.NewsletterWithUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.user_id, n.subject, n.content, n.sent_at, u.email, u.name
		 FROM newsletters n JOIN users u ON u.id = n.user_id
		 ORDER BY n.sent_at DESC LIMIT ?`, globalHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	defer rows.Close()

	var out []core.NewsletterWithUser
	for rows.Next() {
		var nl core.NewsletterWithUser
		if err := rows.Scan(&nl.ID, &nl.UserID, &nl.Subject, &nl.Content, &nl.SentAt, &nl.UserEmail, &nl.UserName); err != nil {
			return nil, fmt.Errorf("scan newsletter: %w", err)
		}
		out = append(out, nl)
	}
	return out, rows.Err()
}
