package pubcms

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords and checks candidates against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. A zero Cost means
// bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyUser reports whether password matches the stored hash for username.
// Lookup is exact and case-sensitive; unknown users simply fail.
func (s *Store) VerifyUser(ctx context.Context, username, password string) (bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE username = ?`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.hasher.Compare(hash, password), nil
}

// CreateUser hashes password and inserts a new user. It returns ErrConflict
// if the username is taken.
func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	return s.insertUser(ctx, username, password, false)
}

func (s *Store) insertUser(ctx context.Context, username, password string, mustRotate bool) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (username, password_hash, must_rotate) VALUES (?, ?, ?)`,
		username, hash, boolToInt(mustRotate))
	if isUniqueViolation(err) {
		return fmt.Errorf("user %q: %w", username, ErrConflict)
	}
	return err
}

// RenameUser overwrites the username and password hash of oldUsername and
// clears the forced-rotation flag. A taken newUsername yields ErrConflict;
// an unknown oldUsername yields ErrNotFound.
func (s *Store) RenameUser(ctx context.Context, oldUsername, newUsername, newPassword string) error {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" || newPassword == "" {
		return ErrInvalidInput
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET username = ?, password_hash = ?, must_rotate = 0 WHERE username = ?`,
		newUsername, hash, oldUsername)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %q: %w", newUsername, ErrConflict)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %q: %w", oldUsername, ErrNotFound)
	}
	return nil
}

// MustRotate reports whether username still has to replace its bootstrap
// password. Unknown users report false.
func (s *Store) MustRotate(ctx context.Context, username string) (bool, error) {
	var flag int
	err := s.db.QueryRowContext(ctx, `SELECT must_rotate FROM users WHERE username = ?`, username).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return flag == 1, nil
}

// UserExists reports whether a user row exists for username.
func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListUsers returns all usernames ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// EnsureBootstrapUser creates the first account when the users table is
// empty. The account is flagged for password rotation. If password is empty
// a random one is generated and returned so the caller can show it once.
func (s *Store) EnsureBootstrapUser(ctx context.Context, username, password string) (created bool, generated string, err error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, "", err
	}
	if count > 0 {
		return false, "", nil
	}
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return false, "", err
		}
		generated = password
	}
	if err := s.insertUser(ctx, username, password, true); err != nil {
		return false, "", err
	}
	return true, generated, nil
}

func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
