package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"papergen/internal/model"
)

// ErrInvalidCredentials is returned by Login for a wrong email or password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned by CreateUser when the email is already
// registered.
var ErrEmailTaken = errors.New("an account with this email already exists")

// CreateUser inserts a new user. The password is stored as given: this is a
// mock identity store, not a security boundary.
func (s *Store) CreateUser(u model.User) (int64, error) {
	existing, err := s.GetUserByEmail(u.Email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrEmailTaken
	}

	res, err := s.db.Exec(
		`INSERT INTO users (name, email, password, created_at) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.Password, time.Now(),
	)
	if err != nil {
		slog.Error("failed to create user", "email", u.Email, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created user", "id", id, "email", u.Email)
	return id, nil
}

// GetUserByEmail returns a user by email, or nil if not found.
func (s *Store) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, name, email, password, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns a user by ID, or nil if not found.
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, name, email, password, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Login checks credentials with a plain-text comparison and returns the
// matching user, or ErrInvalidCredentials.
func (s *Store) Login(email, password string) (*model.User, error) {
	u, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpdateUser shallow-merges the given fields into the stored record: empty
// fields keep their current value.
func (s *Store) UpdateUser(id int64, name, email, password string) (*model.User, error) {
	current, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, sql.ErrNoRows
	}

	if name != "" {
		current.Name = name
	}
	if email != "" {
		current.Email = email
	}
	if password != "" {
		current.Password = password
	}

	_, err = s.db.Exec(
		`UPDATE users SET name = ?, email = ?, password = ? WHERE id = ?`,
		current.Name, current.Email, current.Password, id,
	)
	if err != nil {
		return nil, err
	}
	return current, nil
}

// UserCount returns the total number of users.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
