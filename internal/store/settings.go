package store

import (
	"database/sql"

	"papergen/internal/model"
)

// Theme returns a user's theme preference, defaulting to dark.
func (s *Store) Theme(userID int64) (model.Theme, error) {
	var theme model.Theme
	err := s.db.QueryRow(`SELECT theme FROM settings WHERE user_id = ?`, userID).Scan(&theme)
	if err == sql.ErrNoRows {
		return model.ThemeDark, nil
	}
	if err != nil {
		return "", err
	}
	return theme, nil
}

// SetTheme saves a user's theme preference.
func (s *Store) SetTheme(userID int64, theme model.Theme) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (user_id, theme) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET theme = ?`,
		userID, theme, theme,
	)
	return err
}
