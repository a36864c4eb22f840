package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"papergen/internal/model"
)

// AddHistoryEntry records a completed generation for a user. The entry's ID
// is its generation timestamp in unix milliseconds; config and papers are
// stored JSON-encoded.
func (s *Store) AddHistoryEntry(userID int64, e model.HistoryEntry) error {
	config, err := json.Marshal(e.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	papers, err := json.Marshal(e.Papers)
	if err != nil {
		return fmt.Errorf("encode papers: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO test_history (id, user_id, date, config, papers, file_name) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.Date, string(config), string(papers), e.FileName,
	)
	return err
}

// ListHistory returns a user's generation history, newest first.
func (s *Store) ListHistory(userID int64) ([]model.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, date, config, papers, file_name FROM test_history WHERE user_id = ? ORDER BY id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var e model.HistoryEntry
		var config, papers string
		if err := rows.Scan(&e.ID, &e.Date, &config, &papers, &e.FileName); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(config), &e.Config); err != nil {
			return nil, fmt.Errorf("decode config for entry %d: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(papers), &e.Papers); err != nil {
			return nil, fmt.Errorf("decode papers for entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteHistoryEntry removes one history entry owned by the user. Returns
// sql.ErrNoRows when the entry does not exist or belongs to someone else.
func (s *Store) DeleteHistoryEntry(userID, id int64) error {
	res, err := s.db.Exec(`DELETE FROM test_history WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddDownload records an exported file download.
func (s *Store) AddDownload(userID int64, fileName, format string) error {
	_, err := s.db.Exec(
		`INSERT INTO downloaded_papers (user_id, file_name, format, downloaded_at) VALUES (?, ?, ?, ?)`,
		userID, fileName, format, time.Now(),
	)
	return err
}

// ListDownloads returns a user's download records, newest first.
func (s *Store) ListDownloads(userID int64) ([]model.DownloadedPaper, error) {
	rows, err := s.db.Query(
		`SELECT id, file_name, format, downloaded_at FROM downloaded_papers WHERE user_id = ? ORDER BY id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	downloads := []model.DownloadedPaper{}
	for rows.Next() {
		var d model.DownloadedPaper
		if err := rows.Scan(&d.ID, &d.FileName, &d.Format, &d.DownloadedAt); err != nil {
			return nil, err
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
