package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"papergen/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email, password string) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{Name: "Test User", Email: email, Password: password})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "a@x.com", "secret")

	u, err := s.GetUserByEmail("a@x.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.ID != id || u.Name != "Test User" || u.Password != "secret" {
		t.Errorf("unexpected user: %+v", u)
	}

	missing, err := s.GetUserByEmail("nobody@x.com")
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown email, got %+v", missing)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "a@x.com", "secret")

	_, err := s.CreateUser(model.User{Name: "Other", Email: "a@x.com", Password: "other"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "a@x.com", "right")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"correct credentials", "a@x.com", "right", nil},
		{"wrong password", "a@x.com", "wrong", ErrInvalidCredentials},
		{"unknown email", "b@x.com", "right", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.Login(tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login(%q, %q) error = %v, want %v", tt.email, tt.password, err, tt.wantErr)
			}
			if tt.wantErr == nil && (u == nil || u.Email != tt.email) {
				t.Errorf("expected user %q, got %+v", tt.email, u)
			}
			if tt.wantErr != nil && u != nil {
				t.Errorf("expected nil user on failed login, got %+v", u)
			}
		})
	}
}

func TestUpdateUserShallowMerge(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "a@x.com", "secret")

	updated, err := s.UpdateUser(id, "New Name", "", "")
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if updated.Email != "a@x.com" || updated.Password != "secret" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	stored, err := s.GetUserByID(id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Name != "New Name" || stored.Password != "secret" {
		t.Errorf("merge not persisted: %+v", stored)
	}
}

func TestAuthSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "a@x.com", "secret")

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("unexpected token length: %d", len(token))
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("get deleted session: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil after delete, got %+v", sess)
	}
}

func TestGetAuthSessionUnknownToken(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.GetAuthSession("does-not-exist")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil, got %+v", sess)
	}
}

func testHistoryEntry(id int64) model.HistoryEntry {
	return model.HistoryEntry{
		ID:   id,
		Date: time.UnixMilli(id),
		Config: model.GenerationConfig{
			ExamType:         model.ExamText,
			NumberOfVariants: 2,
			Subject:          "Circuits",
		},
		Papers: []model.Paper{{
			PaperID:    1,
			TotalMarks: 20,
			ExamType:   model.ExamText,
			Questions: []model.Question{
				{ID: 1, Type: model.TypeShort, Question: "Define current.", Marks: 2},
			},
		}},
		FileName: "syllabus.pdf",
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "a@x.com", "secret")

	first := testHistoryEntry(1700000000001)
	second := testHistoryEntry(1700000000002)
	if err := s.AddHistoryEntry(id, first); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if err := s.AddHistoryEntry(id, second); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	entries, err := s.ListHistory(id)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].ID != second.ID {
		t.Errorf("expected entry %d first, got %d", second.ID, entries[0].ID)
	}
	got := entries[1]
	if got.Config.Subject != "Circuits" || got.Config.NumberOfVariants != 2 {
		t.Errorf("config not preserved: %+v", got.Config)
	}
	if len(got.Papers) != 1 || got.Papers[0].Questions[0].Question != "Define current." {
		t.Errorf("papers not preserved: %+v", got.Papers)
	}
	if got.FileName != "syllabus.pdf" {
		t.Errorf("file name not preserved: %q", got.FileName)
	}
}

func TestDeleteHistoryEntryOwnership(t *testing.T) {
	s := newTestStore(t)
	owner := createTestUser(t, s, "a@x.com", "secret")
	other := createTestUser(t, s, "b@x.com", "secret")

	entry := testHistoryEntry(1700000000001)
	if err := s.AddHistoryEntry(owner, entry); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	if err := s.DeleteHistoryEntry(other, entry.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for foreign entry, got %v", err)
	}
	if err := s.DeleteHistoryEntry(owner, entry.ID); err != nil {
		t.Errorf("delete own entry: %v", err)
	}
	entries, err := s.ListHistory(owner)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %d entries", len(entries))
	}
}

func TestDownloads(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "a@x.com", "secret")

	if err := s.AddDownload(id, "text_Paper_Variant_1.docx", "docx"); err != nil {
		t.Fatalf("add download: %v", err)
	}
	if err := s.AddDownload(id, "text_Paper_Variant_1.pdf", "pdf"); err != nil {
		t.Fatalf("add download: %v", err)
	}

	downloads, err := s.ListDownloads(id)
	if err != nil {
		t.Fatalf("list downloads: %v", err)
	}
	if len(downloads) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(downloads))
	}
	if downloads[0].Format != "pdf" {
		t.Errorf("expected newest first, got %+v", downloads[0])
	}
}

func TestThemeDefaultAndUpdate(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "a@x.com", "secret")

	theme, err := s.Theme(id)
	if err != nil {
		t.Fatalf("get theme: %v", err)
	}
	if theme != model.ThemeDark {
		t.Errorf("expected default dark theme, got %q", theme)
	}

	if err := s.SetTheme(id, model.ThemeLight); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if err := s.SetTheme(id, model.ThemeDark); err != nil {
		t.Fatalf("set theme again: %v", err)
	}
	theme, err = s.Theme(id)
	if err != nil {
		t.Fatalf("get theme: %v", err)
	}
	if theme != model.ThemeDark {
		t.Errorf("expected dark after update, got %q", theme)
	}
}
