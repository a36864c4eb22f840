package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papergen/internal/extract"
	"papergen/internal/i18n"
	"papergen/internal/model"
	"papergen/internal/store"
	"papergen/internal/variant"
)

// stubGenerator hands back the same fixed pool on every call; the variant
// builder filters out already-used questions itself.
type stubGenerator struct {
	pool []model.Question
}

func (s stubGenerator) Generate(_ context.Context, _ model.GenerationConfig) ([]model.Question, error) {
	return s.pool, nil
}

func questionPool(perType int) []model.Question {
	var pool []model.Question
	for i := 0; i < perType; i++ {
		pool = append(pool,
			model.Question{Type: model.TypeMCQ, Question: fmt.Sprintf("Which law applies in case %d?", i), Marks: 1,
				Options: []string{"Ohm", "Kirchhoff", "Faraday", "Lenz"}, CorrectAnswer: "A"},
			model.Question{Type: model.TypeShort, Question: fmt.Sprintf("Briefly explain case %d.", i), Marks: 2},
			model.Question{Type: model.TypeLong, Question: fmt.Sprintf("Discuss case %d in detail.", i), Marks: 5},
		)
	}
	return pool
}

func newTestRouter(t *testing.T, pool []model.Question) (chi.Router, *store.Store) {
	t.Helper()
	require.NoError(t, i18n.Init("en"))

	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := New(s, variant.New(stubGenerator{pool: pool}), extract.New(), model.ServerConfig{Lang: "en"})
	r := chi.NewRouter()
	r.Use(i18n.Middleware("en"))
	h.Routes(r)
	return r, s
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

// signUp registers a user and returns the session cookies.
func signUp(t *testing.T, r http.Handler, email string) []*http.Cookie {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Asha", "email": email, "password": "secret",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestSignupAndMe(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cookies := signUp(t, r, "asha@x.com")

	rec := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "asha@x.com", user["email"])
	assert.NotContains(t, user, "password")
	// Activity arrays are always present, even when empty.
	assert.NotNil(t, body["testHistory"])
	assert.NotNil(t, body["downloadedPapers"])
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	signUp(t, r, "a@x.com")

	rec := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["error"])
}

func TestSignupDuplicateEmail(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	signUp(t, r, "a@x.com")

	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Other", "email": "a@x.com", "password": "pw",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/history"},
		{http.MethodPost, "/api/papers"},
		{http.MethodGet, "/api/theme"},
		{http.MethodGet, "/api/auth/me"},
	} {
		rec := doJSON(t, r, route.method, route.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cookies := signUp(t, r, "a@x.com")

	rec := doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMePartial(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cookies := signUp(t, r, "a@x.com")

	rec := doJSON(t, r, http.MethodPatch, "/api/auth/me", map[string]string{"name": "New Name"}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "New Name", user["name"])
	assert.Equal(t, "a@x.com", user["email"])
}

func TestGeneratePapersAndHistory(t *testing.T) {
	r, _ := newTestRouter(t, questionPool(10))
	cookies := signUp(t, r, "a@x.com")

	rec := doJSON(t, r, http.MethodPost, "/api/papers", map[string]any{
		"examType":         "text",
		"numberOfVariants": 3,
		"syllabusText":     "Module 1: Circuit laws and applications",
		"fileName":         "syllabus.txt",
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	papers := body["papers"].([]any)
	require.Len(t, papers, 3)
	first := papers[0].(map[string]any)
	assert.Len(t, first["questions"].([]any), 8)
	assert.NotZero(t, body["historyId"])

	rec = doJSON(t, r, http.MethodGet, "/api/history", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody(t, rec)["testHistory"].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, "syllabus.txt", entry["fileName"])

	id := int64(entry["id"].(float64))
	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/history/%d", id), nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/history/%d", id), nil, cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratePapersPoolTooSmall(t *testing.T) {
	r, _ := newTestRouter(t, questionPool(1)) // 3 questions, 8 needed
	cookies := signUp(t, r, "a@x.com")

	rec := doJSON(t, r, http.MethodPost, "/api/papers", map[string]any{
		"examType":         "text",
		"numberOfVariants": 2,
	}, cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Not enough questions generated for creating variants", decodeBody(t, rec)["error"])
}

func TestGeneratePapersValidation(t *testing.T) {
	r, _ := newTestRouter(t, questionPool(10))
	cookies := signUp(t, r, "a@x.com")

	// Missing examType.
	rec := doJSON(t, r, http.MethodPost, "/api/papers", map[string]any{"numberOfVariants": 2}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Too many variants.
	rec = doJSON(t, r, http.MethodPost, "/api/papers", map[string]any{
		"examType": "text", "numberOfVariants": 11,
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportWord(t *testing.T) {
	r, s := newTestRouter(t, nil)
	cookies := signUp(t, r, "a@x.com")

	paper := model.Paper{
		PaperID:    1,
		TotalMarks: 20,
		ExamType:   model.ExamText,
		Questions: []model.Question{
			{ID: 1, Type: model.TypeShort, Question: "Define impedance.", Marks: 2},
		},
	}
	rec := doJSON(t, r, http.MethodPost, "/api/papers/export/word", paper, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "text_Paper_Variant_1.docx")

	text, err := extract.DocxText(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "Define impedance.")

	// The download is recorded against the user.
	user, err := s.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	downloads, err := s.ListDownloads(user.ID)
	require.NoError(t, err)
	require.Len(t, downloads, 1)
	assert.Equal(t, "text_Paper_Variant_1.docx", downloads[0].FileName)
}

func TestExportPDF(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cookies := signUp(t, r, "a@x.com")

	paper := model.Paper{
		PaperID:    2,
		TotalMarks: 60,
		ExamType:   model.ExamPDF,
		Questions: []model.Question{
			{ID: 1, Type: model.TypeShort, Question: "Define impedance.", Marks: 2},
		},
	}
	rec := doJSON(t, r, http.MethodPost, "/api/papers/export/pdf", paper, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pdf_Paper_Variant_2.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestSyllabusUpload(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cookies := signUp(t, r, "a@x.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "syllabus.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Subject: Circuit Theory\nModule 1: Ohm's law, Kirchhoff's laws, network theorems."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Contains(t, body["text"], "Kirchhoff")
	assert.Equal(t, "Circuit Theory", body["subject"])
	assert.Equal(t, "syllabus.txt", body["fileName"])
}

func TestSyllabusUploadRejectsDoc(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cookies := signUp(t, r, "a@x.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "syllabus.doc")
	require.NoError(t, err)
	_, err = fw.Write([]byte("legacy binary word content"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/syllabus", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], ".doc files are not supported")
}

func TestThemeLifecycle(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cookies := signUp(t, r, "a@x.com")

	rec := doJSON(t, r, http.MethodGet, "/api/theme", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", decodeBody(t, rec)["theme"])

	rec = doJSON(t, r, http.MethodPut, "/api/theme", map[string]string{"theme": "light"}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/theme", nil, cookies)
	assert.Equal(t, "light", decodeBody(t, rec)["theme"])

	rec = doJSON(t, r, http.MethodPut, "/api/theme", map[string]string{"theme": "sepia"}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
