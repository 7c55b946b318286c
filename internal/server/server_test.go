package server_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/oauth2"

	"docsum/internal/auth"
	"docsum/internal/database"
	"docsum/internal/domain"
	"docsum/internal/extractor"
	"docsum/internal/pipeline"
	"docsum/internal/server"
	"docsum/internal/summarizer"
)

const testMaxUpload = 64 << 10

type stubSummarizer struct {
	mu     sync.Mutex
	output string
	err    error
	inputs []summarizer.Input
}

func (s *stubSummarizer) Summarize(_ context.Context, input summarizer.Input) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return "", s.err
	}

	return s.output, nil
}

func (s *stubSummarizer) lastInput() summarizer.Input {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inputs) == 0 {
		return summarizer.Input{}
	}

	return s.inputs[len(s.inputs)-1]
}

type testEnv struct {
	handler http.Handler
	stub    *stubSummarizer
	db      *database.Database
}

func newTestEnv(t *testing.T, google *auth.Google) *testEnv {
	t.Helper()

	log := slog.Default()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"), log)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB: %v", err)
		}
	})

	authService, err := auth.NewService(db, []byte(strings.Repeat("x", 32)), time.Hour, log)
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}

	stub := &stubSummarizer{output: "The document greets the world politely."}

	srv := server.New(
		pipeline.New(stub, time.Minute, log),
		db,
		authService,
		google,
		server.Options{MaxUploadBytes: testMaxUpload},
		log,
	)

	return &testEnv{handler: srv.Handler(), stub: stub, db: db}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	return rec
}

func uploadRequest(t *testing.T, fileName, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}

	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}

		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		if _, err = part.Write(data); err != nil {
			t.Fatalf("failed to write part: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}

	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}

	body := decode[map[string]string](t, rec)
	if body["error"] != message {
		t.Fatalf("expected error %q, got %q", message, body["error"])
	}
}

func minimalDOCX(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	if _, err = f.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`)); err != nil {
		t.Fatalf("failed to write entry: %v", err)
	}
	if err = zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	return buf.Bytes()
}

func minimalPDF(t *testing.T, text string) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.MultiCell(0, 16, text, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("failed to render PDF: %v", err)
	}

	return buf.Bytes()
}

func TestSummarizeAcceptedTypes(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := []struct {
		name      string
		mediaType string
		data      []byte
		wantText  string
	}{
		{"notes.txt", extractor.MediaTypeText, []byte("Hello world."), "Hello world."},
		{"plan.docx", extractor.MediaTypeDOCX, minimalDOCX(t, "Quarterly plan"), "Quarterly plan"},
		{"report.pdf", extractor.MediaTypePDF, minimalPDF(t, "Annual report"), "Annual"},
	}

	for _, c := range cases {
		rec := env.do(uploadRequest(t, c.name, c.mediaType, c.data, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", c.name, rec.Code, rec.Body.String())
		}

		got := decode[domain.Summary](t, rec)
		if strings.TrimSpace(got.Content) == "" {
			t.Fatalf("%s: expected non-empty content", c.name)
		}
		if got.WordCount != len(strings.Fields(got.Content)) {
			t.Fatalf("%s: wordCount %d does not match content", c.name, got.WordCount)
		}
		if got.DocumentName != c.name || got.Title != strings.TrimSuffix(c.name, filepath.Ext(c.name)) {
			t.Fatalf("%s: unexpected metadata: %+v", c.name, got)
		}
		if got.SummaryType != domain.SummaryTypeStandard || got.ID == "" || got.CreatedAt.IsZero() {
			t.Fatalf("%s: unexpected summary: %+v", c.name, got)
		}

		if input := env.stub.lastInput(); !strings.Contains(input.Text, c.wantText) {
			t.Fatalf("%s: expected extracted text to contain %q, got %q", c.name, c.wantText, input.Text)
		}
	}
}

func TestSummarizeSummaryTypeField(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(uploadRequest(t, "notes.txt", extractor.MediaTypeText, []byte("Hello world."),
		map[string]string{"summaryType": "bullet_points"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := decode[domain.Summary](t, rec)
	if got.SummaryType != domain.SummaryTypeBulletPoints {
		t.Fatalf("expected BULLET_POINTS, got %s", got.SummaryType)
	}
	if env.stub.lastInput().Type != domain.SummaryTypeBulletPoints {
		t.Fatalf("expected generator to receive BULLET_POINTS")
	}
}

func TestSummarizeRejections(t *testing.T) {
	env := newTestEnv(t, nil)

	expectError(t, env.do(uploadRequest(t, "page.html", "text/html", []byte("<p>hi</p>"), nil)),
		http.StatusBadRequest, "Unsupported file type. Please upload PDF, DOCX, or TXT files.")

	expectError(t, env.do(uploadRequest(t, "mystery", "", []byte("data"), nil)),
		http.StatusBadRequest, "Unsupported file type. Please upload PDF, DOCX, or TXT files.")

	expectError(t, env.do(uploadRequest(t, "blank.txt", extractor.MediaTypeText, []byte("  \n\t "), nil)),
		http.StatusBadRequest, "No text could be extracted from the file")

	expectError(t, env.do(uploadRequest(t, "", "", nil, map[string]string{"summaryType": "STANDARD"})),
		http.StatusBadRequest, "No file provided")

	expectError(t, env.do(uploadRequest(t, "big.txt", extractor.MediaTypeText, bytes.Repeat([]byte("a "), testMaxUpload), nil)),
		http.StatusBadRequest, "File is too large")

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	expectError(t, env.do(req), http.StatusBadRequest, "Invalid upload")

	if len(env.stub.inputs) != 0 {
		t.Fatalf("expected no generation calls, got %d", len(env.stub.inputs))
	}
}

func TestSummarizeFailures(t *testing.T) {
	env := newTestEnv(t, nil)

	expectError(t, env.do(uploadRequest(t, "broken.pdf", extractor.MediaTypePDF, []byte("not a pdf"), nil)),
		http.StatusInternalServerError, "Failed to process file and generate summary")

	env.stub.err = fmt.Errorf("%w: upstream exploded", summarizer.ErrGeneration)
	expectError(t, env.do(uploadRequest(t, "notes.txt", extractor.MediaTypeText, []byte("Hello world."), nil)),
		http.StatusInternalServerError, "Failed to process file and generate summary")
}

func TestHistoryLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %d %s", rec.Code, rec.Body.String())
	}

	expectError(t, env.do(jsonRequest(t, http.MethodPost, "/api/history", map[string]any{"title": "No content"})),
		http.StatusBadRequest, "Invalid summary data")
	expectError(t, env.do(jsonRequest(t, http.MethodPost, "/api/history", "not json")),
		http.StatusBadRequest, "Invalid summary data")

	sent := map[string]any{
		"id":           "1",
		"title":        "Project Proposal",
		"content":      "This project proposal outlines a plan.",
		"summaryType":  "STANDARD",
		"wordCount":    float64(45),
		"createdAt":    "2024-01-15T10:30:00Z",
		"documentName": "project-proposal.pdf",
	}

	rec = env.do(jsonRequest(t, http.MethodPost, "/api/history", sent))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	echoed := decode[map[string]any](t, rec)
	for k, v := range sent {
		if echoed[k] != v {
			t.Fatalf("expected %s=%v to be echoed, got %v", k, v, echoed[k])
		}
	}

	listed := decode[[]domain.Summary](t, env.do(httptest.NewRequest(http.MethodGet, "/api/history", nil)))
	if len(listed) != 1 || listed[0].ID != "1" || listed[0].WordCount != 45 {
		t.Fatalf("unexpected history: %+v", listed)
	}

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/history/1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	expectError(t, env.do(httptest.NewRequest(http.MethodDelete, "/api/history/1", nil)),
		http.StatusNotFound, "Summary not found")
}

func TestHistoryKeepsFarDatesAndNormalisesType(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/history", map[string]any{
		"id":          "a",
		"content":     "x y",
		"summaryType": "foo",
		"createdAt":   "2300-01-01T00:00:00Z",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	echoed := decode[map[string]any](t, rec)
	if echoed["createdAt"] != "2300-01-01T00:00:00Z" || echoed["summaryType"] != "STANDARD" {
		t.Fatalf("unexpected echo: %v", echoed)
	}

	listed := decode[[]map[string]any](t, env.do(httptest.NewRequest(http.MethodGet, "/api/history", nil)))
	if len(listed) != 1 || listed[0]["createdAt"] != "2300-01-01T00:00:00Z" || listed[0]["summaryType"] != "STANDARD" {
		t.Fatalf("unexpected history: %v", listed)
	}
}

func TestHistoryFillsMissingFields(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/history", map[string]any{
		"content": "three little words",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := decode[domain.Summary](t, rec)
	if got.ID == "" || got.CreatedAt.IsZero() || got.WordCount != 3 || got.SummaryType != domain.SummaryTypeStandard {
		t.Fatalf("expected defaults to be filled, got %+v", got)
	}
}

func signIn(t *testing.T, env *testEnv, email, password string) *http.Cookie {
	t.Helper()

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/signin/credentials",
		map[string]string{"email": email, "password": password}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected sign-in to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			return c
		}
	}

	t.Fatalf("expected session cookie")
	return nil
}

func TestHistoryIsScopedPerUser(t *testing.T) {
	env := newTestEnv(t, nil)

	ada := signIn(t, env, "ada@example.com", "pw-ada")
	bob := signIn(t, env, "bob@example.com", "pw-bob")

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/history", map[string]any{"id": "a1", "content": "Ada's summary"}), ada)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if got := decode[[]domain.Summary](t, env.do(httptest.NewRequest(http.MethodGet, "/api/history", nil), ada)); len(got) != 1 {
		t.Fatalf("expected Ada to see her summary, got %+v", got)
	}
	if got := decode[[]domain.Summary](t, env.do(httptest.NewRequest(http.MethodGet, "/api/history", nil), bob)); len(got) != 0 {
		t.Fatalf("expected Bob to see nothing, got %+v", got)
	}
	if got := decode[[]domain.Summary](t, env.do(httptest.NewRequest(http.MethodGet, "/api/history", nil))); len(got) != 0 {
		t.Fatalf("expected anonymous scope to be empty, got %+v", got)
	}

	expectError(t, env.do(httptest.NewRequest(http.MethodDelete, "/api/history/a1", nil), bob),
		http.StatusNotFound, "Summary not found")
}

func TestCredentialsSignIn(t *testing.T) {
	env := newTestEnv(t, nil)

	expectError(t, env.do(jsonRequest(t, http.MethodPost, "/api/auth/signin/credentials",
		map[string]string{"email": "ada@example.com"})),
		http.StatusBadRequest, "Email and password are required")

	expectError(t, env.do(jsonRequest(t, http.MethodPost, "/api/auth/signin/credentials", "{")),
		http.StatusBadRequest, "Invalid request body")

	cookie := signIn(t, env, "ada@example.com", "correct")

	expectError(t, env.do(jsonRequest(t, http.MethodPost, "/api/auth/signin/credentials",
		map[string]string{"email": "ada@example.com", "password": "wrong"})),
		http.StatusUnauthorized, "Invalid email or password")

	type session struct {
		User *struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}

	got := decode[session](t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), cookie))
	if got.User == nil || got.User.Email != "ada@example.com" || got.User.Name != "ada" || got.User.ID == "" {
		t.Fatalf("unexpected session: %+v", got.User)
	}

	if got = decode[session](t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))); got.User != nil {
		t.Fatalf("expected empty session, got %+v", got.User)
	}

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected session cookie to be cleared")
	}
}

func TestGoogleDisabled(t *testing.T) {
	env := newTestEnv(t, nil)

	expectError(t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/signin/google", nil)),
		http.StatusNotFound, "Google sign-in is not configured")
	expectError(t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/callback/google?state=a&code=b", nil)),
		http.StatusNotFound, "Google sign-in is not configured")
}

func oauthEndpoint(base string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  base + "/auth",
		TokenURL: base + "/token",
	}
}

func newGoogleProvider(t *testing.T, profile string) *auth.Google {
	t.Helper()

	provider := http.NewServeMux()
	provider.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	provider.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(profile))
	})
	upstream := httptest.NewServer(provider)
	t.Cleanup(upstream.Close)

	return auth.NewGoogle(auth.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/auth/callback/google",
		Endpoint:     oauthEndpoint(upstream.URL),
		UserInfoURL:  upstream.URL + "/userinfo",
	})
}

// startGoogleSignIn returns the state cookie set by the sign-in redirect.
func startGoogleSignIn(t *testing.T, env *testEnv) *http.Cookie {
	t.Helper()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/signin/google", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.StateCookieName {
			return c
		}
	}

	t.Fatalf("expected state cookie")
	return nil
}

const graceProfile = `{"id":"g-1","email":"grace@example.com","verified_email":true,"name":"Grace Hopper"}`

func TestGoogleSignInFlow(t *testing.T) {
	env := newTestEnv(t, newGoogleProvider(t, graceProfile))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/signin/google", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	var state *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.StateCookieName {
			state = c
		}
	}
	if state == nil || !strings.Contains(rec.Header().Get("Location"), "state="+state.Value) {
		t.Fatalf("expected state cookie matching the redirect, got %v %s", state, rec.Header().Get("Location"))
	}

	expectError(t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/callback/google?state=forged&code=good-code", nil), state),
		http.StatusBadRequest, "Invalid OAuth state")

	expectError(t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/callback/google?state="+state.Value+"&code=bad-code", nil), state),
		http.StatusBadGateway, "Failed to sign in with Google")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/auth/callback/google?state="+state.Value+"&code=good-code", nil), state)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %s", rec.Code, rec.Header().Get("Location"))
	}

	user, err := env.db.UserByEmail(context.Background(), "grace@example.com")
	if err != nil || user == nil || user.Name != "Grace Hopper" || user.Provider != auth.ProviderGoogle {
		t.Fatalf("expected Google user to be stored, got %+v %v", user, err)
	}
}

func TestGoogleSignInRefusesCredentialsAccount(t *testing.T) {
	env := newTestEnv(t, newGoogleProvider(t, graceProfile))

	signIn(t, env, "grace@example.com", "someone-elses-password")

	state := startGoogleSignIn(t, env)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/callback/google?state="+state.Value+"&code=good-code", nil), state)
	expectError(t, rec, http.StatusConflict, "This email is already registered with another sign-in method")

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			t.Fatalf("expected no session cookie, got %v", c)
		}
	}
}

func TestGoogleSignInRequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t, newGoogleProvider(t, `{"id":"g-2","email":"eve@example.com","verified_email":false}`))

	state := startGoogleSignIn(t, env)
	expectError(t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/callback/google?state="+state.Value+"&code=good-code", nil), state),
		http.StatusForbidden, "Google account email is not verified")

	user, err := env.db.UserByEmail(context.Background(), "eve@example.com")
	if err != nil || user != nil {
		t.Fatalf("expected no user to be created, got %+v %v", user, err)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, nil)

	body := map[string]any{
		"id":           "abc123",
		"title":        "Meeting Notes",
		"content":      "Team agreed on two-week sprints. See https://example.com/plan",
		"summaryType":  "STANDARD",
		"documentName": "meeting-notes.txt",
	}

	cases := map[string]struct {
		contentType string
		fileName    string
	}{
		"txt":      {"text/plain; charset=utf-8", "summary-abc123.txt"},
		"markdown": {"text/markdown; charset=utf-8", "summary-abc123.md"},
		"pdf":      {"application/pdf", "summary-abc123.pdf"},
	}

	for format, want := range cases {
		rec := env.do(jsonRequest(t, http.MethodPost, "/api/export/"+format, body))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", format, rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Content-Type") != want.contentType {
			t.Fatalf("%s: unexpected content type %q", format, rec.Header().Get("Content-Type"))
		}
		if rec.Header().Get("Content-Disposition") != `attachment; filename="`+want.fileName+`"` {
			t.Fatalf("%s: unexpected disposition %q", format, rec.Header().Get("Content-Disposition"))
		}
		if rec.Body.Len() == 0 {
			t.Fatalf("%s: expected a body", format)
		}
	}

	expectError(t, env.do(jsonRequest(t, http.MethodPost, "/api/export/docx", body)),
		http.StatusBadRequest, "Unsupported export format")
	expectError(t, env.do(jsonRequest(t, http.MethodPost, "/api/export/txt", map[string]any{"title": "x"})),
		http.StatusBadRequest, "Invalid summary data")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || decode[map[string]string](t, rec)["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}
