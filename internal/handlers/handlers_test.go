package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
	"github.com/Shimizu-Technology/legallite-api/internal/services/render"
	"github.com/Shimizu-Technology/legallite-api/internal/services/risk"
	"github.com/Shimizu-Technology/legallite-api/internal/services/summary"
	"github.com/Shimizu-Technology/legallite-api/internal/testutil"
)

const testSecret = "handler-test-secret"

var _ Store = (*testutil.MemStore)(nil)

func init() {
	gin.SetMode(gin.TestMode)
}

// failingSummarizer always errors, like a remote model that is down.
type failingSummarizer struct{}

func (failingSummarizer) Summarize(ctx context.Context, text string) (*summary.Result, error) {
	return nil, errors.New("upstream returned 503")
}

func (failingSummarizer) Name() string { return "openai" }

// echoSummarizer returns the first words of the input.
type echoSummarizer struct{}

func (echoSummarizer) Summarize(ctx context.Context, text string) (*summary.Result, error) {
	words := strings.Fields(text)
	if len(words) > 6 {
		words = words[:6]
	}
	return &summary.Result{Summary: strings.Join(words, " "), Model: "echo"}, nil
}

func (echoSummarizer) Name() string { return "echo" }

func newTestHandler(t *testing.T) (*Handler, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	renderer := render.New(render.DefaultProductName)
	renderer.Now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

	h := NewHandler(store, summary.NewRegistry(), risk.NewScanner(risk.DefaultTerms), renderer, nil, testSecret)
	return h, store
}

// testEngine wires the handlers the way the router does, minus JWT: the
// session is injected directly.
func testEngine(h *Handler, session *models.Session) *gin.Engine {
	r := gin.New()
	r.GET("/api/v1/health", h.HealthCheck)
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	authed := r.Group("/api/v1")
	authed.Use(func(c *gin.Context) {
		if session != nil {
			middleware.SetSession(c, session)
		}
	})
	authed.GET("/auth/me", h.GetMe)
	authed.POST("/auth/refresh", h.RefreshToken)
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/session", h.GetSession)
	authed.PUT("/session/mode", h.ChooseMode)
	authed.PUT("/session/page", h.Navigate)

	pages := authed.Group("")
	pages.Use(middleware.RequireMode())
	pages.POST("/documents/extract", h.ExtractDocument)
	pages.POST("/documents/simplify", h.SimplifyDocument)
	pages.POST("/documents/risky-terms", h.ScanRiskyTerms)
	pages.GET("/history", h.ListHistory)
	pages.GET("/history/:id", h.GetHistoryItem)
	pages.GET("/history/:id/export", h.ExportHistoryItem)
	pages.GET("/audio/:name", h.ServeAudio)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

// newUser stores a user and returns a session for it.
func newUser(t *testing.T, store *testutil.MemStore, mode models.Mode) *models.Session {
	t.Helper()
	u := &models.User{Email: "tenant@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	s := models.NewSession(u)
	if mode != "" {
		s.ChooseMode(mode)
		require.NoError(t, store.SaveSession(context.Background(), s))
	}
	return s
}

func renderPDF(t *testing.T, text string) []byte {
	t.Helper()
	data, err := render.Render("fixture.pdf", text)
	require.NoError(t, err)
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e models.ErrorResponse
	decode(t, w, &e)
	assert.Equal(t, w.Code, e.Code)
	return e.Error
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(t)
	w := doJSON(testEngine(h, nil), http.MethodGet, "/api/v1/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "healthy", resp.Database)
	assert.Equal(t, "placeholder", resp.Summarizer)
	assert.False(t, resp.Voice)
	assert.Equal(t, 4, resp.RiskyTerms)
}

func TestRegisterAndLogin(t *testing.T) {
	h, _ := newTestHandler(t)
	r := testEngine(h, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", `{"email":"ada@example.com","password":"correct horse"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg models.AuthResponse
	decode(t, w, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.NotContains(t, w.Body.String(), "password_hash")

	claims, err := middleware.ParseJWT(reg.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"duplicate email any case", "/api/v1/auth/register", `{"email":"ADA@example.com","password":"another one"}`, http.StatusConflict, "email_taken"},
		{"short password", "/api/v1/auth/register", `{"email":"bob@example.com","password":"short"}`, http.StatusBadRequest, "invalid_request"},
		{"password over 72 characters", "/api/v1/auth/register", `{"email":"bob@example.com","password":"` + strings.Repeat("a", 73) + `"}`, http.StatusBadRequest, "invalid_request"},
		{"password over 72 bytes", "/api/v1/auth/register", `{"email":"bob@example.com","password":"` + strings.Repeat("€", 30) + `"}`, http.StatusBadRequest, "invalid_request"},
		{"bad email", "/api/v1/auth/register", `{"email":"bob","password":"long enough"}`, http.StatusBadRequest, "invalid_request"},
		{"wrong password", "/api/v1/auth/login", `{"email":"ada@example.com","password":"wrong horse"}`, http.StatusUnauthorized, "invalid_credentials"},
		{"unknown email", "/api/v1/auth/login", `{"email":"eve@example.com","password":"correct horse"}`, http.StatusUnauthorized, "invalid_credentials"},
		{"missing fields", "/api/v1/auth/login", `{}`, http.StatusBadRequest, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, errorCode(t, w))
		})
	}

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"email":"Ada@Example.com","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login models.AuthResponse
	decode(t, w, &login)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestMeAndRefresh(t *testing.T) {
	h, store := newTestHandler(t)
	s := newUser(t, store, "")
	r := testEngine(h, s)

	w := doJSON(r, http.MethodGet, "/api/v1/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), s.User.ID)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AuthResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Token)

	w = doJSON(testEngine(h, nil), http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionStateMachine(t *testing.T) {
	h, store := newTestHandler(t)
	s := newUser(t, store, "")
	r := testEngine(h, s)

	w := doJSON(r, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode_chosen":false`)
	assert.Contains(t, w.Body.String(), `"default_mode":"demo"`)

	// Pages are locked until a mode is chosen.
	w = doJSON(r, http.MethodPut, "/api/v1/session/page", `{"page":"history"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "mode_not_chosen", errorCode(t, w))

	w = doJSON(r, http.MethodPost, "/api/v1/documents/extract", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPut, "/api/v1/session/mode", `{"mode":"telepathy"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_mode", errorCode(t, w))

	w = doJSON(r, http.MethodPut, "/api/v1/session/mode", `{"mode":"demo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "demo", store.User(s.User.ID).Mode)
	assert.Equal(t, "upload", store.User(s.User.ID).CurrentPage)

	w = doJSON(r, http.MethodPut, "/api/v1/session/page", `{"page":"nowhere"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_page", errorCode(t, w))

	w = doJSON(r, http.MethodPut, "/api/v1/session/page", `{"page":"risky_terms"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"page":"risky_terms"`)
	assert.Equal(t, "risky_terms", store.User(s.User.ID).CurrentPage)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", store.User(s.User.ID).Mode)
	assert.Equal(t, "", store.User(s.User.ID).CurrentPage)
	assert.False(t, s.ModeChosen)
}

func TestExtractDocument(t *testing.T) {
	h, store := newTestHandler(t)
	r := testEngine(h, newUser(t, store, models.ModeDemo))

	w := do(r, testutil.UploadRequest(t, "/api/v1/documents/extract", "lease.pdf",
		renderPDF(t, "The tenant shall keep the premises clean.")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ExtractResponse
	decode(t, w, &resp)
	assert.Equal(t, "lease.pdf", resp.Filename)
	assert.Equal(t, 1, resp.PageCount)
	assert.Contains(t, resp.Text, "premises clean")
	assert.Greater(t, resp.WordCount, 0)
}

func TestUploadValidation(t *testing.T) {
	h, store := newTestHandler(t)
	r := testEngine(h, newUser(t, store, models.ModeDemo))
	valid := renderPDF(t, "text")

	tests := []struct {
		name       string
		filename   string
		data       []byte
		wantStatus int
		wantError  string
	}{
		{"wrong extension", "lease.docx", valid, http.StatusBadRequest, "invalid_file_type"},
		{"not a pdf", "lease.pdf", []byte("just some text"), http.StatusBadRequest, "invalid_pdf"},
		{"truncated pdf", "lease.pdf", valid[:len(valid)/3], http.StatusUnprocessableEntity, "extraction_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, testutil.UploadRequest(t, "/api/v1/documents/risky-terms", tt.filename, tt.data))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, errorCode(t, w))
		})
	}

	t.Run("missing file field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract", strings.NewReader(""))
		w := do(r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", errorCode(t, w))
	})
}

func TestTruncatedPDFOnEveryDocumentRoute(t *testing.T) {
	h, store := newTestHandler(t)
	r := testEngine(h, newUser(t, store, models.ModeDemo))
	valid := renderPDF(t, "Tenant shall pay rent.")

	for _, route := range []string{"extract", "simplify", "risky-terms"} {
		t.Run(route, func(t *testing.T) {
			w := do(r, testutil.UploadRequest(t, "/api/v1/documents/"+route, "lease.pdf", valid[:len(valid)/3]))
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, "extraction_failed", errorCode(t, w))
		})
	}
}

func TestScanRiskyTerms(t *testing.T) {
	h, store := newTestHandler(t)
	r := testEngine(h, newUser(t, store, models.ModeDemo))

	w := do(r, testutil.UploadRequest(t, "/api/v1/documents/risky-terms", "lease.pdf",
		renderPDF(t, "Any BREACH of this lease carries a Penalty of one month.")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.RiskScanResponse
	decode(t, w, &resp)
	assert.True(t, resp.Risky)
	assert.Equal(t, []string{"penalty", "breach"}, resp.Found, "configured order, not text order")
	assert.Equal(t, risk.DefaultTerms, resp.Checked)

	w = do(r, testutil.UploadRequest(t, "/api/v1/documents/risky-terms", "nice.pdf",
		renderPDF(t, "Both parties agree to be kind.")))
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.False(t, resp.Risky)
	assert.Empty(t, resp.Found)
	assert.Contains(t, w.Body.String(), `"found":[]`)
}

func TestSimplifyDocument(t *testing.T) {
	t.Run("demo mode", func(t *testing.T) {
		h, store := newTestHandler(t)
		s := newUser(t, store, models.ModeDemo)
		r := testEngine(h, s)

		w := do(r, testutil.UploadRequest(t, "/api/v1/documents/simplify", "lease.pdf", renderPDF(t, "Rent is due monthly.")))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp models.SimplifyResponse
		decode(t, w, &resp)
		assert.Equal(t, summary.PlaceholderText, resp.Summary)
		assert.Equal(t, "placeholder", resp.Summarizer)
		assert.Empty(t, resp.SummaryWarning)
		assert.Equal(t, "simplified_lease.pdf", resp.DownloadName)
		require.NotEmpty(t, resp.HistoryID)
		assert.Equal(t, "/api/v1/history/"+resp.HistoryID+"/export?format=pdf", resp.DownloadURL)
		assert.Empty(t, resp.AudioURL)

		items, err := store.ListHistory(context.Background(), s.User.ID, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "lease.pdf", items[0].Filename)
		assert.Equal(t, summary.PlaceholderText, items[0].Summary)
	})

	t.Run("remote summarizer", func(t *testing.T) {
		h, store := newTestHandler(t)
		h.Summaries.Register(models.ModeOpenAI, echoSummarizer{})
		r := testEngine(h, newUser(t, store, models.ModeOpenAI))

		w := do(r, testutil.UploadRequest(t, "/api/v1/documents/simplify", "lease.pdf", renderPDF(t, "Rent is due monthly.")))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp models.SimplifyResponse
		decode(t, w, &resp)
		assert.Equal(t, "echo", resp.Summarizer)
		assert.Contains(t, resp.Summary, "LegalLite")
	})

	t.Run("failing summarizer falls back", func(t *testing.T) {
		h, store := newTestHandler(t)
		h.Summaries.Register(models.ModeOpenAI, failingSummarizer{})
		r := testEngine(h, newUser(t, store, models.ModeOpenAI))

		w := do(r, testutil.UploadRequest(t, "/api/v1/documents/simplify", "lease.pdf", renderPDF(t, "Rent is due monthly.")))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp models.SimplifyResponse
		decode(t, w, &resp)
		assert.Equal(t, summary.PlaceholderText, resp.Summary)
		assert.Equal(t, "placeholder", resp.Summarizer)
		assert.Contains(t, resp.SummaryWarning, "upstream returned 503")
	})

	t.Run("history failure still answers", func(t *testing.T) {
		h, store := newTestHandler(t)
		store.FailHistory = true
		r := testEngine(h, newUser(t, store, models.ModeDemo))

		w := do(r, testutil.UploadRequest(t, "/api/v1/documents/simplify", "lease.pdf", renderPDF(t, "Rent is due monthly.")))
		require.Equal(t, http.StatusOK, w.Code)

		var resp models.SimplifyResponse
		decode(t, w, &resp)
		assert.Equal(t, summary.PlaceholderText, resp.Summary)
		assert.Empty(t, resp.HistoryID)
		assert.Empty(t, resp.DownloadURL)
	})
}
