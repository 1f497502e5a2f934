package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/legallite-api/internal/handlers"
	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
	"github.com/Shimizu-Technology/legallite-api/internal/services/render"
	"github.com/Shimizu-Technology/legallite-api/internal/services/risk"
	"github.com/Shimizu-Technology/legallite-api/internal/services/summary"
	"github.com/Shimizu-Technology/legallite-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}

func (c *client) json(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func newClient(t *testing.T, rateLimit int) *client {
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })

	h := handlers.NewHandler(testutil.NewMemStore(), summary.NewRegistry(),
		risk.NewScanner(risk.DefaultTerms), render.New("LegalLite"), nil, "router-secret")
	r := Setup(h, middleware.NewRateLimiter(rateLimit, stop), []string{"http://localhost:5173"})
	return &client{t: t, engine: r}
}

// TestFullWorkflow walks a user through register, mode choice, simplify,
// risky-term scan, history and export.
func TestFullWorkflow(t *testing.T) {
	c := newClient(t, 100)

	w := c.json(http.MethodPost, "/api/v1/auth/register", `{"email":"pat@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	c.token = auth.Token

	// Choosing a mode unlocks the pages.
	w = c.json(http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusConflict, w.Code)

	w = c.json(http.MethodPut, "/api/v1/session/mode", `{"mode":"demo"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	pdf, err := render.Render("lease.pdf", "The tenant pays a penalty for late rent.")
	require.NoError(t, err)

	w = c.do(testutil.UploadRequest(t, "/api/v1/documents/simplify", "lease.pdf", pdf))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
	var simplified models.SimplifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &simplified))
	assert.Equal(t, summary.PlaceholderText, simplified.Summary)

	w = c.do(testutil.UploadRequest(t, "/api/v1/documents/risky-terms", "lease.pdf", pdf))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"found":["penalty"]`)

	w = c.json(http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), simplified.HistoryID)

	w = c.json(http.MethodGet, simplified.DownloadURL, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="simplified_lease.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	// The session survives a token refresh and is cleared by logout.
	w = c.json(http.MethodPost, "/api/v1/auth/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	c.token = auth.Token

	w = c.json(http.MethodGet, "/api/v1/session", "")
	assert.Contains(t, w.Body.String(), `"mode":"demo"`)

	w = c.json(http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = c.json(http.MethodGet, "/api/v1/history", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := newClient(t, 100)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/session", "/api/v1/history"} {
		w := c.json(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := c.json(http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPagesAreRateLimited(t *testing.T) {
	c := newClient(t, 2)

	w := c.json(http.MethodPost, "/api/v1/auth/register", `{"email":"rl@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	c.token = auth.Token
	require.Equal(t, http.StatusOK, c.json(http.MethodPut, "/api/v1/session/mode", `{"mode":"demo"}`).Code)

	assert.Equal(t, http.StatusOK, c.json(http.MethodGet, "/api/v1/history", "").Code)
	assert.Equal(t, http.StatusOK, c.json(http.MethodGet, "/api/v1/history", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, c.json(http.MethodGet, "/api/v1/history", "").Code)

	// Session endpoints are not counted.
	assert.Equal(t, http.StatusOK, c.json(http.MethodGet, "/api/v1/session", "").Code)
}
