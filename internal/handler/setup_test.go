package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/docvault/internal/config"
	"github.com/xxxsen/docvault/internal/handler"
	"github.com/xxxsen/docvault/internal/metrics"
	"github.com/xxxsen/docvault/internal/middleware"
	"github.com/xxxsen/docvault/internal/model"
	"github.com/xxxsen/docvault/internal/pkg/jwt"
	"github.com/xxxsen/docvault/internal/service"
	"github.com/xxxsen/docvault/internal/testutil"
)

var jwtSecret = []byte("test-secret")

type testEnv struct {
	router http.Handler
	store  *testutil.MemoryStore
	now    *time.Time
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupRouter(t *testing.T, limit config.RateLimitConfig) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemoryStore()
	store.AddUser(model.User{ID: 1, Email: "a@x.com", Name: "Alice"})
	store.AddUser(model.User{ID: 2, Email: "b@x.com", Name: "Bob"})
	store.AddCompany(model.Company{ID: 10, UserID: 1, Name: "Acme"})
	folderID := int64(5)
	store.AddFolder(model.Folder{ID: folderID, UserID: 1, CompanyID: 10, Name: "Contracts", Category: "legal"})
	store.AddDocument(model.Document{ID: 42, UserID: 1, CompanyID: 10, Name: "Invoice", Category: "finance", FileURL: "/files/invoice.pdf", MimeType: "application/pdf"})
	store.AddDocument(model.Document{ID: 43, UserID: 1, CompanyID: 10, FolderID: &folderID, Name: "Lease", Category: "legal", FileURL: "/files/lease.pdf", MimeType: "application/pdf"})
	store.AddDocument(model.Document{ID: 99, UserID: 2, CompanyID: 10, Name: "Foreign", Category: "misc", FileURL: "/files/f.pdf", MimeType: "text/plain"})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := &testEnv{store: store, now: &now}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	shareService := service.NewShareService(service.ShareDeps{
		Shares:    store,
		Documents: store,
		Folders:   store.Folders(),
		Companies: store,
		Users:     store.Users(),
		Metrics:   m,
		BaseURL:   "https://vault.example.com",
		Now:       func() time.Time { return *env.now },
	})

	deps := handler.RouterDeps{
		Shares:           handler.NewShareHandler(shareService, config.DefaultMaxExpiresInMinutes),
		Health:           handler.NewHealthHandler(),
		Metrics:          promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ResolveRateLimit: limit,
		JWTSecret:        jwtSecret,
	}
	engine, err := webapi.NewEngine(
		"/api",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
			m.Middleware(),
		),
	)
	require.NoError(t, err)
	env.router = engine
	return env
}

func bearer(t *testing.T, userID int64, email string) string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, email, jwtSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, path, auth string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		payload, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)

	var env envelope
	if resp.Header().Get("Content-Type") != "" && bytes.HasPrefix(resp.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	}
	return resp, env
}
