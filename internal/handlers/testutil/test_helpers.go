package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nandakumarbm26/Products-RestAPI/internal/api"
	"github.com/nandakumarbm26/Products-RestAPI/internal/app"
	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
	sharedtestutil "github.com/nandakumarbm26/Products-RestAPI/internal/database/testutil"
	"github.com/nandakumarbm26/Products-RestAPI/internal/models"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T          *testing.T
	DB         *gorm.DB
	Config     *app.Config
	Store      *cache.MemoryStore
	Monitoring *monitoring.Module
	Router     *gin.Engine
}

// EnvOption customises the configuration before the router is built.
type EnvOption func(*app.Config)

// NewEnv provisions a fresh handler test environment with migrations applied and an in-process cache.
// Rate limiting is disabled unless an option turns it back on.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Cache.Products.Backend = app.BackendMemory
	cfg.Server.RateLimit.Enabled = false
	for _, opt := range opts {
		opt(cfg)
	}

	mon, err := monitoring.NewModule(monitoring.Options{})
	require.NoError(t, err)

	store := cache.NewMemoryStore()
	router, err := api.NewRouter(db, cfg, store, mon)
	require.NoError(t, err)

	return &Env{
		T:          t,
		DB:         db,
		Config:     cfg,
		Store:      store,
		Monitoring: mon,
		Router:     router,
	}
}

// ErrorResponse mirrors the error envelope returned for failed requests.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeError parses the error envelope from a recorder.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.False(t, resp.Success, w.Body.String())
	require.NotNil(t, resp.Error, w.Body.String())
	return resp
}

// DecodeInto unmarshals a bare JSON body into the provided destination.
func DecodeInto[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// Request executes an HTTP request against the test router, JSON-encoding the body when present.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	switch payload := body.(type) {
	case nil:
		buf = bytes.NewBuffer(nil)
	case string:
		buf = bytes.NewBufferString(payload)
	default:
		data, err := json.Marshal(payload)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "192.0.2.10:1234"

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// CreateProduct posts a product and returns the stored record.
func (e *Env) CreateProduct(name string, price int64, category string) models.Product {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/products", map[string]any{
		"name":     name,
		"price":    price,
		"category": category,
	})
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	var product models.Product
	DecodeInto(e.T, w, &product)
	require.NotZero(e.T, product.ID)
	return product
}
