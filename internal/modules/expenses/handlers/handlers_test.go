package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Seeksy-app/runway/internal/modules/expenses"
)

func setupTestRouter(t *testing.T) *chi.Mux {
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	financeDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { financeDB.Close() })

	_, err = financeDB.Exec(`CREATE TABLE expenses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		monthly_amount REAL NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)

	router := chi.NewRouter()
	NewHandler(expenses.NewRepository(financeDB, logger), logger).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreateAndList(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/expenses/",
		`{"name": "Hosting", "category": "infrastructure", "monthly_amount": 450}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created expenses.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "infrastructure", created.Category)

	rec = doRequest(t, router, http.MethodGet, "/expenses/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data struct {
			Expenses []expenses.Expense `json:"expenses"`
			Count    int                `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Data.Count)
}

func TestHandleCreateValidation(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/expenses/",
		`{"name": "", "monthly_amount": 450}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/expenses/",
		`{"name": "Hosting", "monthly_amount": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBurnTotal(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/expenses/",
		`{"name": "Payroll", "category": "people", "monthly_amount": 30000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/expenses/",
		`{"name": "Hosting", "category": "infrastructure", "monthly_amount": 450}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/expenses/burn", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		MonthlyBurnTotal float64 `json:"monthly_burn_total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 30450.0, response.MonthlyBurnTotal)
}

func TestHandleDeactivate(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/expenses/",
		`{"name": "Hosting", "monthly_amount": 450}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created expenses.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(t, router, http.MethodDelete, "/expenses/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/expenses/burn", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		MonthlyBurnTotal float64 `json:"monthly_burn_total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 0.0, response.MonthlyBurnTotal)
}

func TestHandleDeactivateUnknown(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/expenses/missing-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
