package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"office-ledger/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		ServerPort: "0",
		Backend:    config.BackendMemory,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := NewServer(cfg, logger)
	require.NoError(t, err)
	return srv
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, srv *Server, method, path, actor string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if actor != "" {
		req.Header.Set("X-Account-ID", actor)
	}

	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	var env envelope
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createAccount(t *testing.T, srv *Server, username, role, balance string) string {
	t.Helper()

	rec, env := doJSON(t, srv, http.MethodPost, "/accounts", "", map[string]string{
		"username":        username,
		"role":            role,
		"initial_balance": balance,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var account struct {
		AccountID string `json:"account_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &account))
	return account.AccountID
}

func getBalance(t *testing.T, srv *Server, accountID string) string {
	t.Helper()

	rec, env := doJSON(t, srv, http.MethodGet, "/accounts/"+accountID+"/balance", accountID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp.Balance
}

func TestExpenseAndDepositFlow(t *testing.T) {
	srv := newTestServer(t)
	userID := createAccount(t, srv, "ravi", "user", "500")

	rec, _ := doJSON(t, srv, http.MethodPost, "/expenses", userID, map[string]string{
		"description": "printer paper",
		"amount":      "200",
		"category":    "Stationary Expenses",
		"mode":        "Cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "300", getBalance(t, srv, userID))

	rec, _ = doJSON(t, srv, http.MethodPost, "/deposits", userID, map[string]string{"amount": "150"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "450", getBalance(t, srv, userID))

	// NEFT expense over the balance is recorded but does not touch cash
	rec, _ = doJSON(t, srv, http.MethodPost, "/expenses", userID, map[string]string{
		"description": "vendor transfer",
		"amount":      "1000",
		"category":    "Electricity Charges",
		"mode":        "NEFT",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "450", getBalance(t, srv, userID))

	rec, env := doJSON(t, srv, http.MethodGet, "/accounts/"+userID+"/entries", userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 3)
}

func TestExpenseFailureModes(t *testing.T) {
	srv := newTestServer(t)
	userID := createAccount(t, srv, "ravi", "user", "50")

	rec, env := doJSON(t, srv, http.MethodPost, "/expenses", userID, map[string]string{
		"description": "team lunch",
		"amount":      "100",
		"category":    "Staff Welfare",
		"mode":        "Cash",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "insufficient_funds", env.Error.Code)
	assert.Equal(t, "50", getBalance(t, srv, userID))

	rec, env = doJSON(t, srv, http.MethodPost, "/expenses", userID, map[string]string{
		"description": "snacks",
		"amount":      "-5",
		"category":    "Staff Welfare",
		"mode":        "Cash",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)

	rec, env = doJSON(t, srv, http.MethodPost, "/expenses", "", map[string]string{
		"description": "snacks",
		"amount":      "5",
		"category":    "Staff Welfare",
		"mode":        "Cash",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
}

func TestAdminEndpoints(t *testing.T) {
	srv := newTestServer(t)
	adminID := createAccount(t, srv, "admin", "admin", "0")
	userID := createAccount(t, srv, "ravi", "user", "100")

	// non-admin actor is rejected and the target balance stays put
	rec, env := doJSON(t, srv, http.MethodPost, "/admin/credits", userID, map[string]string{
		"target_account_id": userID,
		"amount":            "250",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)
	assert.Equal(t, "100", getBalance(t, srv, userID))

	rec, _ = doJSON(t, srv, http.MethodPost, "/admin/credits", adminID, map[string]string{
		"target_account_id": userID,
		"amount":            "250",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "350", getBalance(t, srv, userID))

	rec, env = doJSON(t, srv, http.MethodGet, "/admin/entries", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 1)

	rec, env = doJSON(t, srv, http.MethodGet, "/admin/accounts", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accounts []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	assert.Len(t, accounts, 2)

	rec, _ = doJSON(t, srv, http.MethodGet, "/admin/entries", userID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccountReadsScopedToOwner(t *testing.T) {
	srv := newTestServer(t)
	adminID := createAccount(t, srv, "admin", "admin", "0")
	userID := createAccount(t, srv, "ravi", "user", "100")
	otherID := createAccount(t, srv, "mallory", "user", "0")

	// another user cannot see ravi's ledger
	for _, path := range []string{
		"/accounts/" + userID,
		"/accounts/" + userID + "/balance",
		"/accounts/" + userID + "/entries",
		"/accounts/" + userID + "/report.csv",
	} {
		rec, _ := doJSON(t, srv, http.MethodGet, path, otherID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "path %s", path)
	}

	// no actor header at all is rejected
	rec, _ := doJSON(t, srv, http.MethodGet, "/accounts/"+userID+"/balance", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the owner and an admin both see it
	rec, _ = doJSON(t, srv, http.MethodGet, "/accounts/"+userID+"/balance", userID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, srv, http.MethodGet, "/accounts/"+userID+"/balance", adminID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDuplicateUsernameRejected(t *testing.T) {
	srv := newTestServer(t)
	createAccount(t, srv, "ravi", "user", "0")

	rec, env := doJSON(t, srv, http.MethodPost, "/accounts", "", map[string]string{"username": "ravi"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "duplicate_account", env.Error.Code)
}

func TestAccountCSVReport(t *testing.T) {
	srv := newTestServer(t)
	userID := createAccount(t, srv, "ravi", "user", "500")

	rec, _ := doJSON(t, srv, http.MethodPost, "/expenses", userID, map[string]string{
		"description": "pooja flowers",
		"amount":      "40",
		"category":    "Pooja Expenses",
		"mode":        "Cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodGet, "/accounts/"+userID+"/report.csv", userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report-ravi-")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "S.No,Date,Timestamp,Description,Category,Type,Amount,Mode", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "pooja flowers")
	assert.Contains(t, lines[1], "Cash")
}

func TestAdminCSVReport(t *testing.T) {
	srv := newTestServer(t)
	adminID := createAccount(t, srv, "admin", "admin", "0")
	userID := createAccount(t, srv, "ravi", "user", "100")

	rec, _ := doJSON(t, srv, http.MethodPost, "/expenses", userID, map[string]string{
		"description": "bulbs",
		"amount":      "60",
		"category":    "Electricity Charges",
		"mode":        "Cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodGet, "/admin/report.csv", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Username")
	assert.Contains(t, lines[1], "ravi")

	// non-admin actors get no report
	rec, _ = doJSON(t, srv, http.MethodGet, "/admin/report.csv", userID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
