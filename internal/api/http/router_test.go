package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apihttp "github.com/spec-kit/darshan-pass-service/internal/api/http"
	"github.com/spec-kit/darshan-pass-service/internal/api/http/handlers"
	"github.com/spec-kit/darshan-pass-service/internal/auth"
	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/events"
	"github.com/spec-kit/darshan-pass-service/internal/observability"
	"github.com/spec-kit/darshan-pass-service/internal/persistence"
	"github.com/spec-kit/darshan-pass-service/internal/repository"
	"github.com/spec-kit/darshan-pass-service/internal/service"
	"github.com/spec-kit/darshan-pass-service/internal/validation"
)

var apiNow = time.Date(2026, 10, 15, 4, 30, 0, 0, time.UTC)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type testAPI struct {
	app     *fiber.App
	metrics *observability.Metrics
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	kv := persistence.NewMemoryKV()

	requests, err := repository.NewRequestRepository(ctx, kv, "")
	require.NoError(t, err)
	gate, err := auth.NewGate([]auth.Credential{
		{Identity: "trusteelogin@app.com", Secret: "TRUST45332784", Role: domain.RoleTrustee},
		{Identity: "proteamlogin@app.com", Secret: "PRO4517084", Role: domain.RoleProTeam},
	}, bcrypt.MinCost, true)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", 30)

	clock := func() time.Time { return apiNow }
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requests,
		Validator:   validation.NewValidator(validation.WithClock(clock), validation.WithLocation(time.UTC)),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      logger,
		Clock:       clock,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Gate:        gate,
		Tokens:      tokens,
		SessionRepo: repository.NewSessionRepository(kv, ""),
		Logger:      logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New()
	apihttp.RegisterMiddlewares(app, logger, metrics, time.Second)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler("darshan-pass-service", "test", kv, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Verification:   handlers.NewVerificationHandler(requestService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})
	return &testAPI{app: app, metrics: metrics}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (a *testAPI) login(t *testing.T, identity, credential, role string) string {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"identity": identity, "credential": credential, "role": role,
	})
	require.Equal(t, http.StatusOK, status)
	var out struct {
		Token   string `json:"token"`
		Session struct {
			Authenticated bool   `json:"authenticated"`
			Role          string `json:"role"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.True(t, out.Session.Authenticated)
	return out.Token
}

type requestView struct {
	ID                   string   `json:"id"`
	Status               string   `json:"status"`
	StatusLabel          string   `json:"status_label"`
	CategoryLabel        string   `json:"category_label"`
	IsVIP                bool     `json:"is_vip"`
	VastraRecipientNames []string `json:"vastra_recipient_names"`
	PreferredTime        string   `json:"preferred_time"`
	Phone                string   `json:"phone"`
	EntryGate            string   `json:"entry_gate"`
}

func submission() map[string]any {
	return map[string]any{
		"name":                   "Asha",
		"phone":                  "98765 43210",
		"guest_count":            2,
		"category":               "VIP_VASTRA",
		"vastra_count":           1,
		"vastra_recipient_names": []string{"Asha"},
		"preferred_date":         "2026-10-15",
		"preferred_time_parts":   map[string]any{"hour": 9, "minute": 0, "period": "AM"},
	}
}

func TestAPI_EndToEnd(t *testing.T) {
	api := newTestAPI(t)
	trustee := api.login(t, "trusteelogin@app.com", "TRUST45332784", "TRUSTEE")

	status, env := api.do(t, http.MethodPost, "/requests", trustee, submission())
	require.Equal(t, http.StatusCreated, status, env.Error)
	var created requestView
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "PENDING", created.Status)
	require.Equal(t, "9876543210", created.Phone)
	require.Equal(t, "09:00 AM", created.PreferredTime)
	require.Equal(t, "VIP (Vastra)", created.CategoryLabel)
	require.True(t, created.IsVIP)
	require.Equal(t, "C", created.EntryGate)

	status, env = api.do(t, http.MethodGet, "/requests", trustee, nil)
	require.Equal(t, http.StatusOK, status)
	var mine []requestView
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)

	pro := api.login(t, "proteamlogin@app.com", "PRO4517084", "pro")
	status, env = api.do(t, http.MethodGet, "/verifications/"+created.ID, pro, nil)
	require.Equal(t, http.StatusOK, status)

	for i := 0; i < 2; i++ {
		status, env = api.do(t, http.MethodPost, "/verifications/"+created.ID+"/done", pro, nil)
		require.Equal(t, http.StatusOK, status)
		var done requestView
		require.NoError(t, json.Unmarshal(env.Data, &done))
		require.Equal(t, "DONE", done.Status)
		require.Equal(t, "Darshan Done", done.StatusLabel)
	}

	status, env = api.do(t, http.MethodGet, "/requests", trustee, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Equal(t, "DONE", mine[0].Status)

	status, _ = api.do(t, http.MethodDelete, "/requests/"+created.ID, trustee, nil)
	require.Equal(t, http.StatusOK, status)
	status, env = api.do(t, http.MethodGet, "/requests/"+created.ID, pro, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAPI_LoginErrors(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"identity": "trusteelogin@app.com", "credential": "bad", "role": "TRUSTEE",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	require.Equal(t, "invalid credentials. Use trusteelogin@app.com and password TRUST45332784.", env.Error.Message)

	status, env = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	status, env = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"identity": strings.Repeat("a", 300), "credential": "x", "role": "TRUSTEE",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "identity", env.Error.Details["field"])
}

func TestAPI_SessionAndLogout(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(t, http.MethodGet, "/auth/session", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", env.Error.Code)

	token := api.login(t, "proteamlogin@app.com", "PRO4517084", "PRO_TEAM")
	status, env = api.do(t, http.MethodGet, "/auth/session", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"authenticated":true,"role":"PRO_TEAM","identity":"proteamlogin@app.com"}`, string(env.Data))

	status, env = api.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"authenticated":false,"role":null,"identity":""}`, string(env.Data))
}

func TestAPI_ValidationAndRoleErrors(t *testing.T) {
	api := newTestAPI(t)
	trustee := api.login(t, "trusteelogin@app.com", "TRUST45332784", "TRUSTEE")
	pro := api.login(t, "proteamlogin@app.com", "PRO4517084", "PRO_TEAM")

	late := submission()
	delete(late, "preferred_time_parts")
	late["preferred_time"] = "09:01 PM"
	status, env := api.do(t, http.MethodPost, "/requests", trustee, late)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	require.Equal(t, "out_of_range", env.Error.Details["kind"])
	require.Equal(t, "preferred_time", env.Error.Details["field"])

	status, env = api.do(t, http.MethodPost, "/requests", pro, submission())
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", env.Error.Code)

	status, _ = api.do(t, http.MethodPost, "/verifications/REQ-1-ABCDEFG/done", trustee, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, env = api.do(t, http.MethodGet, "/verifications/garbage", pro, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", env.Error.Code)

	status, _ = api.do(t, http.MethodGet, "/requests", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	status, _ = api.do(t, http.MethodGet, "/requests", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	snap := api.metrics.Snapshot()
	require.Contains(t, snap.Requests, "/health/live|GET|200")
	require.NotEmpty(t, snap.Errors)
}
