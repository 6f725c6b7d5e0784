package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"

	"github.com/pennywise/expense-tracker/internal/api/cookie"
	"github.com/pennywise/expense-tracker/internal/api/handler"
	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/core/ports"
	"github.com/pennywise/expense-tracker/internal/core/service"
	"github.com/pennywise/expense-tracker/internal/infrastructure/db/sqlite"
	"github.com/pennywise/expense-tracker/internal/infrastructure/security"
)

type memExpenses struct {
	items []*domain.Expense
}

func (m *memExpenses) Create(_ context.Context, in ports.CreateExpenseInput) (*domain.Expense, error) {
	e := &domain.Expense{ID: fmt.Sprintf("e%d", len(m.items)+1), UserID: in.UserID, Amount: in.Amount, Description: in.Description}
	m.items = append(m.items, e)
	return e, nil
}

func (m *memExpenses) List(_ context.Context, f ports.ListExpensesFilter) ([]*domain.Expense, error) {
	var out []*domain.Expense
	for _, e := range m.items {
		if e.UserID == f.UserID {
			out = append(out, e)
		}
	}
	return out, nil
}

type testServer struct {
	router http.Handler
	auth   *service.AuthService
	store  *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	auth := service.NewAuthService(store, store,
		security.NewHasher(security.Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1}),
		security.NewTokenGenerator(),
		zerolog.Nop())

	reg := prometheus.NewRegistry()
	router := NewRouter(Dependencies{
		Auth:       auth,
		Expenses:   &memExpenses{},
		SessionTTL: domain.DefaultSessionTTL,
		Readiness:  map[string]handler.Pinger{"sqlite": store},
		Logger:     zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testServer{router: router, auth: auth, store: store}
}

func sessionCookieFrom(t *testing.T, res *http.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == cookie.Name && c.Value != "" {
			return c.Value
		}
	}
	t.Fatalf("no %s cookie in response", cookie.Name)
	return ""
}

func hasHeaderParts(header string, parts ...string) func(*http.Response, *http.Request) error {
	return func(res *http.Response, _ *http.Request) error {
		got := res.Header.Get(header)
		for _, p := range parts {
			if !strings.Contains(got, p) {
				return fmt.Errorf("%s %q missing %q", header, got, p)
			}
		}
		return nil
	}
}

// callerIs checks a /api/auth/me body names the expected user and carries no
// password material.
func callerIs(userID int64, username string) func(*http.Response, *http.Request) error {
	return func(res *http.Response, _ *http.Request) error {
		var body struct {
			UserID int64          `json:"userId"`
			User   map[string]any `json:"user"`
		}
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			return err
		}
		if body.UserID != userID || body.User["username"] != username {
			return fmt.Errorf("unexpected caller %+v", body)
		}
		for key := range body.User {
			if strings.Contains(strings.ToLower(key), "password") || strings.Contains(strings.ToLower(key), "hash") {
				return fmt.Errorf("secret field %q exposed", key)
			}
		}
		return nil
	}
}

func TestAliceScenario(t *testing.T) {
	srv := newTestServer(t)

	apitest.New().
		Handler(srv.router).
		Post("/api/auth/register").
		JSON(`{"username":"alice","email":"alice@example.com","password":"secret1"}`).
		Expect(t).
		Status(http.StatusCreated).
		Body(`{"success":true,"message":"User registered successfully","userId":1}`).
		End()

	login := apitest.New().
		Handler(srv.router).
		Post("/api/auth/login").
		JSON(`{"email":"alice@example.com","password":"secret1"}`).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success":true,"message":"Login successful","userId":1}`).
		CookiePresent(cookie.Name).
		Assert(hasHeaderParts("Set-Cookie", "HttpOnly", "Secure", "SameSite=Strict", "Path=/", "Max-Age=604800")).
		End()
	token := sessionCookieFrom(t, login.Response)

	apitest.New().
		Handler(srv.router).
		Get("/api/auth/me").
		Header("Cookie", "userId=1; "+cookie.Name+"="+token+"; theme=dark").
		Expect(t).
		Status(http.StatusOK).
		Assert(callerIs(1, "alice")).
		End()

	require.True(t, srv.auth.VerifySession(context.Background(), token).Valid)

	apitest.New().
		Handler(srv.router).
		Post("/api/auth/logout").
		Cookie(cookie.Name, token).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success":true}`).
		Assert(hasHeaderParts("Set-Cookie", cookie.Name+"=", "Max-Age=0")).
		End()

	require.False(t, srv.auth.VerifySession(context.Background(), token).Valid)

	apitest.New().
		Handler(srv.router).
		Get("/api/auth/me").
		Cookie(cookie.Name, token).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"error":"Unauthorized"}`).
		End()
}

func TestMe_ReturnsCaller(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.auth.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.True(t, reg.Success)
	login := srv.auth.Authenticate(context.Background(), "alice@example.com", "secret1")
	require.True(t, login.Success)

	apitest.New().
		Handler(srv.router).
		Get("/api/auth/me").
		Cookie(cookie.Name, *login.SessionToken).
		Expect(t).
		Status(http.StatusOK).
		Assert(callerIs(*reg.UserID, "alice")).
		End()
}

func TestRegister_Conflicts(t *testing.T) {
	srv := newTestServer(t)
	body := `{"username":"alice","email":"alice@example.com","password":"secret1"}`

	apitest.New().Handler(srv.router).Post("/api/auth/register").JSON(body).
		Expect(t).Status(http.StatusCreated).End()

	apitest.New().Handler(srv.router).Post("/api/auth/register").JSON(body).
		Expect(t).
		Status(http.StatusConflict).
		Body(`{"success":false,"message":"Email already registered"}`).
		End()

	apitest.New().Handler(srv.router).Post("/api/auth/register").
		JSON(`{"username":"alice","email":"other@example.com","password":"secret1"}`).
		Expect(t).
		Status(http.StatusConflict).
		Body(`{"success":false,"message":"Username already taken"}`).
		End()
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	apitest.New().Handler(srv.router).Post("/api/auth/register").
		JSON(`{"username":"alice","email":"alice@example.com","password":"12345"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"success":false,"message":"Password must be at least 6 characters"}`).
		End()

	apitest.New().Handler(srv.router).Post("/api/auth/register").
		JSON(`{"username":"","email":"alice@example.com","password":"secret1"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"success":false,"message":"Username, email, and password are required"}`).
		End()

	apitest.New().Handler(srv.router).Post("/api/auth/register").
		JSON(`{"username":`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"success":false,"message":"invalid payload"}`).
		End()
}

func TestLogin_SameFailureForUnknownEmailAndWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	require.True(t, srv.auth.Register(context.Background(), "alice", "alice@example.com", "secret1").Success)

	for _, body := range []string{
		`{"email":"nobody@example.com","password":"secret1"}`,
		`{"email":"alice@example.com","password":"wrong-one"}`,
	} {
		apitest.New().Handler(srv.router).Post("/api/auth/login").JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"success":false,"message":"Invalid email or password"}`).
			CookieNotPresent(cookie.Name).
			End()
	}
}

func TestLogout_Anonymous(t *testing.T) {
	srv := newTestServer(t)

	apitest.New().Handler(srv.router).Post("/api/auth/logout").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success":true}`).
		Assert(hasHeaderParts("Set-Cookie", "Max-Age=0")).
		End()
}

func TestExpenses_RequireCaller(t *testing.T) {
	srv := newTestServer(t)

	apitest.New().Handler(srv.router).Get("/api/expenses").
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"error":"Unauthorized"}`).
		End()

	require.True(t, srv.auth.Register(context.Background(), "alice", "alice@example.com", "secret1").Success)
	login := srv.auth.Authenticate(context.Background(), "alice@example.com", "secret1")

	apitest.New().Handler(srv.router).Post("/api/expenses").
		Cookie(cookie.Name, *login.SessionToken).
		JSON(`{"amount":4.5,"description":"coffee"}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	apitest.New().Handler(srv.router).Get("/api/expenses").
		Cookie(cookie.Name, *login.SessionToken).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"items":[{"id":"e1","userId":1,"amount":4.5,"description":"coffee","category":"","date":"0001-01-01T00:00:00Z","createdAt":"0001-01-01T00:00:00Z"}],"count":1}`).
		End()
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	apitest.New().Handler(srv.router).Get("/health").
		Expect(t).Status(http.StatusOK).Body(`{"status":"ok"}`).End()

	apitest.New().Handler(srv.router).Get("/health/ready").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"status":"ok","dependencies":{"sqlite":{"status":"ok"}}}`).
		End()

	apitest.New().Handler(srv.router).Get("/metrics").
		Expect(t).
		Status(http.StatusOK).
		Assert(hasHeaderParts("Content-Type", "text/plain")).
		End()
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	apitest.New().Handler(srv.router).Get("/nope").
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"error":"Not Found"}`).
		End()
}
