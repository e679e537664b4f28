package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/vybe/internal/domain"
	apperrors "github.com/pscheid92/vybe/internal/errors"
	"github.com/pscheid92/vybe/internal/metrics"
	"github.com/pscheid92/vybe/internal/platform/correlation"
	"github.com/pscheid92/vybe/internal/tokenstore"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *tokenstore.Tokens, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	tokens := tokenstore.New(tokenstore.NewMemory())
	client := NewClient(srv.URL+"/", tokens, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	return client, tokens, &logs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_Success(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "vybe/")
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "amara@example.com", body["email"])
		assert.Equal(t, "s3cret", body["password"])

		writeJSON(w, http.StatusOK, map[string]string{
			"access_token":  "jwt-access",
			"token_type":    "bearer",
			"refresh_token": "opaque-refresh",
		})
	})

	resp, err := client.Login(context.Background(), "amara@example.com", "s3cret")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.TokenPair{AccessToken: "jwt-access", RefreshToken: "opaque-refresh"}, resp.Tokens)
}

func TestLogin_Unauthorized(t *testing.T) {
	client, _, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Incorrect email or password", "code": "unauthorized"})
	})

	_, err := client.Login(context.Background(), "amara@example.com", "wrong")

	var respErr *apperrors.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusUnauthorized, respErr.StatusCode)
	assert.Equal(t, "Incorrect email or password", respErr.Body.Message)
	assert.Equal(t, "Incorrect email or password", apperrors.Message(err))
	assert.Contains(t, logs.String(), "context=login")
	assert.Contains(t, logs.String(), "status=401")
}

func TestLogin_NonJSONErrorBody(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.Login(context.Background(), "amara@example.com", "s3cret")

	var respErr *apperrors.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "upstream exploded\n", string(respErr.Raw))
	assert.Equal(t, "request failed with status code 502", apperrors.Message(err))
}

func TestLogin_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	var logs bytes.Buffer
	client := NewClient(baseURL, tokenstore.New(tokenstore.NewMemory()), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	_, err := client.Login(context.Background(), "amara@example.com", "s3cret")

	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, apperrors.ConnectivityMessage, apperrors.Message(err))
	assert.Contains(t, logs.String(), "Request was made but no response was received")
}

func TestTimeoutIsConnectivity(t *testing.T) {
	release := make(chan struct{})
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	t.Cleanup(func() { close(release) })
	WithTimeout(50 * time.Millisecond)(client)

	_, err := client.Register(context.Background(), "amara@example.com", "s3cret")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindConnectivity, apperrors.Kind(err))
}

func TestRegister_Success(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		writeJSON(w, http.StatusCreated, map[string]any{"id": "u-1", "email": "amara@example.com", "is_active": true})
	})

	resp, err := client.Register(context.Background(), "amara@example.com", "s3cret")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.User{ID: "u-1", Email: "amara@example.com", IsActive: true}, resp.User)
}

func TestCurrentUser_SendsBearerFromStore(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer jwt-access", r.Header.Get("Authorization"))
		assert.Equal(t, "feed0001", r.Header.Get(correlation.Header))
		writeJSON(w, http.StatusOK, map[string]any{"id": "u-1", "email": "amara@example.com", "is_active": true})
	})
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{AccessToken: "jwt-access", RefreshToken: "r"}))

	ctx := correlation.WithID(context.Background(), "feed0001")
	user, err := client.CurrentUser(ctx)

	require.NoError(t, err)
	assert.Equal(t, "amara@example.com", user.Email)
}

func TestCurrentUser_WithoutTokenSendsNothing(t *testing.T) {
	called := false
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.CurrentUser(context.Background())

	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.False(t, called)
}

func TestCurrentUser_MalformedBody(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{AccessToken: "a", RefreshToken: "r"}))

	_, err := client.CurrentUser(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindGeneric, apperrors.Kind(err))
}

func TestLogout_PostsWithBearer(t *testing.T) {
	var gotAuth string
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, tokens.Save(context.Background(), domain.TokenPair{AccessToken: "jwt-access", RefreshToken: "r"}))

	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, "Bearer jwt-access", gotAuth)
}

func TestClientMetrics_RecordsOutcomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/login" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": "u1", "email": "a@b.c", "is_active": true})
	}))
	t.Cleanup(srv.Close)

	m := metrics.NewClientMetrics(prometheus.NewRegistry())
	client := NewClient(srv.URL, tokenstore.New(tokenstore.NewMemory()),
		WithMetrics(m),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	_, err := client.Register(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "a@b.c", "bad")
	require.Error(t, err)
	_, err = client.CurrentUser(context.Background())
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("register", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("login", "api")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("getCurrentUser", "generic")))
}

func TestWithTimeout_DoesNotModifyCallerClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	client := NewClient("http://localhost", tokenstore.New(tokenstore.NewMemory()),
		WithHTTPClient(shared),
		WithTimeout(2*time.Second),
	)

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 2*time.Second, client.http.Timeout)
	assert.NotSame(t, shared, client.http)
}
