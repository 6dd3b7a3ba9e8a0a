package sankhya

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crm-assistant/internal/resilience"
)

func staticTokens(tok string) *TokenCache {
	return NewTokenCache(AuthenticatorFunc(func(context.Context) (string, error) {
		return tok, nil
	}))
}

func TestRequest_SendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "v", body["k"])

		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok-1"))
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Request(context.Background(), srv.URL, map[string]string{"k": "v"}, &out))
	assert.True(t, out.OK)
}

func TestRequest_SessionExpiredInvalidatesToken(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(code)
			}))
			defer srv.Close()

			tokens := staticTokens("tok")
			c := NewClient(srv.URL, tokens)
			err := c.Request(context.Background(), srv.URL, struct{}{}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSessionExpired))
			assert.Empty(t, tokens.Cached())
			assert.Equal(t, 1, calls, "session expiry must not auto-retry")
		})
	}
}

func TestRequest_OtherStatusPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("stack trace")) //nolint:errcheck
	}))
	defer srv.Close()

	tokens := staticTokens("tok")
	c := NewClient(srv.URL, tokens)
	err := c.Request(context.Background(), srv.URL, struct{}{}, nil)
	require.Error(t, err)

	var se *resilience.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, "tok", tokens.Cached())
}

func TestRequest_LoginFailure(t *testing.T) {
	tokens := NewTokenCache(AuthenticatorFunc(func(context.Context) (string, error) {
		return "", withKind(ErrAuthentication, errors.New("down"))
	}))
	c := NewClient("http://unused.invalid", tokens)
	err := c.Request(context.Background(), "http://unused.invalid", struct{}{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestRequest_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok"), WithQueryTimeout(20*time.Millisecond))
	err := c.Request(context.Background(), srv.URL, struct{}{}, nil)
	require.Error(t, err)
}

func TestWithRateLimit(t *testing.T) {
	c := NewClient("http://x", staticTokens("t"), WithRateLimit(5))
	require.NotNil(t, c.limiter)
	assert.Equal(t, 5, c.limiter.Burst())

	c = NewClient("http://x", staticTokens("t"), WithRateLimit(0))
	assert.Nil(t, c.limiter)
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := NewClient("https://api.example.com/", staticTokens("t"))
	assert.Equal(t, "https://api.example.com", c.BaseURL())
}

func TestRequest_ExpiredSessionLogsInAgainOnNextCall(t *testing.T) {
	var mu sync.Mutex
	var logins, dataCalls int
	var bearers []string

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		logins++
		n := logins
		mu.Unlock()
		fmt.Fprintf(w, `{"bearerToken":"tok-%d"}`, n) //nolint:errcheck
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dataCalls++
		n := dataCalls
		bearers = append(bearers, r.Header.Get("Authorization"))
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	login := NewLogin(srv.URL, Credentials{Token: "tk", AppKey: "ak", Username: "u", Password: "p"},
		WithLoginRetry(fastRetry()))
	c := NewClient(srv.URL, NewTokenCache(login))

	err := c.Request(context.Background(), srv.URL+"/data", struct{}{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExpired))

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Request(context.Background(), srv.URL+"/data", struct{}{}, &out))
	assert.True(t, out.OK)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, logins)
	assert.Equal(t, []string{"Bearer tok-1", "Bearer tok-2"}, bearers)
}
