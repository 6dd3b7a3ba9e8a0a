package sankhya

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-assistant/internal/resilience"
)

// Credentials are the four values the login endpoint expects as headers.
type Credentials struct {
	Token    string
	AppKey   string
	Username string
	Password string
}

// LoginOption configures a Login.
type LoginOption func(*Login)

// WithLoginHTTPClient overrides the HTTP client used for login.
func WithLoginHTTPClient(hc *http.Client) LoginOption {
	return func(l *Login) { l.http = hc }
}

// WithLoginTimeout sets the per-attempt login timeout.
func WithLoginTimeout(d time.Duration) LoginOption {
	return func(l *Login) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLoginRetry overrides the retry policy for transient login failures.
func WithLoginRetry(cfg resilience.RetryConfig) LoginOption {
	return func(l *Login) { l.retry = cfg }
}

// Login authenticates against {base}/login.
type Login struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	timeout time.Duration
	retry   resilience.RetryConfig
}

// NewLogin creates a Login for the given gateway base URL.
func NewLogin(baseURL string, creds Credentials, opts ...LoginOption) *Login {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("sankhya", "login")

	l := &Login{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    http.DefaultClient,
		timeout: 10 * time.Second,
		retry:   retry,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

type loginResponse struct {
	BearerToken string `json:"bearerToken"`
	Token       string `json:"token"`
}

// Login implements Authenticator. Every failure matches ErrAuthentication.
func (l *Login) Login(ctx context.Context) (string, error) {
	tok, err := resilience.DoVal(ctx, l.retry, l.attempt)
	if err != nil {
		return "", withKind(ErrAuthentication, err)
	}
	return tok, nil
}

func (l *Login) attempt(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/login", strings.NewReader("{}"))
	if err != nil {
		return "", eris.Wrap(err, "sankhya: create login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", l.creds.Token)
	req.Header.Set("appkey", l.creds.AppKey)
	req.Header.Set("username", l.creds.Username)
	req.Header.Set("password", l.creds.Password)

	resp, err := l.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "sankhya: login request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "sankhya: read login response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &resilience.StatusError{Service: "sankhya", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", eris.Wrap(err, "sankhya: decode login response")
	}
	tok := lr.BearerToken
	if tok == "" {
		tok = lr.Token
	}
	if tok == "" {
		return "", eris.New("sankhya: token not found in login response")
	}
	return tok, nil
}
