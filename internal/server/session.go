package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	sessionCookie   = "user"
	defaultUserName = "Usuário"
	roleAdmin       = "admin"
)

// User is the caller as described by the session cookie.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// IsAdmin reports whether the user sees every owner's leads.
func (u User) IsAdmin() bool { return u.Role == roleAdmin }

// sessionUser reads the caller from the session cookie. Missing or malformed
// cookies yield the anonymous default.
func sessionUser(r *http.Request) User {
	anon := User{Name: defaultUserName}

	raw, ok := cookieValue(r, sessionCookie)
	if !ok || raw == "" {
		return anon
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	var payload struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
		Role string          `json:"role"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		zap.L().Warn("server: malformed session cookie", zap.Error(err))
		return anon
	}

	u := User{Name: strings.TrimSpace(payload.Name), Role: payload.Role}
	if id, err := parseUserID(payload.ID); err == nil {
		u.ID = id
	} else {
		zap.L().Warn("server: session cookie has a non-numeric id", zap.ByteString("id", payload.ID))
	}
	if u.Name == "" {
		u.Name = defaultUserName
	}
	return u
}

// parseUserID accepts a JSON number or a numeric string.
func parseUserID(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	s = strings.Trim(s, `"`)
	return strconv.ParseInt(s, 10, 64)
}

// cookieValue scans the Cookie headers directly. net/http drops values
// containing quotes or commas, which raw JSON cookies carry.
func cookieValue(r *http.Request, name string) (string, bool) {
	for _, line := range r.Header.Values("Cookie") {
		for _, part := range strings.Split(line, ";") {
			k, v, found := strings.Cut(strings.TrimSpace(part), "=")
			if found && k == name {
				return strings.Trim(v, `"`), true
			}
		}
	}
	return "", false
}
