// Package session persists the backend session cookie between runs.
// Sessions are stored in ~/.config/compass/session.toml.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Cookie is the persisted form of one session cookie.
type Cookie struct {
	Name     string    `toml:"name"`
	Value    string    `toml:"value"`
	Path     string    `toml:"path,omitempty"`
	Domain   string    `toml:"domain,omitempty"`
	Expires  time.Time `toml:"expires,omitempty"`
	Secure   bool      `toml:"secure,omitempty"`
	HTTPOnly bool      `toml:"http_only,omitempty"`
}

// Session is what a login leaves behind.
type Session struct {
	BaseURL string    `toml:"base_url"`
	Email   string    `toml:"email,omitempty"`
	SavedAt time.Time `toml:"saved_at"`
	Cookies []Cookie  `toml:"cookies"`
}

const defaultSessionPath = "~/.config/compass/session.toml"

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// LoggedIn reports whether the session holds any cookie for baseURL.
func (s Session) LoggedIn(baseURL string) bool {
	return len(s.Cookies) > 0 && s.BaseURL == baseURL
}

// HTTPCookies converts the stored cookies for use in a cookie jar. Expired
// cookies are dropped.
func (s Session) HTTPCookies(now time.Time) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return out
}

// FromHTTP builds a session from the cookies a cookie jar holds.
func FromHTTP(baseURL, email string, cookies []*http.Cookie, now time.Time) Session {
	s := Session{BaseURL: baseURL, Email: email, SavedAt: now}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}
	return s
}

// Load reads the session from path. A missing file is a logged-out session.
// An unreadable or corrupt file also yields an empty session, together with
// the error so the caller can report it.
func Load(path string) (Session, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Session{}, fmt.Errorf("resolve session path: %w", err)
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session %s: %w", resolved, err)
	}

	var s Session
	if err := toml.Unmarshal(bytes, &s); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", resolved, err)
	}
	return s, nil
}

// Save writes the session to path, creating directories as needed. The file
// holds credentials and is only readable by the owner.
func Save(path string, s Session) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	bytes, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// Clear removes the session file. Clearing a missing session is not an error.
func Clear(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSessionPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
