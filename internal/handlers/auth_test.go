package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cyberquest/apiserver/config"
	"github.com/cyberquest/apiserver/internal/services"
	"github.com/cyberquest/apiserver/internal/store"
	"github.com/cyberquest/apiserver/types"
)

// stubUserRepo serves a fixed set of users by id. The mutation methods
// exist only to satisfy the repository interface.
type stubUserRepo struct {
	users map[int]types.User
}

func (s *stubUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *stubUserRepo) GetByEmail(context.Context, string) (types.User, error) {
	return types.User{}, store.ErrNotFound
}

func (s *stubUserRepo) GetByUsername(context.Context, string) (types.User, error) {
	return types.User{}, store.ErrNotFound
}

func (s *stubUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	return user, nil
}

func (s *stubUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	return user, nil
}

func (s *stubUserRepo) List(context.Context) ([]types.User, error) { return nil, nil }

func (s *stubUserRepo) TopByHighScore(context.Context, int) ([]types.LeaderboardEntry, error) {
	return nil, nil
}

func (s *stubUserRepo) RecordLoginFailure(context.Context, int) error { return nil }

func (s *stubUserRepo) RecordLoginSuccess(context.Context, int, time.Time, string) error {
	return nil
}

func (s *stubUserRepo) SetBlocked(context.Context, int, string, time.Time) error { return nil }
func (s *stubUserRepo) ClearBlocked(context.Context, int) error                  { return nil }
func (s *stubUserRepo) SetAdmin(context.Context, int) error                      { return nil }
func (s *stubUserRepo) SetHighScore(context.Context, int, int) error             { return nil }

func (s *stubUserRepo) Counts(context.Context) (int, int, error) { return len(s.users), 0, nil }

func newTestAuthHandler(users ...types.User) *AuthHandler {
	repo := &stubUserRepo{users: make(map[int]types.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	userService := services.NewUserService(repo, config.RegistrationConfig{MinAge: 13, MaxAge: 17})
	return NewAuthHandler(userService, "test-secret", time.Hour)
}

func TestIssueAndParseTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := issueToken(42, secret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := parseTokenSubject(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if subject != "42" {
		t.Fatalf("expected subject 42, got %q", subject)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := issueToken(1, []byte("right"), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := parseTokenSubject(token, []byte("wrong")); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := issueToken(1, secret, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := parseTokenSubject(token, secret); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"case insensitive scheme", "bearer abc", "abc", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc", "", false},
		{"no token", "Bearer ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			token, err := bearerToken(r)
			if tc.ok != (err == nil) {
				t.Fatalf("header %q: unexpected error state %v", tc.header, err)
			}
			if tc.ok && token != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, token)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"ipv4 with port", "192.0.2.10:54321", "192.0.2.10"},
		{"bare ipv4", "192.0.2.10", "192.0.2.10"},
		{"ipv6 with port", "[2001:db8::1]:54321", "2001:db8::1"},
		{"bare ipv6", "2001:db8::1", "2001:db8::1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if got := clientIP(r); got != tc.want {
				t.Fatalf("remote addr %q: expected %q, got %q", tc.remoteAddr, tc.want, got)
			}
		})
	}
}

func TestRequireAuthInjectsUser(t *testing.T) {
	handler := newTestAuthHandler(types.User{ID: 7, Username: "alice"})
	token, err := issueToken(7, []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen types.User
	protected := handler.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = userFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if seen.ID != 7 || seen.Username != "alice" {
		t.Fatalf("user not injected into context: %+v", seen)
	}
}

func TestRequireAuthRejections(t *testing.T) {
	handler := newTestAuthHandler(types.User{ID: 7, Username: "alice"})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	})

	goodSecret := []byte("test-secret")
	unknownUser, _ := issueToken(99, goodSecret, time.Hour)
	badSignature, _ := issueToken(7, []byte("other"), time.Hour)
	expired, _ := issueToken(7, goodSecret, -time.Minute)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong signature", "Bearer " + badSignature},
		{"expired", "Bearer " + expired},
		{"unknown subject", "Bearer " + unknownUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.RequireAuth(next).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if w.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("401 must carry a WWW-Authenticate challenge")
			}
		})
	}
}

func TestRequireAuthRejectsBlockedUser(t *testing.T) {
	handler := newTestAuthHandler(types.User{
		ID:            7,
		Username:      "alice",
		IsBlocked:     true,
		BlockedReason: "abusive language",
	})
	token, _ := issueToken(7, []byte("test-secret"), time.Hour)

	protected := handler.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("blocked user must not reach the handler")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == "" {
		t.Error("blocked response must carry the reason")
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := newTestAuthHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(user *types.User) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), contextUserKey, *user))
		}
		w := httptest.NewRecorder()
		handler.RequireAdmin(next).ServeHTTP(w, r)
		return w
	}

	if w := serve(nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no user in context: expected 401, got %d", w.Code)
	}
	if w := serve(&types.User{ID: 2, Username: "kid"}); w.Code != http.StatusForbidden {
		t.Errorf("non-admin: expected 403, got %d", w.Code)
	}
	if w := serve(&types.User{ID: 1, Username: "root", IsAdmin: true}); w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}
}
