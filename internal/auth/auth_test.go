package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moneytracker/internal/core"
)

type memoryUsers struct {
	byName map[string]core.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byName: map[string]core.User{}}
}

func (m *memoryUsers) CreateUser(_ context.Context, u core.User) (core.User, error) {
	key := strings.ToLower(u.Username)
	if _, ok := m.byName[key]; ok {
		return core.User{}, core.ErrUsernameTaken
	}
	m.byName[key] = u
	return u, nil
}

func (m *memoryUsers) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	if u, ok := m.byName[strings.ToLower(username)]; ok {
		return u, nil
	}
	return core.User{}, core.ErrNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (core.User, error) {
	for _, u := range m.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func newAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(newMemoryUsers())
	a.cost = bcrypt.MinCost
	return a
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"alice", false},
		{"a.b+c_d-e@f", false},
		{"ab", true},
		{strings.Repeat("a", 151), true},
		{"has space", true},
		{"semi;colon", true},
	}
	for _, tt := range tests {
		if err := ValidateUsername(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("ValidateUsername(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator()

	u, err := a.Register(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if len(u.ID) != 36 {
		t.Errorf("expected uuid id, got %q", u.ID)
	}
	if u.PasswordHash == "correct horse" {
		t.Fatal("password stored in clear")
	}

	got, err := a.Authenticate(ctx, "alice", "correct horse")
	if err != nil || got.ID != u.ID {
		t.Fatalf("Authenticate() = %+v, %v", got, err)
	}

	if _, err := a.Authenticate(ctx, "alice", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator()
	if _, err := a.Register(ctx, "alice", "password1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"short password", "bob", "short", "password"},
		{"bad username", "b b", "password1", "username"},
		{"taken case-insensitively", "ALICE", "password1", "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.username, tt.password)
			v, ok := core.AsValidation(err)
			if !ok || !v.Has(tt.field) {
				t.Errorf("Register() error = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewSessionManager("0123456789abcdef0123456789abcdef", time.Hour, false)
	token, err := m.Generate(core.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}

	other := NewSessionManager("another-secret-another-secret-xx", time.Hour, false)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret error = %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v", err)
	}
}

func TestMiddlewareAndRequireUser(t *testing.T) {
	m := NewSessionManager("0123456789abcdef0123456789abcdef", time.Hour, true)
	protected := m.Middleware(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		_, _ = w.Write([]byte(u.Username))
	})))

	t.Run("anonymous redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest("GET", "/reports?preset=today", nil))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login?next=%2Freports%3Fpreset%3Dtoday" {
			t.Errorf("Location = %q", loc)
		}
	})

	t.Run("logged in", func(t *testing.T) {
		login := httptest.NewRecorder()
		if err := m.Login(login, core.User{ID: "u1", Username: "alice"}); err != nil {
			t.Fatal(err)
		}
		cookie := login.Result().Cookies()[0]
		if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie flags = %+v", cookie)
		}

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != "alice" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("tampered cookie cleared", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d", rec.Code)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
			t.Errorf("expected cleared cookie, got %+v", cookies)
		}
	})
}
