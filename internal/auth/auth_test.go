package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/splitledger/internal/models"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email], nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemUsers())

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "weak password", email: "a@example.com", password: "short", wantErr: ErrWeakPassword},
		{name: "blank email", email: "  ", password: "longenough", wantErr: ErrInvalidEmail},
		{name: "ok", email: " Alice@Example.com ", password: "longenough"},
		{name: "duplicate after normalization", email: "alice@example.com", password: "longenough", wantErr: ErrEmailExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := a.Register(ctx, tt.email, "Alice", tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() unexpected error: %v", err)
			}
			if user.Email != "alice@example.com" {
				t.Errorf("email not normalized: %q", user.Email)
			}
			if user.PasswordHash == tt.password {
				t.Error("password stored in plain text")
			}
		})
	}

	if _, err := a.Authenticate(ctx, "ALICE@example.com", "longenough"); err != nil {
		t.Errorf("Authenticate() with right password failed: %v", err)
	}
	if _, err := a.Authenticate(ctx, "alice@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() wrong password error = %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "longenough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() unknown user error = %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "a@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" {
		t.Errorf("claims mismatch: %+v", claims)
	}

	other := NewJWTManager("other-secret", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() with wrong key error = %v", err)
	}

	expired := NewJWTManager("test-secret", -time.Minute)
	old, err := expired.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := m.Validate(old); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() expired token error = %v", err)
	}
}

func TestJWTManagerRejectsForeignTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	start := time.Unix(1700000000, 0)
	m.now = func() time.Time { return start }

	token, err := m.Generate(&models.User{ID: "user-1", Email: "a@example.com", DisplayName: "Ann"})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.Subject != "user-1" || claims.DisplayName != "Ann" || claims.Issuer != tokenIssuer {
		t.Errorf("claims mismatch: %+v", claims)
	}

	m.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() after expiry error = %v", err)
	}
	m.now = func() time.Time { return start }

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(start.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	if _, err := m.Validate(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() foreign issuer error = %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  tokenIssuer,
			Subject: "user-1",
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	if _, err := m.Validate(noExpiry); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() token without expiry error = %v", err)
	}
}
