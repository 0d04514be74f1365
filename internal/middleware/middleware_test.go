package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

type whoami struct{}

func (whoami) Register(ctx context.Context, _ *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return connect.NewResponse(&api.RegisterResponse{User: api.User{ID: GetUserID(ctx)}}), nil
}

func (whoami) Login(ctx context.Context, _ *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return connect.NewResponse(&api.LoginResponse{}), nil
}

func (whoami) Me(ctx context.Context, _ *connect.Request[api.MeRequest]) (*connect.Response[api.MeResponse], error) {
	return connect.NewResponse(&api.MeResponse{User: api.User{ID: GetUserID(ctx), Email: GetEmail(ctx)}}), nil
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	path, handler := api.NewAuthServiceHandler(whoami{}, connect.WithInterceptors(
		LoggingInterceptor(logger),
		RequireAuth(jwtManager, api.PublicProcedures),
	))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	client := api.NewAuthServiceClient(http.DefaultClient, server.URL)
	ctx := context.Background()

	t.Run("public procedure without token", func(t *testing.T) {
		resp, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{}))
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Msg.User.ID != "" {
			t.Errorf("expected anonymous caller, got %q", resp.Msg.User.ID)
		}
	})

	t.Run("protected procedure without token", func(t *testing.T) {
		_, err := client.Me(ctx, connect.NewRequest(&api.MeRequest{}))
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected Unauthenticated, got %v", err)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := connect.NewRequest(&api.MeRequest{})
		req.Header().Set("Authorization", "Token abc")
		_, err := client.Me(ctx, req)
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected Unauthenticated, got %v", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "a@example.com"})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		req := connect.NewRequest(&api.MeRequest{})
		req.Header().Set("Authorization", "Bearer "+token)
		resp, err := client.Me(ctx, req)
		if err != nil {
			t.Fatalf("Me failed: %v", err)
		}
		if resp.Msg.User.ID != "user-1" || resp.Msg.User.Email != "a@example.com" {
			t.Errorf("unexpected identity: %+v", resp.Msg.User)
		}
	})

	if !strings.Contains(logs.String(), "RPC error") || !strings.Contains(logs.String(), "unauthenticated") {
		t.Errorf("expected failed calls to be logged, got %q", logs.String())
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
