package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jackzampolin/easel/internal/home"
	"github.com/jackzampolin/easel/internal/server/endpoints"
	"github.com/jackzampolin/easel/internal/testutil"
)

// bootTestServer starts a server on a free port and returns its base URL,
// the server, and the error channel fed by Start.
func bootTestServer(t *testing.T, ctx context.Context) (string, *Server, chan error, context.CancelFunc) {
	t.Helper()

	cfg := testutil.NewServerConfig(t)

	h, err := home.New(cfg.HomePath)
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	srv, err := New(Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		Home:   h,
		Logger: cfg.Logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	serverErr := make(chan error, 1)
	serverCtx, serverCancel := context.WithCancel(ctx)

	go func() {
		serverErr <- srv.Start(serverCtx)
	}()

	if err := testutil.WaitForServer(cfg.URL(), 30*time.Second); err != nil {
		serverCancel()
		t.Fatalf("server did not start: %v", err)
	}

	return cfg.URL(), srv, serverErr, serverCancel
}

// TestServer_ContextCancellation tests that the server properly handles context cancellation.
func TestServer_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, srv, serverErr, serverCancel := bootTestServer(t, ctx)

	// Cancel context immediately
	serverCancel()

	if err := testutil.WaitForShutdown(serverErr, 30*time.Second); err != nil {
		t.Fatalf("server did not respond to context cancellation: %v", err)
	}

	if srv.IsRunning() {
		t.Error("IsRunning() = true after cancellation, want false")
	}
	if srv.Store() != nil {
		t.Error("Store() should be nil after shutdown")
	}
}

// TestServer_DoubleStart tests that starting a running server returns an error.
func TestServer_DoubleStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, srv, serverErr, serverCancel := bootTestServer(t, ctx)
	defer func() {
		serverCancel()
		_ = testutil.WaitForShutdown(serverErr, 30*time.Second)
	}()

	if err := srv.Start(ctx); err == nil {
		t.Error("second Start() should return error")
	}
}

// TestServer_ErrorResponses exercises the API's failure paths over HTTP.
func TestServer_ErrorResponses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	baseURL, _, serverErr, serverCancel := bootTestServer(t, ctx)
	defer func() {
		serverCancel()
		_ = testutil.WaitForShutdown(serverErr, 30*time.Second)
	}()

	t.Run("missing_template_is_404", func(t *testing.T) {
		var errResp endpoints.ErrorResponse
		code := getJSON(t, baseURL+"/api/v1/templates/999999", &errResp)
		if code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", code, http.StatusNotFound)
		}
		if errResp.Error == "" {
			t.Error("error message missing")
		}
	})

	t.Run("missing_variable_is_404", func(t *testing.T) {
		code := getJSON(t, baseURL+"/api/v1/variables/nothere", &endpoints.ErrorResponse{})
		if code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", code, http.StatusNotFound)
		}
	})

	t.Run("malformed_template_is_400", func(t *testing.T) {
		code := postJSON(t, baseURL+"/api/v1/templates",
			endpoints.CreateTemplateRequest{Text: "{{broken"}, &endpoints.ErrorResponse{})
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
		}
	})

	t.Run("validate_reports_instead_of_failing", func(t *testing.T) {
		var resp endpoints.ValidateResponse
		code := postJSON(t, baseURL+"/api/v1/templates/validate",
			endpoints.ValidateRequest{Text: "{{broken"}, &resp)
		if code != http.StatusOK {
			t.Fatalf("status = %d, want %d", code, http.StatusOK)
		}
		if resp.Valid {
			t.Error("Valid = true for malformed text")
		}
		if resp.Reason == "" {
			t.Error("Reason missing for malformed text")
		}
	})

	t.Run("out_of_range_rating_is_400", func(t *testing.T) {
		code := postJSON(t, baseURL+"/api/v1/generations/1/rating",
			endpoints.RateGenerationRequest{Rating: 9}, &endpoints.ErrorResponse{})
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
		}
	})

	t.Run("generate_without_text_is_400", func(t *testing.T) {
		code := postJSON(t, baseURL+"/api/v1/generate",
			endpoints.GenerateRequest{}, &endpoints.ErrorResponse{})
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
		}
	})
}
