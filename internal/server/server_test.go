package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackzampolin/easel/internal/config"
	"github.com/jackzampolin/easel/internal/home"
	"github.com/jackzampolin/easel/internal/provider"
)

func testHome(t *testing.T) *home.Dir {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	return h
}

func TestNew_RequiresHome(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() without home should return error")
	}
}

func TestNew_Defaults(t *testing.T) {
	srv, err := New(Config{Home: testHome(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := srv.Addr(); got != "127.0.0.1:8750" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8750")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true before Start")
	}
	if srv.Store() != nil {
		t.Error("Store() should be nil before Start")
	}
}

func TestBuildProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{
			name: "nil config uses mock",
			cfg:  nil,
			want: provider.MockImageName,
		},
		{
			name: "explicit mock",
			cfg:  &config.Config{Provider: config.ProviderCfg{Name: "mock"}},
			want: provider.MockImageName,
		},
		{
			name: "openai with key",
			cfg: &config.Config{Provider: config.ProviderCfg{
				Name:   "openai",
				APIKey: "sk-test-123",
			}},
			want: provider.OpenAIImageName,
		},
		{
			name: "openai without key degrades to mock",
			cfg:  &config.Config{Provider: config.ProviderCfg{Name: "openai"}},
			want: provider.MockImageName,
		},
		{
			name: "openai with unresolvable env key degrades to mock",
			cfg: &config.Config{Provider: config.ProviderCfg{
				Name:   "openai",
				APIKey: "${EASEL_TEST_UNSET_KEY}",
			}},
			want: provider.MockImageName,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildProvider(tt.cfg, logger).Name(); got != tt.want {
				t.Errorf("buildProvider().Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireInit_BeforeStart(t *testing.T) {
	srv, err := New(Config{Home: testHome(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	called := false
	h := srv.requireInit(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/v1/templates", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if called {
		t.Error("wrapped handler ran before initialization")
	}
}
