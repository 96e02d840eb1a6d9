// Package testutil builds throwaway server environments for tests
// without importing the server package.
package testutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"
)

// ServerConfig carries the values a test needs to construct a server:
// a free port, a temp home directory, and a quiet logger.
type ServerConfig struct {
	Host       string
	Port       string
	HomePath   string
	ConfigFile string
	Logger     *slog.Logger
}

// NewServerConfig allocates a unique port and a throwaway home
// directory for one test's server.
func NewServerConfig(t *testing.T) ServerConfig {
	t.Helper()

	port, err := freePort()
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}

	home := t.TempDir()
	return ServerConfig{
		Host:       "127.0.0.1",
		Port:       port,
		HomePath:   home,
		ConfigFile: home + "/config.yaml",
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// URL returns the base URL of the configured server.
func (c ServerConfig) URL() string {
	return "http://" + net.JoinHostPort(c.Host, c.Port)
}

// freePort grabs an ephemeral TCP port and releases it for the server
// to bind.
func freePort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}

// WaitForServer polls /health until the server answers 200 or the
// timeout passes.
func WaitForServer(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}

// WaitForShutdown receives the server's exit error, failing after
// timeout.
func WaitForShutdown(done <-chan error, timeout time.Duration) error {
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for shutdown")
	}
}

// HTTPClient returns a client with a sane test timeout.
func HTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// StatusResponse mirrors the server's /status payload.
type StatusResponse struct {
	Server        string `json:"server"`
	Provider      string `json:"provider"`
	SchemaVersion int    `json:"schema_version"`
	Prompts       int64  `json:"prompts"`
	Templates     int64  `json:"templates"`
	Variables     int64  `json:"variables"`
	Generations   int64  `json:"generations"`
}

// GetStatus fetches and parses /status.
func GetStatus(url string) (*StatusResponse, error) {
	resp, err := (&http.Client{Timeout: 5 * time.Second}).Get(url + "/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
