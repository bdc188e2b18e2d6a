// Package helpers provides fixtures for the sync service integration tests.
package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/onsi/gomega"

	"github.com/stacklok/toolhive-sync/internal/app"
	"github.com/stacklok/toolhive-sync/internal/config"
)

// ServerTestHelper manages the sync service lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	address    string
	httpClient *http.Client
	app        *app.SyncApp
}

// NewServerTestHelper creates a helper for the config at configPath listening on a free local port
func NewServerTestHelper(ctx context.Context, configPath string) *ServerTestHelper {
	port := FreePort()
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		address:    fmt.Sprintf("127.0.0.1:%d", port),
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", port),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FreePort asks the kernel for a free local port
func FreePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = l.Close()
	}()
	return l.Addr().(*net.TCPAddr).Port
}

// StartServer builds the application from the config file and runs it in the background
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	syncApp, err := app.NewSyncApp(s.ctx, app.WithConfig(cfg), app.WithAddress(s.address))
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = syncApp

	go func() {
		if err := syncApp.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()
	return nil
}

// StopServer gracefully stops the sync service
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// App returns the running application
func (s *ServerTestHelper) App() *app.SyncApp {
	return s.app
}

// WaitForServerReady waits for the readiness endpoint to report success
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// Do sends a request to the control API and returns the status code and body
func (s *ServerTestHelper) Do(method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(s.ctx, method, s.baseURL+path, reader)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	resp, err := s.httpClient.Do(req)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return resp.StatusCode, data
}

// Status fetches and decodes GET /v1/sync/status
func (s *ServerTestHelper) Status() map[string]any {
	code, data := s.Do(http.MethodGet, "/v1/sync/status", nil)
	gomega.Expect(code).To(gomega.Equal(http.StatusOK))

	var status map[string]any
	gomega.Expect(json.Unmarshal(data, &status)).To(gomega.Succeed())
	return status
}

// ConfigOptions holds the variable parts of a test configuration
type ConfigOptions struct {
	EngineURL      string
	StorageType    string
	PeriodInterval string
}

// WriteConfigYAML writes a configuration and a seed file into dir and returns the config path
func WriteConfigYAML(dir string, opts ConfigOptions) string {
	seedPath := filepath.Join(dir, "seed.json")
	seed := `{
  "authInfo": {"kid": "integration", "fxaAccessToken": "token", "syncKey": "key", "tokenServerUrl": "https://token.example.com"},
  "deviceSettings": {"fxaDeviceId": "device", "name": "integration", "type": "desktop"}
}`
	gomega.Expect(os.WriteFile(seedPath, []byte(seed), 0600)).To(gomega.Succeed())

	storageType := opts.StorageType
	if storageType == "" {
		storageType = config.StorageTypeFile
	}

	content := `sync:
  startupDelay: 10ms
  backoffDelay: 50ms
  staggerBuffer: 1ms
`
	if opts.PeriodInterval != "" {
		content += fmt.Sprintf("  periodInterval: %s\n  minPeriodicInterval: 10ms\n", opts.PeriodInterval)
	}
	content += fmt.Sprintf(`
engine:
  endpoint: %s
  timeout: 5s

storage:
  type: %s
  path: %s

stores:
  history: places-handle
  tabs: tabs-handle

auth:
  seedFile: %s
`, opts.EngineURL, storageType, filepath.Join(dir, "state"), seedPath)

	configPath := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(configPath, []byte(content), 0600)).To(gomega.Succeed())
	return configPath
}
