// Package testutil provides shared helpers for integration-style tests:
// a thread-safe log buffer and a harness that spins up a full application
// from in-memory HCL declarations.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/dashwire/internal/app"
	"github.com/vk/dashwire/internal/hcl_adapter"
	"github.com/vk/dashwire/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a dashboard test run.
type HarnessResult struct {
	Logs *SafeBuffer
	Err  error
	App  *app.App
}

// RunDashboardTest writes the given declaration files into a temporary
// directory, builds a full application over them and runs binding
// compilation. Startup panics are converted into Err so tests can assert on
// bad declarations without crashing.
func RunDashboardTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunDashboardTestWithContext(context.Background(), t, files, modules...)
}

// RunDashboardTestWithContext is RunDashboardTest with a caller-provided
// context.
func RunDashboardTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	result := &HarnessResult{Logs: &SafeBuffer{}}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("startup failed: %v", r)
			}
		}()

		appConfig := &app.AppConfig{DashboardPath: tmpDir, LogLevel: "debug"}
		result.App = app.NewApp(result.Logs, appConfig, hcl_adapter.NewLoader(), modules...)
		result.Err = result.App.Compile(ctx)
	}()

	return result
}
