package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/rplkit/internal/app"
	"github.com/specialistvlad/rplkit/internal/hclconfig"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/stretchr/testify/require"
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

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Dir       string
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Path returns name inside the test directory.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string][]byte, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, cfg, modules...)
}

// RunIntegrationTestWithContext writes files into a temporary directory,
// makes the paths in cfg relative to it and runs the app. A startup error
// is reported in the result like a run error.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string][]byte, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}

	inDir := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	paths := make([]string, len(cfg.Paths))
	for i, p := range cfg.Paths {
		paths[i] = inDir(p)
	}
	cfg.Paths = paths
	cfg.Project = inDir(cfg.Project)
	cfg.ROM = inDir(cfg.ROM)
	cfg.Folder = inDir(cfg.Folder)
	cfg.Output = inDir(cfg.Output)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	result := &HarnessResult{Dir: dir}

	config, err := app.NewConfig(cfg)
	if err == nil {
		result.App, err = app.NewApp(out, logs, config, hclconfig.NewLoader(), modules...)
	}
	if err == nil {
		err = result.App.Run(ctx)
	}
	result.Err = err
	result.Output = out.String()
	result.LogOutput = logs.String()

	if os.Getenv("RPLKIT_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}
