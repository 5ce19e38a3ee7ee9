package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is an isolated config, history and lock location for CLI tests
type testEnv struct {
	dir         string
	configPath  string
	historyPath string
	lockPath    string
}

// newTestEnv writes a config using shellPath as the escalation binary.
// extra is appended verbatim under the execution section.
func newTestEnv(t *testing.T, shellPath, extra string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:         dir,
		configPath:  filepath.Join(dir, "config.yml"),
		historyPath: filepath.Join(dir, "history.db"),
		lockPath:    filepath.Join(dir, "rootcmd.lock"),
	}

	content := fmt.Sprintf(`version: "1.0"
shell:
  path: %q
execution:
  classify: stderr
%s
history:
  enabled: true
  path: %q
lock:
  path: %q
`, shellPath, extra, env.historyPath, env.lockPath)

	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o600))
	return env
}

// runApp runs the CLI with the given arguments, returning stdout, stderr and the error
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(context.Background(), append([]string{"rootcmd"}, args...))
	return stdout.String(), stderr.String(), err
}
