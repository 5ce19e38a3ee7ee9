package framework

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const (
	dirPerm    = 0755
	filePerm   = 0600
	scriptPerm = 0755
)

// passthroughSu stands in for su and runs the script from stdin unprivileged
const passthroughSu = `#!/bin/sh
exec /bin/sh "$@"
`

// deniedSu refuses every escalation
const deniedSu = `#!/bin/sh
echo "su: Permission denied" >&2
exit 1
`

type TestEnvironment struct {
	t             *testing.T
	tmpDir        string
	rootcmdBinary string
	configPath    string
	cleanup       []func()
}

func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Skipping e2e test on Windows")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("Skipping e2e test: /bin/sh not available")
	}

	tmpDir := t.TempDir()
	env := &TestEnvironment{
		t:          t,
		tmpDir:     tmpDir,
		configPath: filepath.Join(tmpDir, "config", "config.yml"),
		cleanup:    []func(){},
	}

	env.buildRootcmd()
	env.WriteConfig(env.ShellScript("su", passthroughSu), "")

	return env
}

func (e *TestEnvironment) buildRootcmd() {
	e.t.Helper()

	binary := filepath.Join(e.tmpDir, "rootcmd")
	if prebuilt := os.Getenv("ROOTCMD_E2E_BINARY"); prebuilt != "" {
		binary = prebuilt
		if _, err := os.Stat(binary); err != nil {
			e.t.Fatalf("Specified rootcmd binary not found: %s", binary)
		}
	} else {
		projectRoot := e.findProjectRoot()
		cmd := exec.Command("go", "build", "-o", binary, "./cmd/rootcmd")
		cmd.Dir = projectRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			e.t.Fatalf("Failed to build rootcmd binary: %v\nOutput: %s", err, output)
		}
	}

	binary = filepath.Clean(binary)
	if !filepath.IsAbs(binary) {
		absPath, err := filepath.Abs(binary)
		if err != nil {
			e.t.Fatalf("Failed to get absolute path for binary: %v", err)
		}
		binary = absPath
	}

	e.rootcmdBinary = binary
}

func (e *TestEnvironment) findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			e.t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}

func (e *TestEnvironment) writeFile(path, content string, perm os.FileMode) {
	e.t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		e.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// ShellScript writes an executable escalation stand-in and returns its path
func (e *TestEnvironment) ShellScript(name, content string) string {
	e.t.Helper()

	path := filepath.Join(e.tmpDir, "bin", name)
	e.writeFile(path, content, scriptPerm)
	return path
}

// UseDeniedShell points the configuration at an su that refuses escalation
func (e *TestEnvironment) UseDeniedShell() {
	e.WriteConfig(e.ShellScript("su-denied", deniedSu), "")
}

// WriteConfig rewrites the environment's configuration. execution is
// inserted verbatim under the execution section.
func (e *TestEnvironment) WriteConfig(shellPath, execution string) {
	e.t.Helper()

	content := fmt.Sprintf(`version: "1.0"
shell:
  path: %q
execution:
  classify: stderr
%s
history:
  path: %q
lock:
  path: %q
`, shellPath, execution, e.HistoryPath(), filepath.Join(e.tmpDir, "rootcmd.lock"))

	e.writeFile(e.configPath, content, filePerm)
}

// RunRootcmd runs the binary with the environment's config and returns the
// combined output.
func (e *TestEnvironment) RunRootcmd(args ...string) (string, error) {
	stdout, stderr, err := e.RunRootcmdSplit(args...)
	return stdout + stderr, err
}

// RunRootcmdWithConfig runs the binary against another configuration file
func (e *TestEnvironment) RunRootcmdWithConfig(configPath string, args ...string) (string, error) {
	stdout, stderr, err := e.runWithConfig(configPath, args)
	return stdout + stderr, err
}

// RunRootcmdSplit runs the binary and returns stdout and stderr separately
func (e *TestEnvironment) RunRootcmdSplit(args ...string) (string, string, error) {
	return e.runWithConfig(e.configPath, args)
}

func (e *TestEnvironment) runWithConfig(configPath string, args []string) (string, string, error) {
	if err := validateArgs(args); err != nil {
		return "", "", fmt.Errorf("invalid argument: %w", err)
	}

	fullArgs := append([]string{"--config", configPath}, args...)
	cmd := createSafeCommand(e.rootcmdBinary, fullArgs...)
	cmd.Dir = e.tmpDir
	cmd.Env = append(os.Environ(), "HOME="+e.tmpDir, "XDG_CONFIG_HOME="+filepath.Join(e.tmpDir, "xdg"))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (e *TestEnvironment) TmpDir() string {
	return e.tmpDir
}

func (e *TestEnvironment) ConfigPath() string {
	return e.configPath
}

func (e *TestEnvironment) HistoryPath() string {
	return filepath.Join(e.tmpDir, "history.db")
}

func (e *TestEnvironment) WriteFile(path, content string) {
	e.writeFile(path, content, filePerm)
}

func (e *TestEnvironment) ReadFile(path string) string {
	e.t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func (e *TestEnvironment) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (e *TestEnvironment) Cleanup() {
	for _, fn := range e.cleanup {
		fn()
	}
}

// StartRootcmd starts the binary without waiting for it. The process is
// killed at cleanup if still running.
func (e *TestEnvironment) StartRootcmd(args ...string) *exec.Cmd {
	e.t.Helper()

	if err := validateArgs(args); err != nil {
		e.t.Fatalf("invalid argument: %v", err)
	}

	fullArgs := append([]string{"--config", e.configPath}, args...)
	cmd := createSafeCommand(e.rootcmdBinary, fullArgs...)
	cmd.Dir = e.tmpDir
	if err := cmd.Start(); err != nil {
		e.t.Fatalf("Failed to start rootcmd: %v", err)
	}

	e.cleanup = append(e.cleanup, func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})
	return cmd
}

// WaitFor polls cond until it holds or timeout passes
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

// validateArgs checks the rootcmd options for shell metacharacters. Everything
// after "--" is the privileged command itself and is handed to the elevated
// shell on purpose, so it is not checked.
func validateArgs(args []string) error {
	for _, arg := range args {
		if arg == "--" {
			return nil
		}
		if err := validateArg(arg); err != nil {
			return err
		}
	}
	return nil
}

// validateArg checks if an argument is safe to pass to exec.Command
func validateArg(arg string) error {
	if arg == "" {
		return nil
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\n", "\r"}
	for _, char := range dangerousChars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("argument contains potentially dangerous character: %s", char)
		}
	}

	return nil
}

// createSafeCommand creates an exec.Cmd with a validated binary path
func createSafeCommand(binary string, args ...string) *exec.Cmd {
	return exec.Command(binary, args...)
}
