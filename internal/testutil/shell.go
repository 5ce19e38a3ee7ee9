// Package testutil provides helpers shared across tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const scriptPerm = 0o755

// passthroughSu stands in for su: it runs the script it reads on stdin with
// the invoking user's privileges.
const passthroughSu = `#!/bin/sh
exec /bin/sh "$@"
`

// deniedSu mimics an escalation refused by policy
const deniedSu = `#!/bin/sh
echo "Permission denied" >&2
exit 1
`

// SkipIfNoPOSIXShell skips tests that need /bin/sh
func SkipIfNoPOSIXShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("Skipping test: /bin/sh not available")
	}
}

// FakeSu writes an executable su replacement into a temp dir and returns its path.
// The fake runs commands unprivileged, which is enough to exercise the pipes.
func FakeSu(t *testing.T) string {
	t.Helper()
	return writeScript(t, "su", passthroughSu)
}

// DeniedSu writes an su replacement that always refuses escalation
func DeniedSu(t *testing.T) string {
	t.Helper()
	return writeScript(t, "su-denied", deniedSu)
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	SkipIfNoPOSIXShell(t)

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), scriptPerm); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}
