package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satococoa/rootcmd/internal/audit"
	"github.com/satococoa/rootcmd/internal/testutil"
)

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history", cmd.Name)
	assert.NotEmpty(t, cmd.Usage)
	assert.NotNil(t, cmd.Action)
}

func TestDisplayHistory(t *testing.T) {
	started := time.Date(2026, 10, 1, 9, 30, 0, 0, time.Local)

	t.Run("should show a placeholder when empty", func(t *testing.T) {
		var buf bytes.Buffer

		err := displayHistory(&buf, nil, 80)

		require.NoError(t, err)
		assert.Equal(t, "No commands recorded\n", buf.String())
	})

	t.Run("should render one row per entry", func(t *testing.T) {
		var buf bytes.Buffer
		entries := []audit.Entry{
			{Command: "id -u", Status: "success", StartedAt: started, Duration: 42 * time.Millisecond},
			{Command: "ls /nonexistent", Status: "error", StartedAt: started.Add(-time.Minute), Duration: time.Second},
		}

		err := displayHistory(&buf, entries, 120)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "STARTED")
		assert.Contains(t, lines[0], "COMMAND")
		assert.Contains(t, lines[2], "2026-10-01 09:30:00")
		assert.Contains(t, lines[2], "success")
		assert.Contains(t, lines[2], "42ms")
		assert.Contains(t, lines[2], "id -u")
		assert.Contains(t, lines[3], "error")
		assert.Contains(t, lines[3], "ls /nonexistent")
	})

	t.Run("should truncate long commands to the terminal width", func(t *testing.T) {
		var buf bytes.Buffer
		long := strings.Repeat("x", 200)

		err := displayHistory(&buf, []audit.Entry{{Command: long, Status: "success", StartedAt: started}}, 60)

		require.NoError(t, err)
		assert.NotContains(t, buf.String(), long)
		assert.Contains(t, buf.String(), "…")
	})
}

func TestTruncateCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		width    int
		expected string
	}{
		{"short command unchanged", "id", 10, "id"},
		{"exact width unchanged", "abcde", 5, "abcde"},
		{"long command cut", "abcdefgh", 5, "abcd…"},
		{"newlines flattened", "echo a\necho b", 20, "echo a echo b"},
		{"multibyte safe", "ääääää", 4, "äää…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateCommand(tt.command, tt.width))
		})
	}
}

func TestHistoryCommand_Integration(t *testing.T) {
	t.Run("should list recorded entries newest first", func(t *testing.T) {
		env := newTestEnv(t, testutil.FakeSu(t), "")
		store, err := audit.Open(env.historyPath)
		require.NoError(t, err)
		base := time.Now().Add(-time.Hour)
		for i, cmd := range []string{"first", "second", "third"} {
			_, err := store.Record(context.Background(), audit.Entry{
				Command: cmd, Status: "success", StartedAt: base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}
		require.NoError(t, store.Close())

		stdout, _, err := runApp(t, "--config", env.configPath, "history", "--limit", "2")

		require.NoError(t, err)
		assert.Contains(t, stdout, "third")
		assert.Contains(t, stdout, "second")
		assert.NotContains(t, stdout, "first")
		assert.Less(t, strings.Index(stdout, "third"), strings.Index(stdout, "second"))
	})

	t.Run("should fail when history is disabled", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("version: \"1.0\"\nhistory:\n  enabled: false\n"), 0o600))

		_, _, err := runApp(t, "--config", configPath, "history")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "History is disabled")
	})
}
