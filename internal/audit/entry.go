package audit

import (
	"time"

	"github.com/satococoa/rootcmd/internal/command"
)

// FromResult builds the history entry for one finished execution
func FromResult(cmd string, result command.Result, started time.Time, elapsed time.Duration) Entry {
	return Entry{
		Command:   cmd,
		Status:    string(result.Status),
		Kind:      string(result.Kind),
		ExitCode:  result.ExitCode,
		Output:    result.Text(),
		StartedAt: started,
		Duration:  elapsed,
	}
}
