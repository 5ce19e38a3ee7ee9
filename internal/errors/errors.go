package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error messages with helpful context and suggestions

// Usage Errors
func CommandRequired() error {
	msg := `command is required

Usage: rootcmd run [options] [--] <command...>

Examples:
  • rootcmd run -- dumpsys battery
  • rootcmd run --timeout 10s -- cat /sys/class/power_supply/battery/capacity
  • rootcmd run --file setup.sh --stop-on-failure`
	return errors.New(msg)
}

func CommandAndFileConflict() error {
	msg := `cannot combine a command with --file

Usage:
  • rootcmd run -- <command...>
  • rootcmd run --file <script>`
	return errors.New(msg)
}

func InvalidClassification(value string, supported []string) error {
	msg := fmt.Sprintf("invalid classification: '%s'", value)
	msg += "\n\nSupported values:"
	for _, s := range supported {
		msg += fmt.Sprintf("\n  • %s", s)
	}
	return errors.New(msg)
}

// Execution Errors
func CommandFailed(command, kind, message string) error {
	cleanMessage := strings.TrimSpace(message)
	if cleanMessage == "" {
		cleanMessage = "no additional details available"
	}

	msg := fmt.Sprintf("privileged command failed: %s", command)

	switch kind {
	case "escalation":
		msg += `

Cause: Elevated shell could not be started
Solutions:
  • Check that the escalation binary exists ('shell.path' in the config)
  • Run 'rootcmd check' to verify root access`
	case "timeout":
		msg += `

Cause: Command did not finish before the timeout
Solution: Raise '--timeout' or 'execution.timeout' in the config`
	case "stderr":
		if strings.Contains(strings.ToLower(cleanMessage), "permission denied") {
			msg += `

Cause: Escalation was refused or the command lacks permissions
Tip: Grant root access to this shell and run 'rootcmd check'`
		} else {
			msg += `

Cause: Command wrote to its error stream
Tip: Use '--classify exit-code' if the command logs warnings on success`
		}
	}

	msg += fmt.Sprintf("\n\nDetails: %s", cleanMessage)
	return errors.New(msg)
}

func BatchFailed(failed, total int) error {
	msg := fmt.Sprintf("%d of %d privileged commands failed", failed, total)
	msg += "\n\nTip: Use '--stop-on-failure' to stop at the first failing command"
	return errors.New(msg)
}

func RootUnavailable(detail string) error {
	msg := `elevated shell is not running as root

Solutions:
  • Grant superuser access to this user
  • Point 'shell.path' at a working escalation binary
  • Run with '--verbose' to see the launch details`

	if detail = strings.TrimSpace(detail); detail != "" {
		msg += fmt.Sprintf("\n\nDetails: %s", detail)
	}
	return errors.New(msg)
}

func LockUnavailable(path string, originalError error) error {
	msg := fmt.Sprintf("failed to acquire exclusive lock: %s", path)

	errorStr := originalError.Error()
	if strings.Contains(errorStr, "deadline exceeded") {
		msg += `

Cause: Another privileged command held the lock until the timeout
Solution: Wait for it to finish or raise '--timeout'`
	} else if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied on the lock file
Solution: Point 'lock.path' at a writable location`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}

// History Errors
func HistoryUnavailable(path string, originalError error) error {
	msg := fmt.Sprintf("failed to open command history: %s", path)

	errorStr := originalError.Error()
	if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied
Solution: Point 'history.path' at a writable location`
	} else if strings.Contains(errorStr, "disabled") {
		msg += `

Cause: History is disabled
Solution: Set 'history.enabled: true' in the config`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}

// Configuration Errors
func ConfigLoadFailed(configPath string, parseError error) error {
	msg := fmt.Sprintf("failed to load configuration from '%s'", configPath)

	parseErrorStr := parseError.Error()
	if strings.Contains(parseErrorStr, "yaml") || strings.Contains(parseErrorStr, "unmarshal") {
		msg += `

Cause: YAML syntax error in configuration file
Solutions:
  • Check YAML syntax and indentation
  • Run 'rootcmd init --force' to recreate the configuration`
	} else if strings.Contains(parseErrorStr, "invalid configuration") {
		msg += `

Cause: Configuration value out of range
Tip: Run 'rootcmd init --force' to see the supported settings`
	} else if strings.Contains(parseErrorStr, "permission denied") {
		msg += `

Cause: Permission denied reading configuration file
Solution: Check file permissions on the configuration file`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", parseError)
	return errors.New(msg)
}

func ConfigAlreadyExists(configPath string) error {
	msg := fmt.Sprintf(`configuration file already exists: %s

Options:
  • Edit the existing file manually
  • Use 'rootcmd init --force' to overwrite it`, configPath)
	return errors.New(msg)
}

// File System Errors
func FileAccessFailed(operation, path string, originalError error) error {
	msg := fmt.Sprintf("failed to %s file: %s", operation, path)

	errorStr := originalError.Error()
	if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied
Solution: Check file permissions`
	} else if strings.Contains(errorStr, "no such file or directory") {
		msg += `

Cause: File does not exist
Solutions:
  • Check the path spelling
  • Use an absolute path`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}
