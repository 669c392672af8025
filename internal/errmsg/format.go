// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Configuration
	OpConfigLoad  Op = "load configuration"
	OpConfigWatch Op = "watch configuration"

	// Notification service
	OpBusConnect Op = "connect to session bus"
	OpServe      Op = "start notification service"
	OpNotify     Op = "send notification"

	// History
	OpHistoryOpen  Op = "open notification history"
	OpHistoryQuery Op = "read notification history"
	OpHistoryClear Op = "clear notification history"

	// Sounds
	OpSoundPlay Op = "play sound"

	// Input
	OpInputRead Op = "read input"

	// Initialization
	OpInitialize Op = "initialize daemon"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
