// Package keymap defines key bindings and action dispatch for the
// notification viewer.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Navigation actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"

	// Notification actions
	ActionToggleDetails Action = "toggle_details" // enter - show body and links
	ActionDismiss       Action = "dismiss"        // d/delete
	ActionDismissAll    Action = "dismiss_all"    // D
	ActionFilter        Action = "filter"         // / - filter by app or text
	ActionClearFilter   Action = "clear_filter"   // esc
	ActionToggleDND     Action = "toggle_dnd"     // m - mute sounds
)
