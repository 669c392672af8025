package keymap

// Binding maps keys to an action, with a description for help.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "list"
}

// All contains all key bindings of the viewer.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},
	{ActionToggleDND, []string{"m"}, "Toggle do not disturb", "global"},

	// List
	{ActionMoveUp, []string{"k", "up"}, "Move up", "list"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "list"},
	{ActionJumpStart, []string{"g", "home"}, "First notification", "list"},
	{ActionJumpEnd, []string{"G", "end"}, "Last notification", "list"},
	{ActionToggleDetails, []string{"enter", " "}, "Show details", "list"},
	{ActionDismiss, []string{"d", "delete"}, "Dismiss", "list"},
	{ActionDismissAll, []string{"D"}, "Dismiss all", "list"},
	{ActionFilter, []string{"/"}, "Filter", "list"},
	{ActionClearFilter, []string{"esc"}, "Clear filter", "list"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
