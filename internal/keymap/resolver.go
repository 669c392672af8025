package keymap

import "strings"

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys (for help)
	ordered  []Binding
}

// NewResolver creates a resolver from bindings. A key bound twice
// resolves to the later binding.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
		ordered:  bindings,
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.bindings[key] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Help returns one "keys description" entry per binding of context, in
// declaration order. The space key is shown as "space".
func (r *Resolver) Help(context string) []string {
	var out []string
	for _, b := range r.ordered {
		if b.Context != context {
			continue
		}
		keys := make([]string, len(b.Keys))
		for i, k := range b.Keys {
			if k == " " {
				k = "space"
			}
			keys[i] = k
		}
		out = append(out, strings.Join(keys, "/")+" "+strings.ToLower(b.Description))
	}
	return out
}

// dedupe removes duplicate strings from a slice.
func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
