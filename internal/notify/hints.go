package notify

import (
	"strings"

	"github.com/godbus/dbus/v5"
)

// Hints holds the notification hints the daemon understands.
type Hints struct {
	Urgency       Urgency
	HasUrgency    bool
	DesktopEntry  string
	Category      string
	SoundFile     string
	SoundName     string
	SuppressSound bool
}

// HasSoundHint reports whether the sender asked for a specific sound.
func (h Hints) HasSoundHint() bool {
	return h.SoundFile != "" || h.SoundName != ""
}

// parseHints reads known hints, ignoring unknown keys and values of the
// wrong type.
func parseHints(raw map[string]dbus.Variant) Hints {
	h := Hints{Urgency: UrgencyNormal}
	if v, ok := raw["urgency"]; ok {
		if u, ok := variantUint(v); ok {
			h.Urgency = Urgency(min(u, uint64(UrgencyCritical)))
			h.HasUrgency = true
		}
	}
	h.DesktopEntry = variantString(raw["desktop-entry"])
	h.Category = variantString(raw["category"])
	h.SoundName = variantString(raw["sound-name"])
	h.SoundFile = strings.TrimPrefix(variantString(raw["sound-file"]), "file://")
	if v, ok := raw["suppress-sound"]; ok {
		if b, ok := v.Value().(bool); ok {
			h.SuppressSound = b
		}
	}
	return h
}

func variantString(v dbus.Variant) string {
	s, _ := v.Value().(string)
	return s
}

// variantUint accepts any unsigned or non-negative integer variant;
// clients disagree on the type of "urgency".
func variantUint(v dbus.Variant) (uint64, bool) {
	switch x := v.Value().(type) {
	case byte:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case int16:
		return uint64(max(x, 0)), x >= 0
	case int32:
		return uint64(max(x, 0)), x >= 0
	case int64:
		return uint64(max(x, 0)), x >= 0
	}
	return 0, false
}
