package shortcuts

import (
	"errors"
	"fmt"
	"strings"
)

// Action is what a shortcut triggers.
type Action string

const (
	ActionPrintInvoice  Action = "print_invoice"
	ActionNewInvoice    Action = "new_invoice"
	ActionShowInventory Action = "show_inventory"
	ActionShowInvoice   Action = "show_invoice"
)

// Section names returned by navigation shortcuts.
const (
	SectionInventory = "inventory"
	SectionInvoice   = "invoice"
)

var ErrUnboundShortcut = errors.New("no action bound to shortcut")

// KeyEvent is a key press with its modifiers.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// bindings are fixed; Ctrl and Cmd (Meta) are interchangeable.
var bindings = map[string]Action{
	"p": ActionPrintInvoice,
	"n": ActionNewInvoice,
	"i": ActionShowInventory,
	"b": ActionShowInvoice,
}

// Resolve maps a key event to its action.
func Resolve(ev KeyEvent) (Action, error) {
	if !ev.Ctrl && !ev.Meta || ev.Shift || ev.Alt {
		return "", fmt.Errorf("%w: %s", ErrUnboundShortcut, ev)
	}
	a, ok := bindings[strings.ToLower(ev.Key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnboundShortcut, ev)
	}
	return a, nil
}

// Parse reads a combo such as "Ctrl+P" or "Cmd+Shift+I".
func Parse(combo string) (KeyEvent, error) {
	var ev KeyEvent
	parts := strings.Split(combo, "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			if p == "" {
				return ev, fmt.Errorf("%w: %q", ErrUnboundShortcut, combo)
			}
			ev.Key = p
			break
		}
		switch strings.ToLower(p) {
		case "ctrl", "control":
			ev.Ctrl = true
		case "cmd", "meta", "command":
			ev.Meta = true
		case "shift":
			ev.Shift = true
		case "alt", "option":
			ev.Alt = true
		default:
			return ev, fmt.Errorf("unknown modifier %q in %q", p, combo)
		}
	}
	return ev, nil
}

// Section returns the section a navigation action shows, if any.
func (a Action) Section() (string, bool) {
	switch a {
	case ActionShowInventory:
		return SectionInventory, true
	case ActionShowInvoice:
		return SectionInvoice, true
	}
	return "", false
}

func (ev KeyEvent) String() string {
	var mods []string
	if ev.Ctrl {
		mods = append(mods, "Ctrl")
	}
	if ev.Meta {
		mods = append(mods, "Cmd")
	}
	if ev.Shift {
		mods = append(mods, "Shift")
	}
	if ev.Alt {
		mods = append(mods, "Alt")
	}
	return strings.Join(append(mods, strings.ToUpper(ev.Key)), "+")
}
