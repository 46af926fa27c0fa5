// Package shortcut maps keyboard chords to daemon actions. Chords arrive as
// user-spelled strings ("Ctrl+Shift+T", "cmd+shift+t") and are folded to one
// canonical form before lookup, so a binding registered once fires for every
// platform spelling.
package shortcut

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"tint/internal/logger"
)

// DefaultToggleChord flips the theme between light and dark.
const DefaultToggleChord = "mod+shift+t"

// Handler runs when a chord fires.
type Handler func() error

// Binding describes a registered chord.
type Binding struct {
	Chord       string `json:"chord"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type binding struct {
	Binding
	handler Handler
}

// modifierAliases folds platform spellings of each modifier into one
// canonical token. Every ctrl/cmd flavor becomes "mod".
var modifierAliases = map[string]string{
	"ctrl":    "mod",
	"control": "mod",
	"cmd":     "mod",
	"command": "mod",
	"meta":    "mod",
	"super":   "mod",
	"win":     "mod",
	"mod":     "mod",
	"shift":   "shift",
	"alt":     "alt",
	"opt":     "alt",
	"option":  "alt",
}

// Normalize canonicalizes a chord: tokens lowercased and trimmed, modifier
// aliases folded, modifiers sorted, key last. "Ctrl+Shift+T" and
// "shift+cmd+t" both become "mod+shift+t". A chord needs exactly one
// non-modifier token.
func Normalize(chord string) (string, error) {
	mods := make(map[string]bool)
	key := ""
	for _, tok := range strings.Split(chord, "+") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if canonical, ok := modifierAliases[tok]; ok {
			mods[canonical] = true
			continue
		}
		if key != "" {
			return "", fmt.Errorf("chord %q has more than one key", chord)
		}
		key = tok
	}
	if key == "" {
		return "", fmt.Errorf("chord %q has no key", chord)
	}

	parts := make([]string, 0, len(mods)+1)
	for m := range mods {
		parts = append(parts, m)
	}
	sort.Strings(parts)
	parts = append(parts, key)
	return strings.Join(parts, "+"), nil
}

// Registry is a thread-safe chord table. The daemon consults it for trigger
// requests arriving over the API.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]*binding
	log      *log.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]*binding),
		log:      logger.NewStyledLogger("Shortcut"),
	}
}

// Register binds a chord to a handler. The chord is normalized first, so two
// spellings of the same combination collide.
func (r *Registry) Register(chord, name, description string, fn Handler) error {
	normalized, err := Normalize(chord)
	if err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("chord %q has no handler", chord)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bindings[normalized]; exists {
		return fmt.Errorf("chord %q already registered", normalized)
	}
	r.bindings[normalized] = &binding{
		Binding: Binding{Chord: normalized, Name: name, Description: description},
		handler: fn,
	}
	r.log.Debug("chord registered", "chord", normalized, "name", name)
	return nil
}

// RegisterDefaults wires the built-in bindings. toggleTheme runs on
// DefaultToggleChord.
func (r *Registry) RegisterDefaults(toggleTheme Handler) error {
	return r.Register(DefaultToggleChord, "Toggle theme", "Switch between light and dark themes", toggleTheme)
}

// Trigger fires the handler bound to chord. The bool reports whether a
// binding matched; the error is the handler's, or a normalization failure.
// The handler runs synchronously so the caller sees its outcome.
func (r *Registry) Trigger(chord string) (bool, error) {
	normalized, err := Normalize(chord)
	if err != nil {
		return false, err
	}

	r.mu.RLock()
	b, ok := r.bindings[normalized]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := b.handler(); err != nil {
		r.log.Error("chord handler failed", "chord", normalized, "error", err)
		return true, err
	}
	r.log.Debug("chord fired", "chord", normalized, "name", b.Name)
	return true, nil
}

// Bindings lists registered bindings sorted by chord.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b.Binding)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chord < out[j].Chord })
	return out
}
