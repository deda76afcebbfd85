package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	defaultPrimaryModifier   = "alt"
	defaultSecondaryModifier = "alt+shift"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"`
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "alt", "ctrl", "meta", "super"
	Secondary string `toml:"secondary"` // e.g., "alt+shift", "ctrl+shift"
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string
}

// actionRegistry maps action names to their default keybindings.
// Users can override any of these in the [actions] section of keybindings.toml.
var actionRegistry = map[string]actionDef{
	// Conversation
	"send":             {"none", "enter"},
	"new_conversation": {"primary", "n"},
	"export":           {"primary", "e"},
	"quit":             {"primary", "q"},

	// Transcript
	"save_last_response": {"primary", "s"},
	"yank_last_response": {"primary", "y"},
	"scroll_down":        {"primary", "j"},
	"scroll_up":          {"primary", "k"},
	"page_down":          {"none", "pgdown"},
	"page_up":            {"none", "pgup"},

	// Saved messages panel
	"saved_panel":       {"primary", "b"},
	"saved_down":        {"none", "down"},
	"saved_up":          {"none", "up"},
	"saved_remove":      {"primary", "d"},
	"saved_yank":        {"primary", "y"},
	"close_saved_panel": {"none", "esc"},

	// Usage
	"rate_limit": {"secondary", "l"},

	"clear_input": {"primary", "u"},
	"help":        {"primary", "h"},
}

// ActionNames returns every bindable action name
func ActionNames() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	return names
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   defaultPrimaryModifier,
			Secondary: defaultSecondaryModifier,
		},
	}
}

// LoadKeybindings loads keybindings.toml from the data directory, writing the
// commented default template on first run.
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	cfg := DefaultKeybindings()
	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")

	if !FileExists(keybindingsPath) {
		if err := CreateDefaultKeybindings(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(keybindingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	if cfg.Modifiers.Primary == "" {
		cfg.Modifiers.Primary = defaultPrimaryModifier
	}
	if cfg.Modifiers.Secondary == "" {
		cfg.Modifiers.Secondary = defaultSecondaryModifier
	}

	return cfg, nil
}

// CreateDefaultKeybindings creates default keybindings.toml
func CreateDefaultKeybindings(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")
	if FileExists(keybindingsPath) {
		return nil
	}

	if err := os.WriteFile(keybindingsPath, []byte(GenerateKeybindingsTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write keybindings: %w", err)
	}
	return nil
}

// GenerateKeybindingsTemplate returns the default TOML template
func GenerateKeybindingsTemplate() string {
	return `# TreeChat Keybindings Configuration
# Location: <data_directory>/keybindings.toml
# This file uses TOML format: https://toml.io

[modifiers]
primary = "alt"          # Default: alt (Options: alt, ctrl, meta, super)
secondary = "alt+shift"  # Default: alt+shift

# For tmux users (Alt may conflict):
#   primary = "ctrl"
#   secondary = "ctrl+shift"

[actions]
# Override individual actions (uncomment to use):
#
#   save_last_response = "ctrl+s"
#   saved_panel = "ctrl+b"
#   new_conversation = "ctrl+t"
#   rate_limit = "ctrl+shift+l"
#
# Actions: send, new_conversation, export, quit, save_last_response,
# yank_last_response, scroll_down, scroll_up, page_down, page_up,
# saved_panel, saved_down, saved_up, saved_remove, saved_yank,
# close_saved_panel, rate_limit, clear_input, help
`
}

// Primary returns the primary modifier
func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return defaultPrimaryModifier
	}
	return kb.Modifiers.Primary
}

// Secondary returns the secondary modifier
func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return defaultSecondaryModifier
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds a keybinding string with primary modifier.
// PrimaryKey("s") returns "alt+s" (or "ctrl+s" if primary is "ctrl").
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds a keybinding string with secondary modifier. A
// shift modifier on a single letter becomes the uppercase letter, which is
// what terminals report: SecondaryKey("l") returns "alt+L".
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		var mods []string
		for _, part := range strings.Split(secondary, "+") {
			if strings.ToLower(part) != "shift" {
				mods = append(mods, part)
			}
		}
		if len(mods) > 0 {
			return strings.Join(mods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// GetActionKey returns the keybinding for an action: the user override if
// present, otherwise the registry default. Unknown actions return "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if kb.Actions != nil {
		if override, exists := kb.Actions[action]; exists && override != "" {
			return override
		}
	}

	def, exists := actionRegistry[action]
	if !exists {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.PrimaryKey(def.key)
	case "secondary":
		return kb.SecondaryKey(def.key)
	default:
		return def.key
	}
}

// DisplayActionKey returns a display-friendly keybinding, e.g. "Alt+Shift+L"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

// capitalizeKeybinding converts uppercase letters to Shift+ form:
// "alt+L" -> "Alt+Shift+L", "ctrl+shift+j" -> "Ctrl+Shift+J"
func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	hasShift := false
	for _, p := range parts {
		if strings.ToLower(p) == "shift" {
			hasShift = true
			break
		}
	}

	var result []string
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			if !hasShift && i > 0 {
				result = append(result, "Shift")
			}
			result = append(result, part)
			continue
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(result, "+")
}

// Validate checks the modifiers. Returns (isValid, warningMessage).
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()
	secondary := kb.Secondary()

	if primary == "shift" || secondary == "shift" {
		return false, "Shift alone conflicts with typing"
	}
	if primary == secondary {
		return false, "Primary and secondary modifiers must differ"
	}

	for action, key := range kb.Actions {
		if _, known := actionRegistry[action]; !known {
			return true, fmt.Sprintf("Warning: unknown action %q bound to %q", action, key)
		}
	}

	if strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl") {
		return true, "Warning: Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}

	return true, ""
}
