package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetActionKeyDefaults(t *testing.T) {
	kb := DefaultKeybindings()

	tests := []struct {
		action string
		want   string
	}{
		{"send", "enter"},
		{"save_last_response", "alt+s"},
		{"saved_panel", "alt+b"},
		{"rate_limit", "alt+L"},
		{"close_saved_panel", "esc"},
		{"no_such_action", ""},
	}

	for _, tt := range tests {
		if got := kb.GetActionKey(tt.action); got != tt.want {
			t.Errorf("GetActionKey(%q) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestEveryActionHasKey(t *testing.T) {
	kb := DefaultKeybindings()
	for _, name := range ActionNames() {
		if kb.GetActionKey(name) == "" {
			t.Errorf("action %q has no key", name)
		}
	}
}

func TestCustomModifiers(t *testing.T) {
	kb := &KeyBindingsConfig{
		Modifiers: ModifierConfig{Primary: "ctrl", Secondary: "ctrl+shift"},
		Actions:   map[string]string{"quit": "ctrl+x"},
	}

	if got := kb.GetActionKey("export"); got != "ctrl+e" {
		t.Errorf("export = %q, want ctrl+e", got)
	}
	if got := kb.GetActionKey("rate_limit"); got != "ctrl+L" {
		t.Errorf("rate_limit = %q, want ctrl+L", got)
	}
	if got := kb.GetActionKey("quit"); got != "ctrl+x" {
		t.Errorf("quit override = %q, want ctrl+x", got)
	}
}

func TestDisplayActionKey(t *testing.T) {
	kb := DefaultKeybindings()

	tests := []struct {
		action string
		want   string
	}{
		{"save_last_response", "Alt+S"},
		{"rate_limit", "Alt+Shift+L"},
		{"send", "Enter"},
	}

	for _, tt := range tests {
		if got := kb.DisplayActionKey(tt.action); got != tt.want {
			t.Errorf("DisplayActionKey(%q) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		kb        KeyBindingsConfig
		wantValid bool
		wantWarn  bool
	}{
		{"defaults", KeyBindingsConfig{}, true, false},
		{"shift alone", KeyBindingsConfig{Modifiers: ModifierConfig{Primary: "shift"}}, false, true},
		{"same modifiers", KeyBindingsConfig{Modifiers: ModifierConfig{Primary: "alt", Secondary: "alt"}}, false, true},
		{"ctrl", KeyBindingsConfig{Modifiers: ModifierConfig{Primary: "ctrl", Secondary: "ctrl+shift"}}, true, true},
		{"unknown action", KeyBindingsConfig{Actions: map[string]string{"fly": "alt+f"}}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, warning := tt.kb.Validate()
			if valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", valid, tt.wantValid)
			}
			if (warning != "") != tt.wantWarn {
				t.Errorf("warning = %q, wantWarn %v", warning, tt.wantWarn)
			}
		})
	}
}

func TestLoadKeybindings(t *testing.T) {
	dataDir := t.TempDir()

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		t.Fatalf("LoadKeybindings() error = %v", err)
	}
	if kb.Primary() != "alt" {
		t.Errorf("Primary() = %q, want alt", kb.Primary())
	}
	if !FileExists(filepath.Join(dataDir, "keybindings.toml")) {
		t.Fatal("template not written")
	}

	// The written template must load cleanly.
	kb, err = LoadKeybindings(dataDir)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if kb.GetActionKey("send") != "enter" {
		t.Errorf("send = %q after reload", kb.GetActionKey("send"))
	}

	custom := "[modifiers]\nprimary = \"ctrl\"\n\n[actions]\nsaved_panel = \"ctrl+o\"\n"
	if err := os.WriteFile(filepath.Join(dataDir, "keybindings.toml"), []byte(custom), 0600); err != nil {
		t.Fatal(err)
	}
	kb, err = LoadKeybindings(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if kb.Secondary() != defaultSecondaryModifier {
		t.Errorf("Secondary() = %q, want default", kb.Secondary())
	}
	if got := kb.GetActionKey("saved_panel"); got != "ctrl+o" {
		t.Errorf("saved_panel = %q, want ctrl+o", got)
	}
}
