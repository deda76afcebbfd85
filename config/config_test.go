package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("LOCALAPPDATA", "")
	for _, key := range []string{EnvProvider, EnvBaseURL, EnvModel, EnvDataDir, EnvAPIKey, EnvDebug} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadWritesDefaults(t *testing.T) {
	isolateHome(t)
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ProviderType != DefaultProviderType {
		t.Errorf("ProviderType = %q, want %q", cfg.ProviderType, DefaultProviderType)
	}
	if cfg.Cooldown != DefaultCooldown {
		t.Errorf("Cooldown = %v, want %v", cfg.Cooldown, DefaultCooldown)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, DefaultRequestTimeout)
	}
	if cfg.DefaultTopic != DefaultSavedTopic {
		t.Errorf("DefaultTopic = %q, want %q", cfg.DefaultTopic, DefaultSavedTopic)
	}

	for _, name := range []string{"config.toml", "keybindings.toml"} {
		info, err := os.Stat(filepath.Join(dataDir, name))
		if err != nil {
			t.Fatalf("%s not created: %v", name, err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("%s permissions = %o, want 600", name, perm)
		}
	}
	if !FileExists(GetSettingsFilePath()) {
		t.Error("settings.toml not created")
	}
}

func TestLoadTemplateRoundTrip(t *testing.T) {
	isolateHome(t)
	dataDir := t.TempDir()
	if err := CreateDefaultUserConfig(dataDir); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	cfg.DataDirectory = dataDir
	if err := LoadInto(cfg); err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}
	want := Defaults()
	if cfg.Model != want.Model || cfg.Cooldown != want.Cooldown || cfg.RequestTimeout != want.RequestTimeout {
		t.Errorf("template values differ from defaults: got %+v", cfg)
	}
}

func TestUserConfigOverrides(t *testing.T) {
	isolateHome(t)
	dataDir := t.TempDir()
	content := `[provider]
type = "remote"
base_url = "https://chat.example.com"
conversation = "standup"

[chat]
cooldown = "15m"
request_timeout = "30s"
usage_limit = 20
default_topic = "Pinned"
`
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	cfg.DataDirectory = dataDir
	if err := LoadInto(cfg); err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}

	if cfg.ProviderType != "remote" {
		t.Errorf("ProviderType = %q, want remote", cfg.ProviderType)
	}
	if cfg.BaseURL != "https://chat.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want default %q", cfg.Model, DefaultModel)
	}
	if cfg.Conversation != "standup" {
		t.Errorf("Conversation = %q, want standup", cfg.Conversation)
	}
	if cfg.Cooldown != 15*time.Minute {
		t.Errorf("Cooldown = %v, want 15m", cfg.Cooldown)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.UsageLimit != 20 {
		t.Errorf("UsageLimit = %d, want 20", cfg.UsageLimit)
	}
	if cfg.DefaultTopic != "Pinned" {
		t.Errorf("DefaultTopic = %q, want Pinned", cfg.DefaultTopic)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateHome(t)
	dataDir := t.TempDir()
	t.Setenv(EnvProvider, "openai")
	t.Setenv(EnvBaseURL, "https://api.example.com/v1")
	t.Setenv(EnvModel, "gpt-4o-mini")
	t.Setenv(EnvAPIKey, "sk-test")

	cfg := Defaults()
	cfg.DataDirectory = dataDir
	if err := LoadInto(cfg); err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}

	if cfg.ProviderType != "openai" || cfg.BaseURL != "https://api.example.com/v1" || cfg.Model != "gpt-4o-mini" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", cfg.APIKey)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "sk-test") {
		t.Error("API key written to config.toml")
	}
}

func TestInvalidChatSettings(t *testing.T) {
	tests := []struct {
		name    string
		chat    string
		wantErr string
	}{
		{"unparseable cooldown", `cooldown = "soon"`, "chat.cooldown"},
		{"zero cooldown", `cooldown = "0s"`, "must be positive"},
		{"negative timeout", `request_timeout = "-5s"`, "chat.request_timeout"},
		{"negative usage limit", `usage_limit = -1`, "chat.usage_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateHome(t)
			dataDir := t.TempDir()
			content := "[chat]\n" + tt.chat + "\n"
			if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0600); err != nil {
				t.Fatal(err)
			}

			cfg := Defaults()
			cfg.DataDirectory = dataDir
			err := LoadInto(cfg)
			if err == nil {
				t.Fatal("LoadInto() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveConversation(t *testing.T) {
	isolateHome(t)
	dataDir := t.TempDir()

	if err := SaveConversation(dataDir, "retro"); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if userCfg.Provider.Conversation != "retro" {
		t.Errorf("Conversation = %q, want retro", userCfg.Provider.Conversation)
	}
	if userCfg.Provider.Type != DefaultProviderType {
		t.Errorf("Type = %q, want %q", userCfg.Provider.Type, DefaultProviderType)
	}
}

func TestExpandPath(t *testing.T) {
	home := isolateHome(t)
	t.Setenv("TREECHAT_TEST_DIR", "/srv/chat")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~/data", filepath.Join(home, "data")},
		{"$TREECHAT_TEST_DIR/db", "/srv/chat/db"},
		{"/tmp/../tmp/x", "/tmp/x"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsureDataDirPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := EnsureDataDirPermissions(dir); err != nil {
		t.Fatalf("EnsureDataDirPermissions() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("permissions = %o, want 700", perm)
	}
}

func TestInitDebugLog(t *testing.T) {
	dataDir := t.TempDir()
	t.Cleanup(func() {
		Debug = false
		DebugLog = nil
	})

	t.Setenv(EnvDebug, "")
	InitDebugLog(dataDir)
	if DebugLog != nil {
		t.Fatal("DebugLog set without TREECHAT_DEBUG")
	}

	t.Setenv(EnvDebug, "1")
	InitDebugLog(dataDir)
	if DebugLog == nil {
		t.Fatal("DebugLog not set")
	}
	info, err := os.Stat(filepath.Join(dataDir, "debug.log"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("debug.log permissions = %o, want 600", perm)
	}
}
