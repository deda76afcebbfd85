package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/treechat",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: ProviderConfig{
			Type:         DefaultProviderType,
			BaseURL:      DefaultBaseURL,
			Model:        DefaultModel,
			Conversation: DefaultConversation,
		},
		Chat: ChatConfig{
			Cooldown:       DefaultCooldown.String(),
			RequestTimeout: DefaultRequestTimeout.String(),
			DefaultTopic:   DefaultSavedTopic,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# TreeChat System Configuration
# Location: ~/.config/treechat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations, exports and user config are stored
data_directory = "~/.local/share/treechat"
`
}

func GenerateUserConfigTemplate() string {
	return `# TreeChat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[provider]
# Backend: ollama, openai, openrouter, anthropic, or remote
# API keys are read from TREECHAT_API_KEY and never stored here.
type = "ollama"

# Server URL. For "remote" this is the chat service base URL.
base_url = "http://localhost:11434"

# Model used by local providers
model = "llama3.1:latest"

# Conversation to resume on startup
conversation = "default"

# System prompt prepended to every request (optional)
# Example: "You are a helpful coding assistant."
system_prompt = ""

[chat]
# How long sending stays blocked after the service reports a rate limit
cooldown = "1h0m0s"

# Give up on a reply after this long
request_timeout = "2m0s"

# Client-side request budget per cooldown window (0 disables it)
usage_limit = 0

# Topic given to saved messages
default_topic = "Saved Message"
`
}
