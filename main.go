package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"treechat/config"
	"treechat/model"
	"treechat/provider"
	"treechat/storage"
	"treechat/ui"
)

const Version = "v0.01.00"

const (
	listModelsTimeout = 15 * time.Second
	pingTimeout       = 5 * time.Second
)

var rootCmd = &cobra.Command{
	Use:           "treechat",
	Short:         "Terminal chat client for local and hosted LLM services",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChat(cmd)
	},
}

// runChat wires config, store, backend and UI, and blocks until the UI exits
func runChat(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		showStartupError("Configuration Error", err)
		return err
	}

	config.InitDebugLog(cfg.DataDir())

	var store *storage.ConversationStore
	providerCfg := providerConfig(cfg)
	if providerCfg.Type != provider.ProviderTypeRemote {
		store, err = storage.NewConversationStore(cfg.DataDir())
		if err != nil {
			showStartupError("Storage Error", err)
			return err
		}
		defer store.Close()
	}

	backend, err := provider.NewBackend(providerCfg, store)
	if err != nil {
		showStartupError("Provider Error", err)
		return err
	}

	app := ui.NewAppView(cfg, backend, Version)
	if err := pingBackend(cmd.Context(), backend); err != nil {
		app = app.WithStartupWarning("Provider Unreachable",
			fmt.Sprintf("%v\n\nMessages will fail until the provider is reachable.", err))
	}
	defer app.Shutdown()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run treechat: %w", err)
	}
	return nil
}

// pingBackend checks that a local provider answers before the UI starts.
// Remote services have no health endpoint and are not checked.
func pingBackend(ctx context.Context, backend provider.Backend) error {
	holder, ok := backend.(interface{ Provider() model.Provider })
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	p := holder.Provider()
	if err := p.Ping(ctx); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Startup] Ping %s failed: %v", p.GetModel(), err)
		}
		return fmt.Errorf("could not reach the provider for %s: %w", p.GetDisplayName(), err)
	}
	return nil
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available from the configured provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		p, err := provider.NewProvider(providerConfig(cfg))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), listModelsTimeout)
		defer cancel()

		models, err := p.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tCURRENT")
		for _, m := range models {
			current := ""
			if m.Name == p.GetModel() {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, formatSize(m.Size), current)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.PersistentFlags().String("provider", "", "backend: ollama, openai, openrouter, anthropic or remote")
	rootCmd.PersistentFlags().String("model", "", "model used by local providers")
	rootCmd.PersistentFlags().String("conversation", "", "conversation to resume")
	rootCmd.PersistentFlags().String("base-url", "", "provider or remote service base URL")

	conversationsCmd.AddCommand(deleteConversationCmd)
	rootCmd.AddCommand(modelsCmd, conversationsCmd)
}

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List conversations stored for local providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		return listConversations(cmd.Context(), cmd.OutOrStdout(), store, cfg.Conversation)
	},
}

var deleteConversationCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteConversation(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete conversation %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted conversation %s\n", args[0])
		return nil
	},
}

func openStore(cmd *cobra.Command) (*config.Config, *storage.ConversationStore, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewConversationStore(cfg.DataDir())
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// listConversations prints stored conversations, most recently updated
// first, marking current
func listConversations(ctx context.Context, out io.Writer, store *storage.ConversationStore, current string) error {
	conversations, err := store.ListConversations(ctx)
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Fprintln(out, "No stored conversations")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMESSAGES\tUPDATED\tCURRENT")
	for _, c := range conversations {
		marker := ""
		if c.ID == current {
			marker = "*"
		}
		modelName := c.Model
		if modelName == "" {
			modelName = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", c.ID, modelName, c.MessageCount, c.UpdatedAt.Local().Format("2006-01-02 15:04"), marker)
	}
	return w.Flush()
}

// loadConfig resolves configuration; command-line flags win over files and env
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("provider"); v != "" {
		cfg.ProviderType = v
	}
	if v, _ := flags.GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := flags.GetString("conversation"); v != "" {
		cfg.Conversation = v
	}
	if v, _ := flags.GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	return cfg, nil
}

func providerConfig(cfg *config.Config) provider.Config {
	providerType := provider.MapProviderIDToType(cfg.ProviderType)

	// The Ollama default URL means "unset" for every other backend
	baseURL := cfg.BaseURL
	if providerType != provider.ProviderTypeOllama && baseURL == config.DefaultBaseURL {
		baseURL = ""
	}

	return provider.Config{
		Type:         providerType,
		BaseURL:      baseURL,
		Model:        cfg.Model,
		APIKey:       cfg.APIKey,
		Conversation: cfg.Conversation,
		SystemPrompt: cfg.SystemPrompt,
	}
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes <= 0:
		return "-"
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	default:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	}
}

// showStartupError shows err in a modal. The caller still returns err, so it
// is also printed once the alt screen is gone.
func showStartupError(title string, err error) {
	p := tea.NewProgram(ui.NewErrorModal(title, err.Error()), tea.WithAltScreen())
	if _, runErr := p.Run(); runErr != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Startup] Error modal failed: %v", runErr)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
