package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the inference backend, request pacing and the
generation journal.

Use subcommands to change individual keys or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key.

Run 'pdfboard settings keys' to list every key.

Examples:
  pdfboard settings set backend.provider openai
  pdfboard settings set generation.rate_limit 2
  pdfboard settings set backend.timeout 90s`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive backend setup",
	Long:  `Run an interactive wizard to choose and verify the inference backend.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backend]")
	cmd.Printf("  Provider: %s\n", settings.Backend.Provider.Description())
	if settings.Backend.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Backend.BaseURL)
	}
	cmd.Printf("  Timeout: %s\n", settings.Backend.Timeout)
	if settings.Backend.Provider.RequiresAPIKey() {
		if settings.Backend.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Backend.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
		cmd.Printf("  Text model: %s\n", settings.Backend.TextModel)
		cmd.Printf("  Image model: %s\n", settings.Backend.ImageModel)
	}
	status := "configured"
	if !settings.Backend.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Generation]")
	if settings.Generation.RateLimit > 0 {
		cmd.Printf("  Rate limit: %g/s (burst %d)\n", settings.Generation.RateLimit, settings.Generation.Burst)
	} else {
		cmd.Printf("  Rate limit: unbounded\n")
	}
	cmd.Printf("  Follow answers: %s\n", yesNo(settings.Generation.FollowFulfilled))
	cmd.Println()

	cmd.Println("[Journal]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Journal.Enabled))
	if settings.Journal.Enabled && settings.Journal.Dir != "" {
		cmd.Printf("  Directory: %s\n", settings.Journal.Dir)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'pdfboard settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, "api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("pdfboard Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Backend Provider")
	providers := domain.AllBackendProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	backend := settings.Backend
	backend.Provider = providers[idx-1]

	switch backend.Provider {
	case domain.BackendHTTP:
		defaultURL := backend.BaseURL
		if defaultURL == "" {
			defaultURL = domain.DefaultBackendURL
		}
		cmd.Printf("Enter service URL [%s]: ", defaultURL)
		backend.BaseURL = readLine(reader)
		if backend.BaseURL == "" {
			backend.BaseURL = defaultURL
		}

	case domain.BackendOpenAI:
		cmd.Print("Enter API key: ")
		backend.APIKey = readSecret(cmd, reader)
		cmd.Println()
		if backend.APIKey == "" {
			return errors.New("API key is required for this provider")
		}
		cmd.Printf("Enter text model [%s]: ", domain.DefaultTextModel)
		if backend.TextModel = readLine(reader); backend.TextModel == "" {
			backend.TextModel = domain.DefaultTextModel
		}
		// The HTTP service URL does not apply to OpenAI.
		backend.BaseURL = ""
	}

	if checkBackend != nil {
		cmd.Print("Validating configuration... ")
		if err := checkBackend(cmd.Context(), &backend); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("backend validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	settings.Backend = backend
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Backend configured: %s\n", backend.Provider.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when the command reads a terminal.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if in, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		secret, err := term.ReadPassword(int(in.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
