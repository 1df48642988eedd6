// Package cli implements millctl, the terminal client for the flour mill
// ERP backend. It drives the same session manager and route guards the
// web frontend uses, so an operator at a shell sees exactly the access
// decisions a browser user would.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"flourmill/internal/session"

	"github.com/spf13/cobra"
)

var (
	apiURL  string
	devMode bool
)

var rootCmd = &cobra.Command{
	Use:   "millctl",
	Short: "Flour mill ERP terminal client",
	Long: `millctl talks to the flour mill ERP backend from the command line.

Sign in once with 'millctl login'; the session is persisted under your
home directory and restored on every subsequent invocation. Commands
that need a role you do not hold fail with an access-denied message
instead of hitting the backend.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "backend base URL (default $MILL_API_URL or http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "trust mock development tokens without backend validation")
}

func baseURL() string {
	if apiURL != "" {
		return apiURL
	}
	if env := os.Getenv("MILL_API_URL"); env != "" {
		return env
	}
	return "http://localhost:8080"
}

// sessionFilePath is where the persisted session lives between invocations.
func sessionFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".millctl", "session.json"), nil
}

// openSession builds the session manager over the persisted file store and
// restores any existing session. Every command goes through here so the
// guard always sees a bootstrapped manager.
func openSession(ctx context.Context) (*session.Manager, error) {
	path, err := sessionFilePath()
	if err != nil {
		return nil, err
	}
	sm, err := session.New(session.Config{
		BaseURL:         baseURL(),
		Storage:         session.NewFileStorage(path),
		AllowMockTokens: devMode || os.Getenv("MILL_DEV") == "1",
	})
	if err != nil {
		return nil, err
	}
	if err := sm.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return sm, nil
}
