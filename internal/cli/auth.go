package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"golang.org/x/term"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Authenticate against the backend and persist the session locally.

The email can be passed with --email; the password is read from --password
or prompted for without echo.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user, role and permissions",
	RunE:  runWhoami,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the current token for a fresh one",
	RunE:  runRefresh,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted if omitted)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, refreshCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := loginEmail
	if email == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return errors.New("email is required")
	}

	password := loginPassword
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		password = string(raw)
	}

	sm, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	result := sm.Login(cmd.Context(), email, password)
	if !result.Success {
		return errors.New(result.Message)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s %s (%s)\n",
		result.User.FirstName, result.User.LastName, result.User.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	sm, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	sm.Logout(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sm, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	snap := sm.Snapshot()
	if !snap.IsAuthenticated {
		return errors.New("not signed in. Run 'millctl login'")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User:  %s %s <%s>\n", snap.User.FirstName, snap.User.LastName, snap.User.Email)
	fmt.Fprintf(out, "Role:  %s\n", snap.Role)
	fmt.Fprintln(out, "Permissions:")
	for _, p := range snap.Permissions {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	sm, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	if !sm.IsAuthenticated() {
		return errors.New("not signed in. Run 'millctl login'")
	}
	if !sm.RefreshToken(cmd.Context()) {
		return errors.New("token refresh was rejected; the session has been cleared. Sign in again")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Token refreshed.")
	return nil
}
