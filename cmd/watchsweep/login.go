package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/plexutil/watchsweep/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize a Plex account",
	Long: `Login registers a Plex account token. The default flow creates a PIN
and waits for approval on app.plex.tv. With --user, a password signin is
performed instead. With --from-config, every configured credential pair
is signed in at once.`,
	Example: `  watchsweep login
  watchsweep login --user alice
  watchsweep login --from-config`,
	RunE: runLogin,
}

var (
	loginUser       string
	loginPassword   string
	loginFromConfig bool
	loginTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "",
		"Username for password signin (skips the PIN flow)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "",
		"Password (will prompt if not provided)")
	loginCmd.Flags().BoolVar(&loginFromConfig, "from-config", false,
		"Sign in every credential pair from the config file")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 2*time.Minute,
		"How long to wait for PIN approval")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	switch {
	case loginFromConfig:
		return loginAllFromConfig(ctx)
	case loginUser != "":
		return loginWithPassword(ctx, loginUser)
	default:
		return loginWithPIN(ctx)
	}
}

// loginWithPIN drives the device-authorization handshake from the terminal.
func loginWithPIN(ctx context.Context) error {
	session, err := apiClient.Auth.BeginPIN(ctx)
	if err != nil {
		return fmt.Errorf("create pin: %w", err)
	}

	authURL := apiClient.Auth.AuthURL(session.Code, "")
	printInfo("Open the following URL and approve the request:")
	printInfo("  %s", authURL)
	printInfo("Waiting for approval (code %s)...", session.Code)

	deadline := time.Now().Add(loginTimeout)
	for {
		token, err := apiClient.Auth.PollPIN(ctx, session.ID, session.Code)
		if err == nil {
			return completeLogin(ctx, token)
		}
		if !errors.Is(err, models.ErrNotYetAuthorized) {
			return fmt.Errorf("poll pin: %w", err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("authorization not completed within %s", loginTimeout)
		}
		time.Sleep(2 * time.Second)
	}
}

func completeLogin(ctx context.Context, token string) error {
	username, err := apiClient.Auth.Complete(ctx, token)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"username": username,
		})
	} else {
		printSuccess("Account %s authorized", username)
	}
	return nil
}

// loginWithPassword signs one account in with username and password.
func loginWithPassword(ctx context.Context, username string) error {
	password := loginPassword
	if password == "" {
		var err error
		password, err = promptPassword(fmt.Sprintf("Password for %s: ", username))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	if err := apiClient.Auth.SignIn(ctx, username, password); err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
		} else {
			printError("Login failed: %v", err)
		}
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"username": username,
		})
	} else {
		printSuccess("Account %s authorized", username)
	}
	return nil
}

// loginAllFromConfig signs in every credential pair from the config file.
// Failures are reported per account and do not stop the rest.
func loginAllFromConfig(ctx context.Context) error {
	creds := cfg.Credentials()
	if len(creds) == 0 {
		return fmt.Errorf("no credentials configured")
	}

	failed := 0
	for _, cred := range creds {
		if err := apiClient.Auth.SignIn(ctx, cred.Username, cred.Password); err != nil {
			printError("Login failed for %s: %v", cred.Username, err)
			failed++
			continue
		}
		printSuccess("Account %s authorized", cred.Username)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d accounts failed to sign in", failed, len(creds))
	}
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}
	return string(password), nil
}
