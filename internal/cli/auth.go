package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/fish0048-ai/my-ai-coach/internal/auth"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
)

var authFlags struct {
	status bool
	logout bool
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Connect your Strava account",
	Long: `Run the Strava OAuth flow. A local callback server listens on
strava.callback_port while you approve access in the browser; the tokens are
stored in the local database and refreshed automatically afterwards.

Examples:
  coach auth            # log in
  coach auth --status   # show the stored login
  coach auth --logout   # forget the stored tokens`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&authFlags.status, "status", false, "show the stored login instead of logging in")
	authCmd.Flags().BoolVar(&authFlags.logout, "logout", false, "delete the stored tokens (ignored with --status)")
	rootCmd.AddCommand(authCmd)
}

func (e *env) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     e.cfg.Strava.ClientID,
		ClientSecret: e.cfg.Strava.ClientSecret,
		CallbackPort: e.cfg.Strava.CallbackPort,
	})
}

func runAuth(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	switch {
	case authFlags.status:
		creds, err := e.store.GetCredentials(cmd.Context(), auth.Platform)
		if errors.Is(err, store.ErrNoAuth) {
			fmt.Fprintln(out, "Not logged in to Strava. Run 'coach auth' to connect.")
			return nil
		}
		if err != nil {
			return err
		}
		state := "valid until " + creds.ExpiresAt.Local().Format(time.DateTime)
		if creds.Expired(time.Now()) {
			state = "expired, refreshed on next sync"
		}
		fmt.Fprintf(out, "Strava athlete %d, token %s (saved %s)\n", creds.AccountID, state, humanize.Time(creds.UpdatedAt))
		return nil

	case authFlags.logout:
		if err := e.store.DeleteCredentials(cmd.Context(), auth.Platform); err != nil {
			return err
		}
		fmt.Fprintln(out, "Strava tokens deleted.")
		return nil
	}

	if err := e.cfg.ValidateStrava(); err != nil {
		return err
	}

	port := e.cfg.Strava.CallbackPort
	if port == 0 {
		port = auth.DefaultCallbackPort
	}
	result, err := auth.Authenticate(cmd.Context(), e.oauthConfig(), port, out)
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}
	if err := auth.Save(cmd.Context(), e.store, result); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nSuccessfully authenticated as athlete %d!\n", result.AthleteID)
	return nil
}
