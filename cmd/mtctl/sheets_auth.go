package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

func sheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Obtain an OAuth token for the spreadsheet export",
		Long: `Run the OAuth consent flow for the Google Sheets export and save the token.

The OAuth client must list http://localhost:<port>/callback as an authorized
redirect URI. Put the saved token in GOOGLE_OAUTH_TOKEN_JSON and the client
in GOOGLE_OAUTH_CLIENT_JSON for moneytracker-worker.`,
		RunE: runSheetsAuth,
	}
	cmd.Flags().String("client-file", "", "OAuth client JSON file (default: $GOOGLE_OAUTH_CLIENT_JSON)")
	cmd.Flags().String("port", "8085", "local port for the redirect")
	cmd.Flags().String("out", "token.json", "where to write the token")
	cmd.Flags().Duration("timeout", 5*time.Minute, "how long to wait for consent")
	return cmd
}

func runSheetsAuth(cmd *cobra.Command, _ []string) error {
	clientFile, _ := cmd.Flags().GetString("client-file")
	port, _ := cmd.Flags().GetString("port")
	outFile, _ := cmd.Flags().GetString("out")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var clientJSON []byte
	switch {
	case clientFile != "":
		b, err := os.ReadFile(clientFile)
		if err != nil {
			return fmt.Errorf("read client file: %w", err)
		}
		clientJSON = b
	case os.Getenv("GOOGLE_OAUTH_CLIENT_JSON") != "":
		clientJSON = []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	default:
		return errors.New("set --client-file or GOOGLE_OAUTH_CLIENT_JSON")
	}

	cfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return fmt.Errorf("oauth config: %w", err)
	}
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
			errCh <- fmt.Errorf("consent refused: %s", q.Get("error"))
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
		default:
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
			codeCh <- q.Get("code")
		}
	})
	srv := &http.Server{Addr: "localhost:" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer srv.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-time.After(timeout):
		return errors.New("authorization timed out")
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}

	tok, err := cfg.Exchange(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	f, err := os.OpenFile(outFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", outFile)
	return nil
}
