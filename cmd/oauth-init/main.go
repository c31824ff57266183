// Command oauth-init performs the one-time OAuth dance for the Google Sheets
// export and saves the refresh token to disk.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

func main() {
	_ = godotenv.Load()

	cfg, err := clientConfig()
	if err != nil {
		log.Fatalf("oauth config: %v", err)
	}

	// The OAuth client must list this redirect URI as authorized.
	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	codeCh := waitForCallback(port)

	fmt.Printf("Open this URL to authorize:\n%s\n",
		cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(context.Background(), code)
		if err != nil {
			log.Fatalf("token exchange: %v", err)
		}
		path, err := saveToken(tok)
		if err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("Saved token to %s\n", path)
	case <-time.After(5 * time.Minute):
		log.Fatalf("authorization timed out")
	case <-interrupt:
		log.Fatalf("interrupted")
	}
}

// clientConfig reads the OAuth client, inline JSON taking precedence over a
// file path, and scopes it to spreadsheet access.
func clientConfig() (*oauth2.Config, error) {
	var raw []byte
	switch {
	case os.Getenv("GOOGLE_OAUTH_CLIENT_JSON") != "":
		raw = []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	case os.Getenv("GOOGLE_OAUTH_CLIENT_FILE") != "":
		b, err := os.ReadFile(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
		raw = b
	default:
		return nil, fmt.Errorf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}
	return google.ConfigFromJSON(raw, sheets.SpreadsheetsScope)
}

// waitForCallback serves the redirect endpoint and delivers the one
// authorization code, then shuts the throwaway server down.
func waitForCallback(port string) <-chan string {
	codeCh := make(chan string, 1)

	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- r.URL.Query().Get("code")
		go func() {
			time.Sleep(500 * time.Millisecond)
			_ = srv.Close()
		}()
	})
	go func() { _ = srv.ListenAndServe() }()

	return codeCh
}

func saveToken(tok *oauth2.Token) (string, error) {
	path := os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
	if path == "" {
		path = "token.json"
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return "", err
	}
	return path, nil
}
