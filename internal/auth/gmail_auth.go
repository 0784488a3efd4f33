package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Flow is the installed-app OAuth flow for read-only Gmail access.
type Flow struct {
	CredentialsFile string
	TokenFile       string
	// Prompt and Input drive the first-run login; nil disables it.
	Prompt io.Writer
	Input  io.Reader
}

// GmailService returns a Gmail client for the signed-in user.
func (f *Flow) GmailService(ctx context.Context) (*gmail.Service, error) {
	client, err := f.Client(ctx)
	if err != nil {
		return nil, err
	}
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return srv, nil
}

// Client retrieves a token, saves it on first login, then returns the authorized client.
func (f *Flow) Client(ctx context.Context) (*http.Client, error) {
	config, err := f.Config()
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(f.TokenFile)
	if err != nil {
		if f.Input == nil {
			return nil, fmt.Errorf("no saved token at %s: %w", f.TokenFile, err)
		}
		tok, err = f.tokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(f.TokenFile, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, tok), nil
}

// Config reads the app's client secret.
func (f *Flow) Config() (*oauth2.Config, error) {
	b, err := os.ReadFile(f.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	return config, nil
}

func (f *Flow) tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	out := f.Prompt
	if out == nil {
		out = io.Discard
	}
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "\n---------------------------------------------------------\n")
	fmt.Fprintf(out, "OPEN THIS LINK TO AUTHORIZE GMAIL ACCESS:\n%v\n", authURL)
	fmt.Fprintf(out, "---------------------------------------------------------\n")
	fmt.Fprintf(out, "Paste the code here: ")

	var authCode string
	if _, err := fmt.Fscan(f.Input, &authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, strings.TrimSpace(authCode))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
