package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testCredentials = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour).Round(time.Second)}

	require.NoError(t, saveToken(path, tok))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "r", got.RefreshToken)
	assert.True(t, tok.Expiry.Equal(got.Expiry))
}

func TestFlow_ClientUsesSavedToken(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	token := filepath.Join(dir, "token.json")
	require.NoError(t, os.WriteFile(creds, []byte(testCredentials), 0600))
	require.NoError(t, saveToken(token, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))

	f := &Flow{CredentialsFile: creds, TokenFile: token}
	client, err := f.Client(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestFlow_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := (&Flow{CredentialsFile: filepath.Join(dir, "missing.json")}).Client(context.Background())
	assert.ErrorContains(t, err, "unable to read client secret file")

	creds := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte(testCredentials), 0600))
	_, err = (&Flow{CredentialsFile: creds, TokenFile: filepath.Join(dir, "token.json")}).Client(context.Background())
	assert.ErrorContains(t, err, "no saved token")
}
