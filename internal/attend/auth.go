package attend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates against the backend and stores the returned credential.
// The login request itself is never decorated with an existing credential, so
// a rejected password reports ErrInvalidLogin without touching the current
// session state.
func (c *Client) Login(username, password string) error {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("could not marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, c.resolveURL("login"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &TransportError{Op: "POST /login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidLogin
	}
	if resp.StatusCode != http.StatusOK {
		return decodeStatusError(resp)
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("could not unmarshal login response: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("login response carried no access token")
	}

	return c.SetCredential(result.AccessToken)
}

// Logout clears the active credential. The backend keeps no session state, so
// dropping the token is the whole operation.
func (c *Client) Logout() error {
	return c.SetCredential("")
}
