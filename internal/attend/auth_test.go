package attend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"), "login must not be decorated")

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "admin", creds["username"])
		require.Equal(t, "s3cret", creds["password"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "new-token",
			"token_type":   "bearer",
		})
	}))
	defer server.Close()

	store := NewMemoryCredentialStore("")
	client, err := New(server.URL, store)
	require.NoError(t, err)

	require.NoError(t, client.Login("admin", "s3cret"))

	assert.True(t, client.Authenticated())
	assert.Equal(t, "new-token", client.Credential())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-token", saved)
}

func TestLoginRejectionLeavesSessionIntact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Incorrect username or password"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	// An existing credential must survive a failed re-login attempt.
	client := newTestClient(t, server.URL, "existing-token")

	hookFired := false
	client.OnAuthExpired(func() { hookFired = true })

	err := client.Login("admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidLogin)

	assert.True(t, client.Authenticated())
	assert.Equal(t, "existing-token", client.Credential())
	assert.False(t, hookFired)
}

func TestLoginServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"database unavailable"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	err := client.Login("admin", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidLogin)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "database unavailable", ve.Detail)
}

func TestLoginEmptyAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"","token_type":"bearer"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	err := client.Login("admin", "s3cret")
	require.Error(t, err)
	assert.False(t, client.Authenticated())
}

func TestLogoutClearsCredential(t *testing.T) {
	store := NewMemoryCredentialStore("token")
	client, err := New("http://localhost:8000", store)
	require.NoError(t, err)
	require.True(t, client.Authenticated())

	require.NoError(t, client.Logout())

	assert.False(t, client.Authenticated())
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}
