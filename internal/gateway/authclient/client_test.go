package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Success(t *testing.T) {
	var gotPath string
	var gotBody validateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid":true,"user_id":"u1","user_name":"Test User","roles":["customer","beta"]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)

	cc, err := client.Validate(context.Background(), "token-123")
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/validate", gotPath)
	assert.Equal(t, "token-123", gotBody.Token)
	assert.Equal(t, "u1", cc.UserID)
	assert.Equal(t, "Test User", cc.UserName)
	assert.Equal(t, "customer,beta", cc.Roles)
}

func TestValidate_UnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)

	_, err := client.Validate(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_InvalidFlagInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid":false}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)

	_, err := client.Validate(context.Background(), "expired-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_ServerErrorIsNotInvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)

	_, err := client.Validate(context.Background(), "token-123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}
