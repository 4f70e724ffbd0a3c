package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"status": status, "success": status < 300, "data": data}
	if status >= 300 {
		body["message"] = "invalid or expired token"
		body["error"] = map[string]any{"kind": "UNAUTHENTICATED"}
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginThenCounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		assert.Equal(t, "r@example.com", in["email"])
		writeEnvelope(w, http.StatusOK, map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": 7, "role": "resident", "email": "r@example.com"},
		})
	})
	mux.HandleFunc("/api/visitors/pending-count/7", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"resident_id": 7, "count": 3})
	})
	mux.HandleFunc("/api/parcels/pending-count/7", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"resident_id": 7, "count": 1})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	s, err := c.Login(context.Background(), "r@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.User.ID)
	assert.Equal(t, "tok-1", c.Token())

	n, err := c.PendingVisitorCount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.PendingParcelCount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHENTICATED", apiErr.Kind)
}

func TestNonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).PendingParcelCount(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}
