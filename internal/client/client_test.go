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

	"hireloop/internal/filter"
)

func TestProjects_SendsFilterAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "react", r.URL.Query().Get("search"))
		assert.Equal(t, "go,sql", r.URL.Query().Get("skills"))
		assert.Equal(t, "1", r.URL.Query().Get("mine"))
		_, _ = w.Write([]byte(`[{"id":3,"title":"Dashboard","skills":["go","sql"]}]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok")
	got, err := c.Projects(context.Background(), "", true, filter.Query{Search: "react", Skills: []string{"go", "sql"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
}

func TestAPIError_CarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "You have already applied to this project"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").Apply(context.Background(), 1, "hi", 0)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, "You have already applied to this project", Message(err))
}

func TestMessage_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").UnreadCount(context.Background())
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, Message(err))

	assert.Equal(t, FallbackMessage, Message(errors.New("dial tcp: connection refused")))
}

func TestMarkRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/messages/mark-read", r.URL.Path)
		var body map[string]int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(9), body["conversationId"])
		_, _ = w.Write([]byte(`{"updated":4}`))
	}))
	defer srv.Close()

	n, err := New(srv.URL, "tok").MarkRead(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
