package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildClientFindByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/children/child-1", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"child-1","parent_id":"parent-1","name":"Ayu","birthday":"2024-01-15","gender":"female"}}`))
	}))
	defer srv.Close()

	client := NewChildClient(srv.URL, "svc-token", time.Second, 0, nil)
	child, err := client.FindByID(context.Background(), "child-1")
	require.NoError(t, err)
	assert.Equal(t, "Ayu", child.Name)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), child.Birthday)
	assert.True(t, child.IsActive)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, "parent-1", *child.ParentID)
}

func TestChildClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"child not found"}}`))
	}))
	defer srv.Close()

	client := NewChildClient(srv.URL, "", time.Second, 0, nil)
	_, err := client.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrChildNotFound)
}

func TestChildClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"child-1","name":"Ayu","birthday":"2024-01-15T00:00:00Z","gender":"female","is_active":false}}`))
	}))
	defer srv.Close()

	client := NewChildClient(srv.URL, "", time.Second, 2, nil)
	child, err := client.FindByID(context.Background(), "child-1")
	require.NoError(t, err)
	assert.False(t, child.IsActive)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestChildClientRejectsBadBirthday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"child-1","name":"Ayu","birthday":"15/01/2024"}}`))
	}))
	defer srv.Close()

	client := NewChildClient(srv.URL, "", time.Second, 0, nil)
	_, err := client.FindByID(context.Background(), "child-1")
	assert.ErrorContains(t, err, "invalid birthday")
}
