package coreclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainbattle-platform/brainbattle-clan/internal/coreclient"
)

func TestClient_Membership(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/clans/clan-1/members/user-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isMember":true,"role":"LEADER","status":"ACTIVE"}`))
	}))
	defer server.Close()

	client := coreclient.New(server.URL, time.Second)
	result, err := client.Membership(context.Background(), "clan-1", "user-1")

	require.NoError(t, err)
	assert.True(t, result.IsMember)
	assert.Equal(t, "LEADER", result.Role)
}

func TestClient_ClanMemberActive(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{"active member", `{"isMember":true,"role":"MEMBER","status":"ACTIVE"}`, true},
		{"banned member", `{"isMember":true,"role":"MEMBER","status":"BANNED"}`, false},
		{"not a member", `{"isMember":false,"role":"","status":""}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := coreclient.New(server.URL, time.Second)
			active, err := client.ClanMemberActive(context.Background(), "clan-1", "user-1")

			require.NoError(t, err)
			assert.Equal(t, tc.want, active)
		})
	}
}

func TestClient_AnyBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/users/u1/blocked/u2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aBlocksB":true,"bBlocksA":false,"anyBlocked":true}`))
	}))
	defer server.Close()

	client := coreclient.New(server.URL, time.Second)
	blocked, err := client.AnyBlocked(context.Background(), "u1", "u2")

	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestClient_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := coreclient.New(server.URL, time.Second)
	_, err := client.BlockCheck(context.Background(), "u1", "u2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestClient_TimeoutIsHardFailure(t *testing.T) {
	// A core service stall must surface as an error within the configured
	// budget, never hang the caller.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"anyBlocked":false}`))
	}))
	defer server.Close()

	client := coreclient.New(server.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := client.AnyBlocked(context.Background(), "u1", "u2")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}
