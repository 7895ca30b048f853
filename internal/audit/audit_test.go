package audit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4312"
	assert.Equal(t, "10.0.0.5", ClientIP(req))

	req.Header.Set("X-Real-IP", " 10.0.0.6 ")
	assert.Equal(t, "10.0.0.6", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
	assert.Equal(t, "192.168.1.1", ClientIP(req))

	assert.Equal(t, "", ClientIP(nil))
}

func TestMemoryLogger_FillsDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/billing/summary.csv", nil)
	req.Header.Set("User-Agent", "curl/8")
	entry := FromRequest(req, ActionExport, ResourceSummary, "all operations")
	entry.Metadata = json.RawMessage(`{"rows":3}`)

	logger := NewMemoryLogger()
	require.NoError(t, logger.Log(context.Background(), entry))

	entries := logger.Entries()
	require.Len(t, entries, 1)
	got := entries[0]
	assert.True(t, strings.HasPrefix(got.ID, "audit-"))
	assert.False(t, got.CreatedAt.IsZero())
	assert.Len(t, got.PayloadDigest, 64)
	assert.Equal(t, "curl/8", got.UserAgent)
	assert.Equal(t, ActionExport, got.Action)
}

func TestDigestJSON_Empty(t *testing.T) {
	assert.Equal(t, "", DigestJSON(nil))
}

func TestRepository_NilDB(t *testing.T) {
	var repo *Repository
	assert.Error(t, repo.Log(context.Background(), Entry{}))
	assert.Nil(t, NewRepository(nil))
}
