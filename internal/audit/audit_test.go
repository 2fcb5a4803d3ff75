package audit

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareFillsGeneratedFields(t *testing.T) {
	entry := Prepare(Entry{Action: "simulation.run", Metadata: []byte(`{"season":"win"}`)})
	assert.True(t, strings.HasPrefix(entry.ID, "audit-"))
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Len(t, entry.PayloadDigest, 64)
	assert.Equal(t, DigestJSON([]byte(`{"season":"win"}`)), entry.PayloadDigest)

	kept := Prepare(Entry{ID: "audit-fixed"})
	assert.Equal(t, "audit-fixed", kept.ID)
	assert.Empty(t, kept.PayloadDigest)
}

func TestLogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogLogger(log.New(&buf, "", 0))
	require.NoError(t, logger.Log(context.Background(), Entry{Action: "dataset.export", Actor: "user-1", ResourceType: "run", ResourceID: "r1"}))
	assert.Contains(t, buf.String(), "action=dataset.export")
	assert.Contains(t, buf.String(), "resource=run/r1")
}

func TestRepositoryNilDB(t *testing.T) {
	assert.Nil(t, NewRepository(nil))
	var repo *Repository
	assert.Error(t, repo.Log(context.Background(), Entry{}))
}
