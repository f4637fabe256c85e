package cache

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteCache_SetGetNote(t *testing.T) {
	nc := NewNoteCache(time.Minute, time.Second)

	note := &models.Note{ID: "n-1", OwnerID: "u-1", Status: models.StatusCompleted, SummaryText: "s"}
	nc.SetNote(note)

	got, ok := nc.GetNote("u-1", "n-1")
	require.True(t, ok)
	assert.Equal(t, "s", got.SummaryText)

	_, ok = nc.GetNote("u-2", "n-1")
	assert.False(t, ok, "cache entries are owner-scoped")
}

func TestNoteCache_ProcessingEntriesExpireQuickly(t *testing.T) {
	nc := NewNoteCache(time.Minute, 5*time.Millisecond)

	nc.SetNote(&models.Note{ID: "n-1", OwnerID: "u-1", Status: models.StatusProcessing})

	_, ok := nc.GetNote("u-1", "n-1")
	require.True(t, ok)

	time.Sleep(10 * time.Millisecond)

	_, ok = nc.GetNote("u-1", "n-1")
	assert.False(t, ok, "PROCESSING entry must expire after the short TTL")
}

func TestNoteCache_ListTTLFollowsProcessingNotes(t *testing.T) {
	nc := NewNoteCache(time.Minute, 5*time.Millisecond)

	nc.SetList("u-1", []*models.Note{
		{ID: "n-1", OwnerID: "u-1", Status: models.StatusCompleted},
		{ID: "n-2", OwnerID: "u-1", Status: models.StatusProcessing},
	})

	time.Sleep(10 * time.Millisecond)

	_, ok := nc.GetList("u-1")
	assert.False(t, ok, "list containing a PROCESSING note must use the short TTL")
}

func TestNoteCache_InvalidateOwner(t *testing.T) {
	nc := NewNoteCache(time.Minute, time.Minute)

	nc.SetNote(&models.Note{ID: "n-1", OwnerID: "u-1", Status: models.StatusCompleted})
	nc.SetList("u-1", []*models.Note{{ID: "n-1", OwnerID: "u-1", Status: models.StatusCompleted}})
	nc.SetNote(&models.Note{ID: "n-9", OwnerID: "u-2", Status: models.StatusCompleted})

	nc.InvalidateOwner("u-1")

	_, ok := nc.GetNote("u-1", "n-1")
	assert.False(t, ok)
	_, ok = nc.GetList("u-1")
	assert.False(t, ok)

	_, ok = nc.GetNote("u-2", "n-9")
	assert.True(t, ok, "other owners' entries survive")
}

func TestNoteCache_KeysDoNotCollideAcrossOwners(t *testing.T) {
	nc := NewNoteCache(time.Minute, time.Minute)

	// Identifiers containing the old separator must not alias each other.
	nc.SetNote(&models.Note{ID: "c", OwnerID: "a/b", Status: models.StatusCompleted, SummaryText: "owned by a/b"})

	_, ok := nc.GetNote("a", "b/c")
	assert.False(t, ok, "owner a must not see owner a/b's entry")

	got, ok := nc.GetNote("a/b", "c")
	require.True(t, ok)
	assert.Equal(t, "owned by a/b", got.SummaryText)

	// A note id equal to "list" must not shadow the listing entry.
	nc.SetList("u-1", []*models.Note{{ID: "n-1", OwnerID: "u-1", Status: models.StatusCompleted}})
	nc.SetNote(&models.Note{ID: "list", OwnerID: "u-1", Status: models.StatusCompleted})

	list, ok := nc.GetList("u-1")
	require.True(t, ok)
	assert.Len(t, list, 1)

	// Invalidation stays owner-scoped under the same identifiers.
	nc.InvalidateOwner("a")
	_, ok = nc.GetNote("a/b", "c")
	assert.True(t, ok, "invalidating owner a must not touch owner a/b")
}
