// Package cache is a short-lived read-side cache for note listings and
// details. It absorbs polling load while preserving read-your-writes: every
// write affecting an owner invalidates all of that owner's entries, and
// entries for notes still in PROCESSING carry a much shorter TTL so pollers
// observe the terminal transition promptly.
package cache

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/server/models"
	gocache "github.com/patrickmn/go-cache"
)

type NoteCache struct {
	c             *gocache.Cache
	ttl           time.Duration
	processingTTL time.Duration
}

func NewNoteCache(ttl, processingTTL time.Duration) *NoteCache {
	return &NoteCache{
		c:             gocache.New(ttl, 2*ttl),
		ttl:           ttl,
		processingTTL: processingTTL,
	}
}

// Keys are NUL-delimited and type-tagged. Identifiers arrive via HTTP header
// and path values, which cannot contain NUL, so keys cannot collide across
// owners regardless of what characters the ids contain.
func noteKey(ownerID, id string) string {
	return "note\x00" + ownerID + "\x00" + id
}

func listKey(ownerID string) string {
	return "list\x00" + ownerID
}

func (nc *NoteCache) GetNote(ownerID, id string) (*models.Note, bool) {
	v, ok := nc.c.Get(noteKey(ownerID, id))
	if !ok {
		return nil, false
	}
	return v.(*models.Note), true
}

func (nc *NoteCache) SetNote(note *models.Note) {
	ttl := nc.ttl
	if note.Status == models.StatusProcessing {
		ttl = nc.processingTTL
	}
	nc.c.Set(noteKey(note.OwnerID, note.ID), note, ttl)
}

func (nc *NoteCache) GetList(ownerID string) ([]*models.Note, bool) {
	v, ok := nc.c.Get(listKey(ownerID))
	if !ok {
		return nil, false
	}
	return v.([]*models.Note), true
}

func (nc *NoteCache) SetList(ownerID string, notes []*models.Note) {
	ttl := nc.ttl
	for _, n := range notes {
		if n.Status == models.StatusProcessing {
			ttl = nc.processingTTL
			break
		}
	}
	nc.c.Set(listKey(ownerID), notes, ttl)
}

// InvalidateOwner drops every cached entry belonging to ownerID. Called on
// any write affecting that owner.
func (nc *NoteCache) InvalidateOwner(ownerID string) {
	nc.c.Delete(listKey(ownerID))

	prefix := "note\x00" + ownerID + "\x00"
	for key := range nc.c.Items() {
		if strings.HasPrefix(key, prefix) {
			nc.c.Delete(key)
		}
	}
}
