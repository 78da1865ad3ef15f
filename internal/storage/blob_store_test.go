package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgenny/propostas/internal/models"
)

func newTestBlobStore() (*BlobStore, *memoryObjects) {
	objects := newMemoryObjects()
	return NewBlobStore(objects, time.Second), objects
}

func readIndex(t *testing.T, objects *memoryObjects) []models.Summary {
	t.Helper()
	raw, _, err := objects.Read(context.Background(), indexKey)
	require.NoError(t, err)
	var entries []models.Summary
	require.NoError(t, json.Unmarshal(raw, &entries))
	return entries
}

func TestBlobStore_SaveThenGet(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	p := newProposal(map[string]any{"cliente": "Acme", "plano": "Prime"})

	require.NoError(t, s.Save(ctx, p))

	assert.True(t, objects.has("propostas/"+p.ID()+".json"))
	got, err := s.Get(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestBlobStore_GetByNamePrefix(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	id := uuid.NewString()
	objects.setRaw("propostas/"+id+"-Xk3f9.json", []byte(`{"id":"`+id+`","cliente":"Acme"}`))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got["cliente"])
}

func TestBlobStore_GetMissing(t *testing.T) {
	s, _ := newTestBlobStore()

	_, err := s.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlobStore_GetReadFailureIsReported(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	p := newProposal(nil)
	require.NoError(t, s.Save(ctx, p))
	objects.failRead["propostas/"+p.ID()+".json"] = errUnavailable

	_, err := s.Get(ctx, p.ID())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)
}

func TestBlobStore_IndexNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestBlobStore()
	r1 := newProposal(map[string]any{"cliente": "R1"})
	r2 := newProposal(map[string]any{"cliente": "R2"})

	require.NoError(t, s.Save(ctx, r1))
	require.NoError(t, s.Save(ctx, r2))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, r2.ID(), items[0].ID)
	assert.Equal(t, r1.ID(), items[1].ID)
}

func TestBlobStore_IndexUpsertReplacesEntry(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	r1 := newProposal(map[string]any{"cliente": "R1"})
	r2 := newProposal(map[string]any{"cliente": "R2"})
	require.NoError(t, s.Save(ctx, r1))
	require.NoError(t, s.Save(ctx, r2))

	r1["cliente"] = "R1 renomeado"
	require.NoError(t, s.Save(ctx, r1))

	entries := readIndex(t, objects)
	require.Len(t, entries, 2)
	assert.Equal(t, r1.ID(), entries[0].ID)
	assert.Equal(t, "R1 renomeado", entries[0].Cliente)
	assert.Equal(t, r2.ID(), entries[1].ID)
}

func TestBlobStore_IndexCapped(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	var last models.Proposal
	for i := 0; i < ListCap+10; i++ {
		last = newProposal(map[string]any{"cliente": "c"})
		require.NoError(t, s.Save(ctx, last))
	}

	assert.Len(t, readIndex(t, objects), ListCap)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, ListCap)
	assert.Equal(t, last.ID(), items[0].ID)
}

func TestBlobStore_IndexFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	objects.failPut[indexKey] = errUnavailable
	p := newProposal(map[string]any{"cliente": "Acme"})

	require.NoError(t, s.Save(ctx, p))

	got, err := s.Get(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Acme", got["cliente"])

	// Индекс не обновился: удалённый список может недосчитываться.
	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBlobStore_CorruptIndexTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	objects.setRaw(indexKey, []byte("<html>not json</html>"))

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	p := newProposal(map[string]any{"cliente": "Acme"})
	require.NoError(t, s.Save(ctx, p))

	entries := readIndex(t, objects)
	require.Len(t, entries, 1)
	assert.Equal(t, p.ID(), entries[0].ID)
}

func TestBlobStore_UnreadableIndexOverwritten(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	require.NoError(t, s.Save(ctx, newProposal(nil)))
	objects.failRead[indexKey] = errUnavailable

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, errUnavailable)

	p := newProposal(nil)
	require.NoError(t, s.Save(ctx, p))

	delete(objects.failRead, indexKey)
	entries := readIndex(t, objects)
	require.Len(t, entries, 1)
	assert.Equal(t, p.ID(), entries[0].ID)
}

// conflictOnce имитирует запись индекса другим процессом между чтением и записью.
type conflictOnce struct {
	*memoryObjects
	fired bool
}

func (c *conflictOnce) Put(ctx context.Context, key string, data []byte, ifGeneration int64) (ObjectInfo, error) {
	if key == indexKey && !c.fired {
		c.fired = true
		c.memoryObjects.setRaw(indexKey, []byte(`[{"id":"outro-processo","cliente":"Outro"}]`))
	}
	return c.memoryObjects.Put(ctx, key, data, ifGeneration)
}

func TestBlobStore_IndexConflictRetried(t *testing.T) {
	ctx := context.Background()
	objects := &conflictOnce{memoryObjects: newMemoryObjects()}
	s := NewBlobStore(objects, time.Second)
	p := newProposal(map[string]any{"cliente": "Acme"})

	require.NoError(t, s.Save(ctx, p))

	entries := readIndex(t, objects.memoryObjects)
	require.Len(t, entries, 2)
	assert.Equal(t, p.ID(), entries[0].ID)
	assert.Equal(t, "outro-processo", entries[1].ID)
}

func TestBlobStore_Reindex(t *testing.T) {
	ctx := context.Background()
	s, objects := newTestBlobStore()
	first := uuid.NewString()
	second := uuid.NewString()
	objects.setRaw("propostas/"+first+".json", []byte(`{"id":"`+first+`","cliente":"Primeiro"}`))
	objects.setRaw("propostas/"+second+".json", []byte(`{"id":"`+second+`","cliente":"Segundo"}`))
	objects.setRaw("propostas/lixo.json", []byte(`nope`))
	objects.setRaw("propostas/readme.txt", []byte(`x`))

	n, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second, items[0].ID)
	assert.Equal(t, "Segundo", items[0].Cliente)
	assert.Equal(t, first, items[1].ID)
}

func TestBlobStore_ReindexListFailure(t *testing.T) {
	s, objects := newTestBlobStore()
	objects.failList = errUnavailable

	_, err := s.Reindex(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
}

func TestUpsertIndex(t *testing.T) {
	a := models.Summary{ID: "a"}
	b := models.Summary{ID: "b"}
	c := models.Summary{ID: "c"}

	assert.Equal(t, []models.Summary{a}, upsertIndex(nil, a, 3))
	assert.Equal(t, []models.Summary{b, a}, upsertIndex([]models.Summary{a}, b, 3))
	assert.Equal(t, []models.Summary{a, b}, upsertIndex([]models.Summary{b, a}, a, 3))
	assert.Equal(t, []models.Summary{c, b}, upsertIndex([]models.Summary{b, a}, c, 2))
}

func TestBlobStore_ConcurrentSavesKeepAllIndexEntries(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestBlobStore()
	const writers = 40

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Save(ctx, newProposal(map[string]any{"cliente": fmt.Sprintf("c%d", i)}))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, writers)

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		_, dup := seen[item.ID]
		assert.False(t, dup, "duplicate index entry %s", item.ID)
		seen[item.ID] = struct{}{}
	}
}
