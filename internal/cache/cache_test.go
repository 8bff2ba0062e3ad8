package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// memoryStore implements Store with a map.
type memoryStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Load(_ context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[namespace+"/"+key]
	return v, ok, nil
}

func (m *memoryStore) Save(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.data[namespace+"/"+key] = value
	return nil
}

func (m *memoryStore) Purge(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if len(k) > len(namespace) && k[:len(namespace)+1] == namespace+"/" {
			delete(m.data, k)
		}
	}
	return nil
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New[string, payload]("test")

	want := payload{Name: "a", Items: []string{"x", "y"}}
	c.Put(ctx, "k", want)

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Miss(t *testing.T) {
	c := New[int64, string]("test")

	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
}

func TestCache_Unbounded(t *testing.T) {
	ctx := context.Background()
	c := New[int, int]("test")

	for i := 0; i < 5000; i++ {
		c.Put(ctx, i, i)
	}

	assert.Equal(t, 5000, c.Len())
	v, ok := c.Get(ctx, 0)
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestCache_BoundedEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := New[string, int]("test", WithMaxEntries(2))

	c.Put(ctx, "a", 1)
	c.Put(ctx, "b", 2)
	_, _ = c.Get(ctx, "a")
	c.Put(ctx, "c", 3)

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.Equal(t, 2, c.Len())
}

func TestCache_StoreWriteThroughAndReload(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	first := New[string, payload]("app:session:variable_list", WithStore(store))
	first.Put(ctx, "fp", payload{Name: "a", Items: []string{"x"}})
	assert.Equal(t, 1, store.saves)

	second := New[string, payload]("app:session:variable_list", WithStore(store))
	got, ok := second.Get(ctx, "fp")
	require.True(t, ok)
	assert.Equal(t, payload{Name: "a", Items: []string{"x"}}, got)
	assert.Equal(t, 1, second.Len())
}

func TestCache_NamespacesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	source := New[string, string](PersistenceKey("codevar", "s1", "source_code"), WithStore(store))
	vars := New[string, string](PersistenceKey("codevar", "s1", "variable_list"), WithStore(store))

	source.Put(ctx, "1", "code")

	_, ok := vars.Get(ctx, "1")
	assert.False(t, ok)
}

func TestCache_StoreErrorsAreNotFatal(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.err = errors.New("disk full")

	c := New[string, string]("test", WithStore(store))
	c.Put(ctx, "k", "v")

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestCache_Purge(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	c := New[string, string]("ns", WithStore(store))

	c.Put(ctx, "k", "v")
	require.NoError(t, c.Purge(ctx))

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestPersistenceKey(t *testing.T) {
	assert.Equal(t, "codevar:abc:source_code", PersistenceKey("codevar", "abc", "source_code"))
}
