package variable

import (
	"strings"
	"sync"
)

// indexKeyPrefix keeps keyword entries apart from any reserved names.
const indexKeyPrefix = "__"

// RepoIndex maps lowercase keywords to the distinct repositories that
// produced them. It only grows.
type RepoIndex struct {
	mu      sync.RWMutex
	entries map[string][]RepoRef
}

// NewRepoIndex creates an empty RepoIndex.
func NewRepoIndex() *RepoIndex {
	return &RepoIndex{entries: make(map[string][]RepoRef)}
}

func indexKey(keyword string) string {
	return indexKeyPrefix + strings.ToLower(keyword)
}

// Record adds repo under keyword unless a repo with the same ID is already
// listed. Link-like and overlong keywords are ignored.
func (i *RepoIndex) Record(keyword string, repo RepoRef) {
	if !Indexable(keyword) {
		return
	}
	key := indexKey(keyword)

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, existing := range i.entries[key] {
		if existing.ID == repo.ID {
			return
		}
	}
	i.entries[key] = append(i.entries[key], repo)
}

// Lookup returns a copy of the repositories recorded for keyword.
func (i *RepoIndex) Lookup(keyword string) []RepoRef {
	i.mu.RLock()
	defer i.mu.RUnlock()

	repos := i.entries[indexKey(keyword)]
	result := make([]RepoRef, len(repos))
	copy(result, repos)
	return result
}

// Len returns the number of distinct keywords recorded.
func (i *RepoIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}
