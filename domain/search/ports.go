package search

import (
	"context"

	"github.com/helixml/codevar/domain/variable"
)

// Translator turns a non-Latin query into English keywords. ok is false
// when the backend had no translation to offer.
type Translator interface {
	Translate(ctx context.Context, text string) (t Translation, ok bool, err error)
}

// RemoteIndex is the remote code search service.
type RemoteIndex interface {
	Search(ctx context.Context, req Request) ([]variable.RepoRef, error)
	FetchSource(ctx context.Context, id int64) (string, error)
}
