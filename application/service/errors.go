package service

import "errors"

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("codevar: client is closed")

	// ErrEmptyQuery indicates a search value that is blank after normalisation.
	ErrEmptyQuery = errors.New("codevar: empty query")

	// ErrNoTranslation indicates the translator had no result for a query.
	ErrNoTranslation = errors.New("codevar: no translation")
)
