package codevar

import "github.com/helixml/codevar/application/service"

// Errors returned by the client.
var (
	ErrClientClosed = service.ErrClientClosed
	ErrEmptyQuery   = service.ErrEmptyQuery
)
