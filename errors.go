package esdex

import (
	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/query"
	"github.com/kailas-cloud/esdex/internal/repository/document"
	"github.com/kailas-cloud/esdex/internal/resource"
)

// Sentinel errors re-exported from the internal layers.
// Use errors.Is() to check.
var (
	// ErrInvalidSearchString marks a free-text query the engine could
	// not parse; surface it as a bad request, never retry it.
	ErrInvalidSearchString = engine.ErrInvalidSearch
	// ErrInvalidWhere marks a where clause that neither JSON decoding
	// nor the configured where parser accepted.
	ErrInvalidWhere = query.ErrInvalidWhere
	// ErrMissingID marks a Remove lookup without an identifier.
	ErrMissingID = document.ErrMissingID
	// ErrUnknownResource marks an operation on a name nothing was
	// registered under.
	ErrUnknownResource = resource.ErrUnknown
	// ErrNotFound marks a missing document where absence is an error,
	// such as Update on a deleted id.
	ErrNotFound = engine.ErrNotFound
)
