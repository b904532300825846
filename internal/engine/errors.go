package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for engine operations.
var (
	// ErrNotFound reports a missing document on get/delete.
	ErrNotFound = errors.New("engine: not found")
	// ErrInvalidSearch reports a search string the engine (or the where
	// parser) rejected. Callers translate it to a bad-request condition.
	ErrInvalidSearch = errors.New("engine: invalid search string")
)

// Op constants name engine endpoints for error context and metrics labels.
const (
	OpPing          = "ping"
	OpSearch        = "search"
	OpCount         = "count"
	OpGet           = "get"
	OpMGet          = "mget"
	OpIndex         = "index"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpBulk          = "bulk"
	OpCreateIndex   = "indices.create"
	OpDeleteIndex   = "indices.delete"
	OpIndexExists   = "indices.exists"
	OpPutAlias      = "indices.put_alias"
	OpGetAlias      = "indices.get_alias"
	OpUpdateAliases = "indices.update_aliases"
	OpGetMapping    = "indices.get_mapping"
	OpPutMapping    = "indices.put_mapping"
	OpGetSettings   = "indices.get_settings"
	OpPutSettings   = "indices.put_settings"
	OpCloseIndex    = "indices.close"
	OpOpenIndex     = "indices.open"
	OpRefresh       = "indices.refresh"
	OpReindex       = "reindex"
)

// Error is a transport-level engine rejection with the machine-readable
// status and error category the engine reported.
type Error struct {
	Op         string
	StatusCode int
	Type       string
	Reason     string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("engine: %s: [%d] %s: %s", e.Op, e.StatusCode, e.Type, e.Reason)
	}
	return fmt.Sprintf("engine: %s: [%d] %s", e.Op, e.StatusCode, e.Type)
}

// AsError extracts a typed engine error from an error chain.
func AsError(err error) (*Error, bool) {
	var ee *Error
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// IsStatus reports whether err is an engine rejection with the given
// HTTP status code.
func IsStatus(err error, code int) bool {
	ee, ok := AsError(err)
	return ok && ee.StatusCode == code
}

// IsNotFound reports a missing document, index or alias.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return IsStatus(err, 404)
}

// IsAlreadyExists reports an index or alias creation that lost to an
// earlier one. Index creation treats it as success.
func IsAlreadyExists(err error) bool {
	ee, ok := AsError(err)
	if !ok {
		return false
	}
	if strings.Contains(ee.Type, "already_exists_exception") {
		return true
	}
	return ee.StatusCode == 400 && strings.Contains(ee.Reason, "already exists")
}

// IsMissingMapping reports the legacy "queried a field with no mapping"
// rejection, which the layer treats as an empty result set.
func IsMissingMapping(err error) bool {
	ee, ok := AsError(err)
	if !ok || ee.StatusCode != 400 {
		return false
	}
	return strings.Contains(ee.Reason, "No mapping found for") ||
		strings.Contains(ee.Type, "No mapping found for")
}

// IsIndexMissing reports a search against an index that does not exist
// yet, the modern shape of "resource queried before it was populated".
func IsIndexMissing(err error) bool {
	ee, ok := AsError(err)
	if !ok {
		return false
	}
	return ee.Type == "index_not_found_exception" || ee.StatusCode == 404
}

// IsSearchParse reports a query the engine could not parse.
func IsSearchParse(err error) bool {
	ee, ok := AsError(err)
	if !ok || ee.StatusCode != 400 {
		return false
	}
	for _, marker := range []string{
		"SearchParseException",
		"search_phase_execution_exception",
		"parsing_exception",
		"query_shard_exception",
	} {
		if strings.Contains(ee.Type, marker) || strings.Contains(ee.Reason, marker) {
			return true
		}
	}
	return false
}

// IsRoutingMissing reports a by-id fetch that the engine rejected because
// the document requires routing information the caller did not supply.
func IsRoutingMissing(err error) bool {
	ee, ok := AsError(err)
	if !ok {
		return false
	}
	return strings.Contains(ee.Type, "routing_missing_exception") ||
		strings.Contains(ee.Reason, "routing_missing_exception") ||
		strings.Contains(ee.Type, "RoutingMissingException") ||
		strings.Contains(ee.Reason, "RoutingMissingException")
}
