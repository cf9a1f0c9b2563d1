package epg

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData marks a (channel, window) pair the upstream returned nothing
	// usable for. The window is skipped and processing continues.
	ErrNoData = errors.New("no data for this window")

	// ErrFormat marks a payload that does not match the expected shape for
	// its source.
	ErrFormat = errors.New("payload does not match the expected source format")

	// ErrDataIncomplete marks a schedule item whose stop time cannot be
	// inferred. The item is skipped, not silently dropped.
	ErrDataIncomplete = errors.New("schedule item cannot be bounded")
)

// AdapterError reports a required field missing from an upstream listing.
type AdapterError struct {
	Source SourceKind
	Reason string
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter: %s", e.Source, e.Reason)
}
