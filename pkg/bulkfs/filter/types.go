// Package filter decides which directory entries are shown by listings and
// search: hidden dot-files, ignored suffixes and excluded glob patterns.
// It also parses the sort settings those views share.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// SortField specifies the field entries are ordered by.
type SortField int

const (
	// SortName orders by name, case-insensitively.
	SortName SortField = iota
	// SortModified orders by modification time.
	SortModified
	// SortSize orders by size in bytes.
	SortSize
)

const (
	sortFieldName     = "name"
	sortFieldModified = "modified"
	sortFieldSize     = "size"
)

// String returns the string representation of the sort field.
func (s SortField) String() string {
	switch s {
	case SortModified:
		return sortFieldModified
	case SortSize:
		return sortFieldSize
	default:
		return sortFieldName
	}
}

// ErrInvalidSortField indicates that the sort field string could not be parsed.
var ErrInvalidSortField = errors.New("invalid sort field")

// ParseSortField parses "name", "modified" or "size" (case-insensitive).
// An empty string means SortName.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case sortFieldName, "":
		return SortName, nil
	case sortFieldModified, "mtime", "date":
		return SortModified, nil
	case sortFieldSize:
		return SortSize, nil
	default:
		return SortName, fmt.Errorf("%w: %q (valid: name, modified, size)", ErrInvalidSortField, s)
	}
}

// ErrInvalidSortOrder indicates that the sort order string could not be parsed.
var ErrInvalidSortOrder = errors.New("invalid sort order")

// ParseDescending parses "asc" or "desc" into whether the order is descending.
func ParseDescending(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q (valid: asc, desc)", ErrInvalidSortOrder, s)
	}
}

// ParseSuffixes splits a comma-separated suffix list such as ".tmp, .log".
// Blank items are dropped.
func ParseSuffixes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
