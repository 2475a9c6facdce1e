// Package config loads bulkfs configuration from YAML files and BULKFS_
// environment variables.
package config

// Default configuration values.
const (
	// DefaultOutput is the output format when none is configured.
	DefaultOutput = "pretty"

	// DefaultSortField orders listings by name.
	DefaultSortField = "name"

	// DefaultSortOrder orders listings ascending.
	DefaultSortOrder = "asc"

	// DefaultRetentionDays is how long journal entries are kept.
	DefaultRetentionDays = 30

	// DefaultSearchLimit caps search results.
	DefaultSearchLimit = 200
)

// DefaultIgnoreSuffixes are hidden from listings unless overridden.
var DefaultIgnoreSuffixes = []string{}

// SortFields are the accepted values of sort.field.
var SortFields = []string{"name", "modified", "size"}

// SortOrders are the accepted values of sort.order.
var SortOrders = []string{"asc", "desc"}
