package cache

import (
	"strconv"
	"strings"
)

// Key joins a logical resource name and its parameters into a cache key.
// The separator is opaque to the cache itself; it only has to be consistent
// between the writer and the reader of a key.
func Key(parts ...string) string { return strings.Join(parts, "|") }

// PageKey builds the conventional key for one page of a paginated resource,
// so that every (page, per_page) combination caches independently.
func PageKey(resource string, page, perPage int) string {
	return Key(resource, "page="+strconv.Itoa(page), "per_page="+strconv.Itoa(perPage))
}
