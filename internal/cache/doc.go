// Package cache implements the request cache: a string-keyed map of fetched
// results stamped with their write time.
//
// Validity is decided by the reader. Get takes the TTL at call time and treats
// entries older than it as absent; expired entries stay in place until the next
// Set overwrites them or an explicit Invalidate removes them.
package cache
