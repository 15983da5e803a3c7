package download

import (
	"hash/fnv"
	"strconv"
)

// JobKey derives the deterministic job key for a source URL. The same URL
// always yields the same key, so repeated submissions deduplicate
// naturally and pause/cancel requests can address a specific in-flight
// job.
func JobKey(sourceURL string) string {
	h := fnv.New64a()
	h.Write([]byte(sourceURL))
	return strconv.FormatUint(h.Sum64(), 10)
}
