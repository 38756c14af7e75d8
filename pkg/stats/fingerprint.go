package stats

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-runtime-cache/cache"
)

var fingerprintSerializer = cache.NewDefaultKeySerializer()

// Fingerprint digests a method name and its arguments into a short, stable
// hex string. Call sites use it to build bounded-length cache keys and to
// attribute events to an argument shape without shipping the arguments
// themselves.
func Fingerprint(method string, args ...any) string {
	key := fingerprintSerializer.SerializeKey(method, args...)
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}
