package bookmark

import (
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"
)

// HashLength is the length of a permalink hash.
const HashLength = 6

// SmallHash maps a creation date and id to the 6-character permalink
// identifier. The hash is deterministic and opaque: SHA-256 over the
// serialized date plus id, truncated to 4 bytes and URL-safe
// base64-encoded (no padding), which yields exactly 6 characters from
// the set [a-zA-Z0-9_-].
//
// It is not invertible and not meant to be: permalinks only need
// stability and practical collision resistance within one collection.
func SmallHash(created time.Time, id int) string {
	payload := created.Format(DateFormat) + strconv.Itoa(id)
	sum := sha256.Sum256([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(sum[:4])
}
