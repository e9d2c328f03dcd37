package imagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
)

// Fingerprint computes dep_hash = sha256(sorted(deps) || skip flag ||
// dockerfile bytes) (§4.2). Sorting the dependency list before hashing
// means Resolve's first-occurrence ordering (recipe.DepMap.Resolve)
// doesn't leak into cache-key stability — two recipes naming the same
// packages in different orders must hit the same cache entry.
func Fingerprint(deps []string, skipDefaultDeps bool, dockerfile []byte) string {
	sorted := append([]string(nil), deps...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, d := range sorted {
		h.Write([]byte(d))
		h.Write([]byte{0})
	}
	h.Write([]byte(strconv.FormatBool(skipDefaultDeps)))
	h.Write(dockerfile)

	return hex.EncodeToString(h.Sum(nil))
}
