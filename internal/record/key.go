package record

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"go-quality-pipeline/pkg/utils"
)

// tupleKey builds the canonical key of a record over fields. Absent and nil
// values share the null marker; numbers are keyed by value so 1 and 1.0 land
// in the same group.
func tupleKey(r Record, fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		v := r[f]
		switch t := v.(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			// length prefix keeps separators inside values unambiguous
			b.WriteString("s")
			b.WriteString(strconv.Itoa(len(t)))
			b.WriteByte(':')
			b.WriteString(t)
		case bool:
			b.WriteString("b:")
			b.WriteString(strconv.FormatBool(t))
		default:
			if n, ok := utils.Numeric(v); ok {
				b.WriteString("n:")
				b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
			} else {
				b.WriteString("v:")
				b.WriteString(Stringify(v))
			}
		}
	}
	return b.String()
}

// keyIndex assigns dense slot numbers to tuple keys. Keys are bucketed by
// their xxh3 hash and compared in full, so colliding hashes never merge
// distinct tuples.
type keyIndex struct {
	buckets map[uint64][]int
	keys    []string
}

func newKeyIndex(capacity int) *keyIndex {
	return &keyIndex{buckets: make(map[uint64][]int, capacity)}
}

// slot returns the slot for key and whether it was newly created.
func (ix *keyIndex) slot(key string) (int, bool) {
	h := xxh3.HashString(key)
	for _, s := range ix.buckets[h] {
		if ix.keys[s] == key {
			return s, false
		}
	}
	s := len(ix.keys)
	ix.keys = append(ix.keys, key)
	ix.buckets[h] = append(ix.buckets[h], s)
	return s, true
}

func (ix *keyIndex) len() int { return len(ix.keys) }
