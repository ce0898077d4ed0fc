package entry

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// idSuffixLen is the length of the random base36 suffix in an entry id.
const idSuffixLen = 7

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID generates a sort key of the form "{PREFIX}#{unixMillis}#{rand}".
// The millisecond timestamp is fixed-width for the foreseeable future, so
// lexicographic order on the key equals creation order within a prefix. The
// random suffix makes collisions effectively impossible; creates still guard
// with a conditional write.
func NewID(entityType EntityType, now time.Time) string {
	var b strings.Builder
	b.WriteString(entityType.Schema().StoragePrefix)
	b.WriteByte('#')
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('#')
	for i := 0; i < idSuffixLen; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return b.String()
}

// ParseID splits an entry id into its entity type and creation time.
func ParseID(id string) (EntityType, time.Time, error) {
	parts := strings.SplitN(id, "#", 3)
	if len(parts) != 3 || len(parts[2]) != idSuffixLen {
		return "", time.Time{}, fmt.Errorf("malformed entry id: %q", id)
	}
	var entityType EntityType
	for _, t := range AllEntityTypes() {
		if t.Schema().StoragePrefix == parts[0] {
			entityType = t
			break
		}
	}
	if entityType == "" {
		return "", time.Time{}, &UnknownEntityTypeError{Name: parts[0]}
	}
	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed entry id timestamp: %q", id)
	}
	return entityType, time.UnixMilli(millis).UTC(), nil
}

// IDPrefix returns the sort-key prefix used to scope queries to one entity
// type, including the trailing separator.
func IDPrefix(entityType EntityType) string {
	return entityType.Schema().StoragePrefix + "#"
}
