package queue

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	idSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idSuffixLength   = 9
)

// NewJobID generates a unique job identifier of the form
// {kind}-{epochMillis}-{randomSuffix}. The timestamp plus random suffix
// makes collisions within one process overwhelmingly unlikely while
// keeping IDs greppable by kind and roughly sortable by creation time.
func NewJobID(kind string) string {
	var suffix strings.Builder
	suffix.Grow(idSuffixLength)
	for range idSuffixLength {
		suffix.WriteByte(idSuffixAlphabet[rand.IntN(len(idSuffixAlphabet))])
	}
	return fmt.Sprintf("%s-%d-%s", kind, time.Now().UnixMilli(), suffix.String())
}
