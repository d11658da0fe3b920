package models

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
)

const caseNumberSpace = 1_000_000

var caseNumberPattern = regexp.MustCompile(`^AYU-\d{4}-\d{6}$`)

// GenerateCaseNumber draws a random AYU-<year>-<6 digits> number from r, or
// from crypto/rand when r is nil. Collisions are possible and are resolved
// by the caller retrying on a uniqueness conflict.
func GenerateCaseNumber(year int, r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, big.NewInt(caseNumberSpace))
	if err != nil {
		return "", fmt.Errorf("draw case number: %w", err)
	}
	return fmt.Sprintf("AYU-%04d-%06d", year, n.Int64()), nil
}

func IsCaseNumber(s string) bool {
	return caseNumberPattern.MatchString(s)
}
