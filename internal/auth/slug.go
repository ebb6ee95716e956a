package auth

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const slugSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Slugify lowercases the name and collapses everything outside a-z0-9 into
// single hyphens. ASCII only, so slugs are safe in URLs and QR codes without
// encoding.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// NewSlug builds a URL slug for a restaurant: the slugified name plus a random
// five-character suffix, so two restaurants with the same name get distinct
// public URLs.
func NewSlug(name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "restaurant"
	}
	suffix := make([]byte, 5)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugSuffixAlphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = slugSuffixAlphabet[n.Int64()]
	}
	return base + "-" + string(suffix), nil
}
