// Package signature implements HMAC signing for the star/note action
// links embedded in digest emails.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
)

// ErrEmptyKey is returned when signing is attempted without a secret.
var ErrEmptyKey = errors.New("secret key required")

// Generate returns the first 16 hex characters of
// HMAC-SHA256(key, contentID + ":" + date).
func Generate(contentID, date, secretKey string) (string, error) {
	if secretKey == "" {
		return "", ErrEmptyKey
	}

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(contentID + ":" + date))

	return hex.EncodeToString(mac.Sum(nil))[:16], nil
}

// Verify checks a signature in constant time. An empty key always
// fails verification.
func Verify(contentID, date, sig, secretKey string) bool {
	expected, err := Generate(contentID, date, secretKey)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(sig))
}

// ActionURL builds a complete signed link for a star or note action.
// Title and target URL are query-escaped; the other parameters are
// identifiers under our control.
func ActionURL(baseURL, action, contentID, title, targetURL, contentType, date, secretKey string) (string, error) {
	sig, err := Generate(contentID, date, secretKey)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s?id=%s&title=%s&url=%s&type=%s&date=%s&t=%s",
		baseURL, action, contentID,
		url.QueryEscape(title), url.QueryEscape(targetURL),
		contentType, date, sig), nil
}
