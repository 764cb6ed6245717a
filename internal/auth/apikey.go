package auth

import "crypto/hmac"

// VerifyAPIKey compares a presented key against the configured one in
// constant time.
func VerifyAPIKey(expected, candidate string) bool {
	if expected == "" || candidate == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(candidate))
}
