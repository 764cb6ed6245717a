package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"link-analytics/internal/auth"
)

func TestVerifyAPIKey(t *testing.T) {
	require.True(t, auth.VerifyAPIKey("secret", "secret"))
	require.False(t, auth.VerifyAPIKey("secret", "wrong"))
	require.False(t, auth.VerifyAPIKey("secret", ""))
	require.False(t, auth.VerifyAPIKey("", ""))
}
