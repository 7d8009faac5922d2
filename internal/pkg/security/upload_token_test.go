package security_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/internal/pkg/security"
)

func TestUploadTokenRoundTrip(t *testing.T) {
	token, err := security.GenerateUploadToken(42, 7, 5<<20, time.Minute, "test-secret")
	require.NoError(t, err)

	claims, err := security.VerifyUploadToken(token, "test-secret")
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, uint(7), claims.ResumeID)
	assert.Equal(t, int64(5<<20), claims.MaxBytes)
}

func TestUploadTokenRejectsTampering(t *testing.T) {
	token, err := security.GenerateUploadToken(42, 7, 1024, time.Minute, "test-secret")
	require.NoError(t, err)

	parts := strings.SplitN(token, ".", 2)
	require.Len(t, parts, 2)

	// Payload swapped for a different one keeps the old signature invalid
	forged, err := security.GenerateUploadToken(99, 7, 1024, time.Minute, "test-secret")
	require.NoError(t, err)
	forgedParts := strings.SplitN(forged, ".", 2)

	_, err = security.VerifyUploadToken(forgedParts[0]+"."+parts[1], "test-secret")
	assert.Error(t, err)
}

func TestUploadTokenRejectsWrongSecret(t *testing.T) {
	token, err := security.GenerateUploadToken(42, 7, 1024, time.Minute, "test-secret")
	require.NoError(t, err)

	_, err = security.VerifyUploadToken(token, "other-secret")
	assert.Error(t, err)
}

func TestUploadTokenExpiry(t *testing.T) {
	token, err := security.GenerateUploadToken(42, 7, 1024, -time.Minute, "test-secret")
	require.NoError(t, err)

	_, err = security.VerifyUploadToken(token, "test-secret")
	assert.EqualError(t, err, "token expired")
}

func TestUploadTokenRequiresSecret(t *testing.T) {
	_, err := security.GenerateUploadToken(42, 7, 1024, time.Minute, "")
	assert.Error(t, err)

	_, err = security.VerifyUploadToken("a.b", "")
	assert.Error(t, err)
}

func TestUploadTokenRejectsGarbage(t *testing.T) {
	_, err := security.VerifyUploadToken("not-a-token", "test-secret")
	assert.Error(t, err)

	_, err = security.VerifyUploadToken("!!.##", "test-secret")
	assert.Error(t, err)
}
