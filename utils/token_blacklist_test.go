package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlacklistTokenRevokesUntilExpiry(t *testing.T) {
	mr.FlushAll()

	token := "some.jwt.token"
	assert.False(t, IsTokenBlacklisted(token))

	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))

	mr.FastForward(2 * time.Hour)
	assert.False(t, IsTokenBlacklisted(token))
}

func TestBlacklistIgnoresAlreadyExpiredTokens(t *testing.T) {
	mr.FlushAll()

	BlacklistToken("expired.jwt", time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted("expired.jwt"))
}

func TestOAuthStateIsSingleUse(t *testing.T) {
	mr.FlushAll()

	SaveState("state-abc", 10*time.Minute)
	assert.True(t, ConsumeState("state-abc"))
	assert.False(t, ConsumeState("state-abc"))
	assert.False(t, ConsumeState("never-saved"))
}
