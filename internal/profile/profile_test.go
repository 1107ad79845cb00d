package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileDefaults(t *testing.T) {
	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "memory", p.Storage)
	assert.Equal(t, "redis://localhost:6379/0", p.RedisURL)
	assert.Empty(t, p.WebhookURL)
}

func TestProfileFromEnv(t *testing.T) {
	t.Setenv("MAXBOT_TOKEN", "secret")
	t.Setenv("MAXBOT_STORAGE", "redis")
	t.Setenv("MAXBOT_POLL_TIMEOUT", "45")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "secret", p.Token)
	assert.Equal(t, "redis", p.Storage)
	assert.Equal(t, 45, p.PollTimeout)
}

func TestValidate(t *testing.T) {
	p := &Profile{Mode: "prod", Token: "secret", Storage: "memory"}
	require.NoError(t, p.Validate())

	missing := &Profile{Mode: "dev", Storage: "memory"}
	require.Error(t, missing.Validate())

	badStorage := &Profile{Mode: "dev", Token: "secret", Storage: "etcd"}
	require.Error(t, badStorage.Validate())
}

func TestValidateFallsBackToDevMode(t *testing.T) {
	p := &Profile{Mode: "staging", Token: "secret", Storage: "memory"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "dev", p.Mode)
	assert.True(t, p.IsDev())
}
