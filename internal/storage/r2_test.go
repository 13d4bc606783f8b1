package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/menu/a.png", PublicURL("https://cdn.example.com", "menu/a.png"))
	assert.Equal(t, "https://cdn.example.com/menu/a.png", PublicURL("https://cdn.example.com/", "/menu/a.png"))
}

func TestR2ConfigFromEnv(t *testing.T) {
	t.Run("missing variables disable storage", func(t *testing.T) {
		t.Setenv("R2_ENDPOINT", "")
		t.Setenv("R2_ACCESS_KEY", "key")
		t.Setenv("R2_SECRET_KEY", "secret")
		t.Setenv("R2_BUCKET_NAME", "menu")
		t.Setenv("R2_PUBLIC_BASE_URL", "https://cdn.example.com")

		_, err := R2ConfigFromEnv()
		require.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("all variables set", func(t *testing.T) {
		t.Setenv("R2_ENDPOINT", "https://acct.r2.cloudflarestorage.com")
		t.Setenv("R2_ACCESS_KEY", "key")
		t.Setenv("R2_SECRET_KEY", "secret")
		t.Setenv("R2_BUCKET_NAME", "menu")
		t.Setenv("R2_PUBLIC_BASE_URL", "https://cdn.example.com")

		cfg, err := R2ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "menu", cfg.Bucket)
		assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.Endpoint)
	})
}
