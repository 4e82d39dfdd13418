package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hdpctl/internal/cluster"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN", "AWS_PROFILE", "HCLOUD_TOKEN"} {
		t.Setenv(v, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "")
}

func TestLoadCredentials_AWSStatic(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	creds, err := LoadCredentials(ProviderAWS)
	require.NoError(t, err)
	assert.True(t, creds.Static())
	assert.Equal(t, "AKIAEXAMPLE", creds.AWSAccessKeyID)
	assert.Empty(t, creds.AWSSharedFile)
}

func TestLoadCredentials_AWSSharedFile(t *testing.T) {
	clearCredentialEnv(t)
	file := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(file, []byte("[default]\n"), 0o600))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", file)
	t.Setenv("AWS_PROFILE", "hadoop")

	creds, err := LoadCredentials(ProviderAWS)
	require.NoError(t, err)
	assert.False(t, creds.Static())
	assert.Equal(t, file, creds.AWSSharedFile)
	assert.Equal(t, "hadoop", creds.AWSProfile)
}

func TestLoadCredentials_AWSMissing(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "only-half")

	_, err := LoadCredentials(ProviderAWS)
	var cfgErr *cluster.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "credentials", cfgErr.Field)
	assert.Contains(t, err.Error(), "AWS_SECRET_ACCESS_KEY")
}

func TestLoadCredentials_Hetzner(t *testing.T) {
	clearCredentialEnv(t)

	_, err := LoadCredentials(ProviderHetzner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HCLOUD_TOKEN")

	t.Setenv("HCLOUD_TOKEN", "token")
	creds, err := LoadCredentials(ProviderHetzner)
	require.NoError(t, err)
	assert.Equal(t, "token", creds.HCloudToken)
}
