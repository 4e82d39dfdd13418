package ssh

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hdpctl/internal/util/keygen"
)

func generateTestKey(t *testing.T) *keygen.KeyPair {
	t.Helper()
	pair, err := keygen.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	return pair
}

func TestLoadIdentity(t *testing.T) {
	t.Parallel()
	pair := generateTestKey(t)
	path, err := pair.WriteIdentityFile(t.TempDir(), "cluster.pem")
	require.NoError(t, err)

	id, err := LoadIdentity("ec2-user", path)
	require.NoError(t, err)
	assert.Equal(t, "ec2-user", id.User)
	assert.Equal(t, path, id.KeyFile)

	root := id.As("root")
	assert.Equal(t, "root", root.User)
	assert.Equal(t, "ec2-user", id.User)
	assert.Equal(t, id.PrivateKey, root.PrivateKey)
}

func TestLoadIdentity_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0o600))

	_, err := LoadIdentity("root", filepath.Join(dir, "missing"))
	assert.ErrorContains(t, err, "failed to read identity file")

	_, err = LoadIdentity("root", garbage)
	assert.ErrorContains(t, err, "failed to parse private key")

	_, err = LoadIdentity("", garbage)
	assert.ErrorContains(t, err, "user cannot be empty")
}

func TestGophDialer_Defaults(t *testing.T) {
	t.Parallel()
	d := NewGophDialer(0)
	assert.Equal(t, uint(22), d.Port)
	assert.Equal(t, defaultDialTimeout, d.Timeout)
	assert.Equal(t, 3*time.Second, NewGophDialer(3*time.Second).Timeout)
}

func TestGophDialer_RejectsBadKeyBeforeDialing(t *testing.T) {
	t.Parallel()
	_, err := NewGophDialer(time.Second).Dial(context.Background(), "192.0.2.1", Identity{User: "root"})
	assert.ErrorContains(t, err, "private key cannot be empty")
}
