package keygen

import (
	"encoding/pem"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerateRSAKeyPair(t *testing.T) {
	t.Parallel()

	pair, err := GenerateRSAKeyPair(2048)
	require.NoError(t, err)

	block, _ := pem.Decode(pair.PrivateKey)
	require.NotNil(t, block)
	assert.Equal(t, "RSA PRIVATE KEY", block.Type)
	assert.True(t, strings.HasPrefix(string(pair.PublicKey), "ssh-rsa "))

	pub, _, _, _, err := ssh.ParseAuthorizedKey(pair.PublicKey)
	require.NoError(t, err)

	signer, err := pair.Signer()
	require.NoError(t, err)
	assert.Equal(t, pub.Marshal(), signer.PublicKey().Marshal())
}

func TestGenerateRSAKeyPair_InvalidBits(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{0, -1} {
		_, err := GenerateRSAKeyPair(bits)
		assert.Error(t, err, "bits=%d", bits)
	}
}

func TestWriteIdentityFile(t *testing.T) {
	t.Parallel()

	pair, err := GenerateRSAKeyPair(2048)
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := pair.WriteIdentityFile(dir, "id_rsa")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pair.PrivateKey, data)

	pub, err := os.ReadFile(path + ".pub")
	require.NoError(t, err)
	assert.Equal(t, pair.PublicKey, pub)
}
