package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		}),
		PublicKey: ssh.MarshalAuthorizedKey(pub),
	}, nil
}

// Signer parses the private half into an ssh.Signer.
func (k *KeyPair) Signer() (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(k.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}

// WriteIdentityFile writes the private key to dir/name with 0600
// permissions and the public key next to it with a .pub suffix. It
// returns the private key path.
func (k *KeyPair) WriteIdentityFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, k.PrivateKey, 0o600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(path+".pub", k.PublicKey, 0o644); err != nil { //nolint:gosec // public key
		return "", fmt.Errorf("failed to write public key: %w", err)
	}
	return path, nil
}
