package ssh

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// Identity is the credential a command runs under.
type Identity struct {
	User       string
	PrivateKey []byte
	// KeyFile is the path the key was loaded from, if any.
	KeyFile string
}

// LoadIdentity reads a private key file for user.
func LoadIdentity(user, keyFile string) (Identity, error) {
	if user == "" {
		return Identity{}, errors.New("identity user cannot be empty")
	}
	data, err := os.ReadFile(keyFile) //nolint:gosec // key path comes from the -i flag
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read identity file: %w", err)
	}
	id := Identity{User: user, PrivateKey: data, KeyFile: keyFile}
	if _, err := id.Signer(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// As returns a copy of the identity for another user with the same key.
func (i Identity) As(user string) Identity {
	i.User = user
	return i
}

// Signer parses the private key.
func (i Identity) Signer() (ssh.Signer, error) {
	if len(i.PrivateKey) == 0 {
		return nil, errors.New("identity private key cannot be empty")
	}
	signer, err := ssh.ParsePrivateKey(i.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}
