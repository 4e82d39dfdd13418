package config

import (
	"os"
	"path/filepath"

	"github.com/imamik/hdpctl/internal/cluster"
)

// Credentials are the provider secrets found in the environment.
type Credentials struct {
	// AWS static keys, set when both variables are present.
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSSessionToken    string
	// AWSSharedFile is the shared credentials file used when no static
	// keys are set. AWSProfile selects the profile inside it.
	AWSSharedFile string
	AWSProfile    string

	HCloudToken string
}

// Static reports whether AWS keys came from the environment.
func (c Credentials) Static() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// LoadCredentials reads the secrets of provider. AWS accepts
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or a shared credentials
// file at AWS_SHARED_CREDENTIALS_FILE or ~/.aws/credentials. Hetzner
// needs HCLOUD_TOKEN.
func LoadCredentials(provider string) (Credentials, error) {
	switch provider {
	case ProviderHetzner:
		token := os.Getenv("HCLOUD_TOKEN")
		if token == "" {
			return Credentials{}, &cluster.ConfigurationError{Field: "credentials", Reason: "HCLOUD_TOKEN must be set"}
		}
		return Credentials{HCloudToken: token}, nil

	default:
		creds := Credentials{
			AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			AWSSessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			AWSProfile:         os.Getenv("AWS_PROFILE"),
		}
		if creds.Static() {
			return creds, nil
		}
		if file := sharedCredentialsFile(); file != "" {
			creds.AWSSharedFile = file
			return creds, nil
		}
		return Credentials{}, &cluster.ConfigurationError{
			Field:  "credentials",
			Reason: "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set, or a shared credentials file must exist",
		}
	}
}

func sharedCredentialsFile() string {
	path := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, ".aws", "credentials")
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
