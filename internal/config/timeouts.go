package config

import (
	"os"
	"strconv"
	"time"

	"github.com/imamik/hdpctl/internal/cluster"
	"github.com/imamik/hdpctl/internal/platform/ssh"
)

// Timeouts holds the waits and retry bounds of a run.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval        time.Duration // Delay between instance state polls
	PollTimeout         time.Duration // Ceiling on waiting for pending instances, 0 waits forever
	Settle              time.Duration // Extra wait after convergence during configuration
	SSHRetries          int           // Retries after the first failed remote command
	SSHRetryDelay       time.Duration // Fixed delay between remote command attempts
	SSHDialTimeout      time.Duration // Timeout for establishing an SSH connection
	GroupDeleteAttempts int           // Attempts to delete one group on destroy --delete-groups
	GroupDeleteDelay    time.Duration // Delay between group delete attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - HDPCTL_POLL_INTERVAL (default: 5s)
//   - HDPCTL_POLL_TIMEOUT (default: 15m)
//   - HDPCTL_SETTLE (default: 90s)
//   - HDPCTL_SSH_RETRIES (default: 2)
//   - HDPCTL_SSH_RETRY_DELAY (default: 30s)
//   - HDPCTL_SSH_DIAL_TIMEOUT (default: 10s)
//   - HDPCTL_GROUP_DELETE_ATTEMPTS (default: 3)
//   - HDPCTL_GROUP_DELETE_DELAY (default: 30s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:        parseDuration("HDPCTL_POLL_INTERVAL", cluster.DefaultPollInterval),
		PollTimeout:         parseDuration("HDPCTL_POLL_TIMEOUT", cluster.DefaultPollTimeout),
		Settle:              parseDuration("HDPCTL_SETTLE", cluster.DefaultConfigureSettle),
		SSHRetries:          parseInt("HDPCTL_SSH_RETRIES", ssh.DefaultRetries),
		SSHRetryDelay:       parseDuration("HDPCTL_SSH_RETRY_DELAY", 30*time.Second),
		SSHDialTimeout:      parseDuration("HDPCTL_SSH_DIAL_TIMEOUT", 10*time.Second),
		GroupDeleteAttempts: parseInt("HDPCTL_GROUP_DELETE_ATTEMPTS", cluster.DefaultGroupDeleteAttempts),
		GroupDeleteDelay:    parseDuration("HDPCTL_GROUP_DELETE_DELAY", 30*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
