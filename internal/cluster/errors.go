package cluster

import (
	"fmt"
	"strings"
	"time"
)

// ConfigurationError reports an invalid option before any provider call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ImageNotFoundError reports a machine image that does not resolve.
type ImageNotFoundError struct {
	ImageID string
	Err     error
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("could not find image %s: %v", e.ImageID, e.Err)
}

func (e *ImageNotFoundError) Unwrap() error {
	return e.Err
}

// ClusterAlreadyExistsError reports active instances in a cluster's
// groups when a fresh launch was requested.
type ClusterAlreadyExistsError struct {
	Cluster string
	Masters int
	Workers int
}

func (e *ClusterAlreadyExistsError) Error() string {
	return fmt.Sprintf("cluster %s already has active instances (%d master(s), %d workers); use --resume or destroy it first",
		e.Cluster, e.Masters, e.Workers)
}

// ClusterNotFoundError reports a cluster without both roles present.
type ClusterNotFoundError struct {
	Cluster string
	Masters int
	Workers int
}

func (e *ClusterNotFoundError) Error() string {
	return fmt.Sprintf("could not find an existing cluster %s (%d master(s), %d workers)", e.Cluster, e.Masters, e.Workers)
}

// ProvisioningTimeoutError reports instances still pending at the ceiling.
type ProvisioningTimeoutError struct {
	Timeout time.Duration
	Pending []string
}

func (e *ProvisioningTimeoutError) Error() string {
	return fmt.Sprintf("instances still pending after %v: %s", e.Timeout, strings.Join(e.Pending, ", "))
}
