package ec2

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/imamik/hdpctl/internal/cloud"
)

// EC2 API error codes the orchestrator reacts to.
var (
	notFoundCodes = []string{
		"InvalidGroup.NotFound",
		"InvalidGroupId.NotFound",
		"InvalidAMIID.NotFound",
		"InvalidAMIID.Malformed",
		"InvalidAMIID.Unavailable",
		"InvalidInstanceID.NotFound",
	}
	duplicateCodes = []string{
		"InvalidGroup.Duplicate",
		"InvalidPermission.Duplicate",
	}
	dependencyCodes = []string{
		"DependencyViolation",
		"InvalidGroup.InUse",
	}
)

// isAPIErrorCode checks if the error is an EC2 API error with one of the given codes.
func isAPIErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
	}
	return false
}

// wrap classifies an SDK error for op.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isAPIErrorCode(err, notFoundCodes...):
		return cloud.NewError(op, cloud.KindNotFound, err)
	case isAPIErrorCode(err, duplicateCodes...):
		return cloud.NewError(op, cloud.KindDuplicate, err)
	case isAPIErrorCode(err, dependencyCodes...):
		return cloud.NewError(op, cloud.KindDependency, err)
	default:
		return cloud.NewError(op, cloud.KindOther, err)
	}
}
