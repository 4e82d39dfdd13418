package hcloud

import (
	"errors"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/hdpctl/internal/cloud"
)

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// wrap classifies an hcloud error for op.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isHCloudErrorCode(err, hcloud.ErrorCodeNotFound):
		return cloud.NewError(op, cloud.KindNotFound, err)
	case isHCloudErrorCode(err, hcloud.ErrorCodeUniquenessError):
		return cloud.NewError(op, cloud.KindDuplicate, err)
	case isHCloudErrorCode(err, hcloud.ErrorCodeResourceInUse):
		return cloud.NewError(op, cloud.KindDependency, err)
	default:
		return cloud.NewError(op, cloud.KindOther, err)
	}
}

func notFound(op, what string) error {
	return cloud.NewError(op, cloud.KindNotFound, errors.New(what+" not found"))
}

func unsupported(op, what string) error {
	return cloud.NewError(op, cloud.KindUnsupported, errors.New(what+" are not supported on hetzner"))
}
