package awscloud

import (
	"errors"

	"github.com/aws/smithy-go"
)

// Error code sets for classifying control-plane failures. EC2 and the
// RDS-style Neptune API spell the same condition differently, so the sets
// cover both families plus OpenSearch.
var (
	notFoundCodes = map[string]struct{}{
		"DBClusterNotFoundFault":            {},
		"DBInstanceNotFound":                {},
		"DBInstanceNotFoundFault":           {},
		"DBParameterGroupNotFound":          {},
		"DBSubnetGroupNotFoundFault":        {},
		"ResourceNotFoundException":         {},
		"InvalidVpcID.NotFound":             {},
		"InvalidSubnetID.NotFound":          {},
		"InvalidGroup.NotFound":             {},
		"InvalidInternetGatewayID.NotFound": {},
		"InvalidRouteTableID.NotFound":      {},
		"InvalidAllocationID.NotFound":      {},
		"InvalidAddress.NotFound":           {},
		"NatGatewayNotFound":                {},
	}

	alreadyExistsCodes = map[string]struct{}{
		"DBClusterAlreadyExistsFault":    {},
		"DBParameterGroupAlreadyExists":  {},
		"DBSubnetGroupAlreadyExists":     {},
		"ResourceAlreadyExistsException": {},
		"InvalidGroup.Duplicate":         {},
		"InvalidPermission.Duplicate":    {},
		"RouteAlreadyExists":             {},
		"Resource.AlreadyAssociated":     {},
	}

	throttleCodes = map[string]struct{}{
		"Throttling":                {},
		"ThrottlingException":       {},
		"RequestLimitExceeded":      {},
		"RequestThrottled":          {},
		"RequestThrottledException": {},
		"TooManyRequestsException":  {},
		"SlowDown":                  {},
	}

	conflictCodes = map[string]struct{}{
		"InvalidDBClusterStateFault":  {},
		"InvalidDBInstanceState":      {},
		"InvalidDBInstanceStateFault": {},
		"DependencyViolation":         {},
		"ResourceInUseException":      {},
		"IncorrectState":              {},
	}
)

func hasCode(err error, codes map[string]struct{}) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	_, ok := codes[apiErr.ErrorCode()]
	return ok
}

// IsNotFound checks if the error indicates the resource does not exist.
// Drives create-vs-reuse branching and tolerant deletes.
func IsNotFound(err error) bool {
	return hasCode(err, notFoundCodes)
}

// IsAlreadyExists checks if the error indicates the resource already exists.
// Create paths treat this as success.
func IsAlreadyExists(err error) bool {
	return hasCode(err, alreadyExistsCodes)
}

// IsThrottle checks if the error is a rate-limiting signal. These are the
// only errors the retry executor treats as transient.
func IsThrottle(err error) bool {
	return hasCode(err, throttleCodes)
}

// IsConflict checks if the error indicates the resource is in a state that
// rejects the requested operation right now.
func IsConflict(err error) bool {
	return hasCode(err, conflictCodes)
}
