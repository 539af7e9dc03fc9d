package ddb

import (
	"clientsvc/internal/types"
	"errors"

	"github.com/aws/smithy-go"
)

// Client-fault codes that still mean the table could not serve the request right now.
var unavailableCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"RequestLimitExceeded":                   true,
	"ThrottlingException":                    true,
	"LimitExceededException":                 true,
	"ResourceNotFoundException":              true,
	"UnrecognizedClientException":            true,
}

// storageErr maps a DynamoDB failure onto the storage error taxonomy.
// Anything that is not a client-side rejection, including transport errors, is unavailability.
func storageErr(err error, op string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultClient && !unavailableCodes[apiErr.ErrorCode()] {
		return types.Err(types.ErrStorageRejected, err, "dynamodb %s", op)
	}
	return types.Err(types.ErrStorageUnavailable, err, "dynamodb %s", op)
}
