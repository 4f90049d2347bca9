package errors

type Code string

const (
	CodeUnknown  Code = "UNKNOWN"
	CodeInternal Code = "INTERNAL_ERROR"

	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeDesiredReadError Code = "DESIRED_STATE_READ_ERROR"
	CodeDesiredParse     Code = "DESIRED_STATE_PARSE_ERROR"

	// Referenced entity, zone, group or resource could not be resolved by name.
	CodeLookupFailed Code = "LOOKUP_FAILED"

	// Remote call failures. Never retried.
	CodeTransport         Code = "TRANSPORT_ERROR"
	CodeRemoteAuth        Code = "REMOTE_AUTH_ERROR"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	CodeRemoteRejected    Code = "REMOTE_REJECTED"

	// Authentication validation after a mutation.
	CodeValidationFailed  Code = "AUTH_VALIDATION_FAILED"
	CodeValidationTimeout Code = "AUTH_VALIDATION_TIMEOUT"

	// At least one entry failed to converge.
	CodeReconcileFailed Code = "RECONCILE_FAILED"

	CodeCloudCredentials Code = "CLOUD_CREDENTIALS_ERROR"
	CodeNotImplemented   Code = "NOT_IMPLEMENTED"
)

func (c Code) String() string {
	return string(c)
}
