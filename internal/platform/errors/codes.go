// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Ruleset errors
	CodeRulesetEmpty            Code = "RULESET_EMPTY"
	CodeRulesetDuplicateName    Code = "RULESET_DUPLICATE_NAME"
	CodeRulesetUnknownAttribute Code = "RULESET_UNKNOWN_ATTRIBUTE"

	// Sync errors
	CodeSyncLoadFailed Code = "SYNC_LOAD_FAILED"
	CodeSyncSaveFailed Code = "SYNC_SAVE_FAILED"
	CodeSyncBusy       Code = "SYNC_BUSY"

	// Remote collaborator errors
	CodeRemoteUnavailable Code = "REMOTE_UNAVAILABLE"
	CodeRemoteStatus      Code = "REMOTE_STATUS"
	CodeRemoteDecode      Code = "REMOTE_DECODE"

	// Document store errors
	CodeDocumentInvalid  Code = "DOCUMENT_INVALID"
	CodeDocumentTooLarge Code = "DOCUMENT_TOO_LARGE"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeNotFound         Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input
	case CodeRulesetEmpty,
		CodeRulesetDuplicateName,
		CodeRulesetUnknownAttribute,
		CodeDocumentInvalid:
		return http.StatusBadRequest

	case CodeDocumentTooLarge:
		return http.StatusRequestEntityTooLarge

	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed

	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - state doesn't allow operation
	case CodeSyncBusy:
		return http.StatusConflict

	// BadGateway - upstream collaborator failed
	case CodeSyncLoadFailed,
		CodeSyncSaveFailed,
		CodeRemoteUnavailable,
		CodeRemoteStatus,
		CodeRemoteDecode:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
