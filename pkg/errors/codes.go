package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Aliases used across the code base.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES ErrorCode = "MOL_001"
	ErrCodeMoleculeParsingFailed ErrorCode = "MOL_006"
)

// MCS Module Error Codes
const (
	ErrCodeInvalidIndexPair     ErrorCode = "MCS_001"
	ErrCodeCollaboratorFailure  ErrorCode = "MCS_002"
	ErrCodeAlgorithmUnsupported ErrorCode = "MCS_003"
	ErrCodeGraphInvalid         ErrorCode = "MCS_004"
	ErrCodeExtensionFailed      ErrorCode = "MCS_005"
	ErrCodeSearchLimitExceeded  ErrorCode = "MCS_006"
	ErrCodeCompatibilityGraph   ErrorCode = "MCS_007"
	ErrCodeMappingConflict      ErrorCode = "MCS_008"
)

// Short aliases for the MCS codes.
const (
	CodeInvalidIndexPair      = ErrCodeInvalidIndexPair
	CodeCollaboratorFailure   = ErrCodeCollaboratorFailure
	CodeAlgorithmUnsupported  = ErrCodeAlgorithmUnsupported
	CodeGraphInvalid          = ErrCodeGraphInvalid
	CodeExtensionFailed       = ErrCodeExtensionFailed
	CodeSearchLimitExceeded   = ErrCodeSearchLimitExceeded
	CodeCompatibilityGraph    = ErrCodeCompatibilityGraph
	CodeMappingConflict       = ErrCodeMappingConflict
	CodeInvalidSMILES         = ErrCodeMoleculeInvalidSMILES
	CodeMoleculeParsingFailed = ErrCodeMoleculeParsingFailed
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeMoleculeInvalidSMILES: "invalid SMILES format",
	ErrCodeMoleculeParsingFailed: "failed to parse molecule",

	ErrCodeInvalidIndexPair:     "atom index pointing to -1",
	ErrCodeCollaboratorFailure:  "search collaborator failed",
	ErrCodeAlgorithmUnsupported: "unsupported matching algorithm",
	ErrCodeGraphInvalid:         "invalid molecule graph",
	ErrCodeExtensionFailed:      "mapping extension failed",
	ErrCodeSearchLimitExceeded:  "search iteration limit exceeded",
	ErrCodeCompatibilityGraph:   "malformed compatibility graph",
	ErrCodeMappingConflict:      "correspondence is no longer bijective",
}

// softCodes are failures that never abort a matching run.
var softCodes = map[ErrorCode]bool{
	ErrCodeSearchLimitExceeded: true,
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsSoft reports whether a failure with this code leaves the run usable.
// InvalidIndexPair is deliberately absent: the seed path drops the pair before
// an error is ever constructed, and the extension path treats it as fatal.
func IsSoft(code ErrorCode) bool {
	return softCodes[code]
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
