package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by all modules.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeExternalService    ErrorCode = "COMMON_011"
	ErrCodeUnknown            ErrorCode = "COMMON_099"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Extraction engine error codes.
const (
	ErrCodeBlobUnreadable     ErrorCode = "EXT_001"
	ErrCodeDialectUnknown     ErrorCode = "EXT_002"
	ErrCodeRecordParseFailed  ErrorCode = "EXT_003"
)

// Ingestion pipeline error codes.
const (
	ErrCodeArchiveFetchFailed   ErrorCode = "ING_001"
	ErrCodeArchiveUnzipFailed   ErrorCode = "ING_002"
	ErrCodeDiscoveryFailed      ErrorCode = "ING_003"
	ErrCodeLedgerUnavailable    ErrorCode = "ING_004"
	ErrCodeRecordNotFound       ErrorCode = "ING_005"
	ErrCodeRecordPersistFailed  ErrorCode = "ING_006"
	ErrCodeArchiveStoreFailed   ErrorCode = "ING_007"
	ErrCodeTaskPublishFailed    ErrorCode = "ING_008"
)
