package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Identity ──────────────────────────────────────────────────────
	ErrTokenRequired            ErrCode = "TOKEN_REQUIRED"
	ErrIdentityInvalid          ErrCode = "IDENTITY_INVALID"
	ErrAuthCodeInvalid          ErrCode = "AUTH_CODE_INVALID"
	ErrNotAuthorized            ErrCode = "NOT_AUTHORIZED"
	ErrStoredCredentialsInvalid ErrCode = "STORED_CREDENTIALS_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrMalformedRequest ErrCode = "MALFORMED_REQUEST"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamFormatInvalid ErrCode = "EXAM_FORMAT_INVALID"
	ErrExamNotFound      ErrCode = "EXAM_NOT_FOUND"
	ErrExamAlreadyTaken  ErrCode = "EXAM_ALREADY_TAKEN"
	ErrIncorrectExamID   ErrCode = "INCORRECT_EXAM_ID"
	ErrIncompleteAnswers ErrCode = "INCOMPLETE_ANSWERS"

	// ─── Spreadsheet ───────────────────────────────────────────────────
	ErrSpreadsheetUnavailable ErrCode = "SPREADSHEET_UNAVAILABLE"
	ErrResponseNotRecorded    ErrCode = "RESPONSE_NOT_RECORDED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Identity ──────────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An identity token is required."
	case ErrIdentityInvalid:
		return "The identity token is invalid or expired."
	case ErrAuthCodeInvalid:
		return "The authorization code was rejected."
	case ErrNotAuthorized:
		return "Spreadsheet access has not been granted. Please authenticate first."
	case ErrStoredCredentialsInvalid:
		return "Stored spreadsheet access is no longer valid. Please authenticate again."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrMalformedRequest:
		return "The request does not match an active exam instance."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrExamFormatInvalid:
		return "The exam sheet does not follow the exam template."
	case ErrExamNotFound:
		return "Exam not found."
	case ErrExamAlreadyTaken:
		return "This roll number has already taken the exam."
	case ErrIncorrectExamID:
		return "Incorrect exam ID requested."
	case ErrIncompleteAnswers:
		return "Every question must be answered before submitting."

	// ─── Spreadsheet ───────────────────────────────────────────────────
	case ErrSpreadsheetUnavailable:
		return "Unable to access the spreadsheet."
	case ErrResponseNotRecorded:
		return "Your submission was saved but could not be written to the response sheet."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
