package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Interview-specific ────────────────────────────────────────────
	ErrInvalidSessionCode ErrCode = "INVALID_SESSION_CODE"
	ErrAlreadyConnected   ErrCode = "SESSION_ALREADY_CONNECTED"
	ErrInvalidTransition  ErrCode = "INVALID_TRANSITION"
	ErrInterviewCompleted ErrCode = "INTERVIEW_COMPLETED"
	ErrGenerationFailed   ErrCode = "QUESTION_GENERATION_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrInvalidSessionCode:
		return "Invalid session code."
	case ErrAlreadyConnected:
		return "Session already connected or completed."
	case ErrInvalidTransition:
		return "The interview is not in a state that allows this action."
	case ErrInterviewCompleted:
		return "The interview is already completed."
	case ErrGenerationFailed:
		return "Question generation failed. Please try connecting again."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
