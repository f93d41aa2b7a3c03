package validation

import (
	"regexp"
	"strings"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/dto"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSessionID validates a session id path or body field.
func (v *Validator) ValidateSessionID(sessionID string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(sessionID) == "" {
		errors = append(errors, domain.NewMissingFieldError("session_id"))
	} else if !isValidULID(sessionID) {
		errors = append(errors, domain.NewInvalidFormatError("session_id", sessionID))
	}
	return errors
}

// ValidateSetAnswerRequest validates the answer upsert request.
func (v *Validator) ValidateSetAnswerRequest(req *dto.SetAnswerRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.ValidateSessionID(req.SessionID)...)

	if strings.TrimSpace(req.QuestionID) == "" {
		errors = append(errors, domain.NewMissingFieldError("question_id"))
	}

	// A nil Selected is a deliberate clear and always valid; the exact option
	// range is enforced against the question set by the state machine.
	if req.Selected != nil && *req.Selected < 0 {
		errors = append(errors, domain.NewOutOfRangeError("selected", *req.Selected, 0, 9))
	}

	if req.PageIndex < 0 {
		errors = append(errors, domain.NewOutOfRangeError("page_index", req.PageIndex, 0, 99))
	}

	return errors
}

// ValidateResolveResultRequest validates the result resolution request. Both
// fields are optional; when present they must be well-formed ULIDs.
func (v *Validator) ValidateResolveResultRequest(req *dto.ResolveResultRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if req.SessionID != "" && !isValidULID(req.SessionID) {
		errors = append(errors, domain.NewInvalidFormatError("session_id", req.SessionID))
	}
	if req.ResultID != "" && !isValidULID(req.ResultID) {
		errors = append(errors, domain.NewInvalidFormatError("result_id", req.ResultID))
	}

	return errors
}

// ValidateResultID validates a result id path parameter.
func (v *Validator) ValidateResultID(resultID string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(resultID) == "" {
		errors = append(errors, domain.NewMissingFieldError("result_id"))
	} else if !isValidULID(resultID) {
		errors = append(errors, domain.NewInvalidFormatError("result_id", resultID))
	}
	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
