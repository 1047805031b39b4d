package issue

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("issue not found")
	ErrDuplicateIdentifier = errors.New("duplicate issue identifier")
	ErrStorage             = errors.New("issue storage failure")

	ErrInvalidStatus        = &validationError{msg: "invalid issue status"}
	ErrInvalidPriority      = &validationError{msg: "invalid issue priority"}
	ErrInvalidPublicID      = &validationError{msg: "invalid issue public id"}
	ErrTransitionNotAllowed = &validationError{msg: "status transition not allowed"}
	ErrMissingField         = &validationError{msg: "required field is missing"}
)

// validationError is a named validation failure that also matches ErrValidation.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

// Classify maps an error onto the lifecycle error taxonomy label.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrDuplicateIdentifier):
		return "duplicate_identifier"
	default:
		return "storage"
	}
}
