package approval

import "errors"

// Business-rule outcomes. None of them is transient; callers surface them as-is.
var (
	ErrAlreadyReviewed          = errors.New("expense already reviewed")
	ErrNoActionRequired         = errors.New("no approval is required at this stage")
	ErrWrongRole                = errors.New("actor is not eligible for the required role")
	ErrNotAssignedApprover      = errors.New("actor is not an assigned approver for this step")
	ErrStepAlreadySatisfied     = errors.New("step already satisfied")
	ErrDuplicateAction          = errors.New("actor has already acted on this expense")
	ErrInvalidWorkflowReference = errors.New("invalid workflow reference")
	ErrNotFound                 = errors.New("not found")
	ErrInvalidDecision          = errors.New("decision must be approved or rejected")
)
