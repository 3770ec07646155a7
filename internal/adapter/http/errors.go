package http

import (
	"errors"
	"net/http"
	"strconv"

	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/user"
	"expense-approval/internal/domain/workflow"

	"github.com/labstack/echo/v4"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// First match wins.
var errorTable = []errorMapping{
	{expense.ErrNotFound, http.StatusNotFound, "not_found"},
	{workflow.ErrNotFound, http.StatusNotFound, "not_found"},
	{role.ErrNotFound, http.StatusNotFound, "not_found"},
	{user.ErrNotFound, http.StatusNotFound, "not_found"},
	{approval.ErrNotFound, http.StatusNotFound, "not_found"},

	{approval.ErrAlreadyReviewed, http.StatusConflict, "already_reviewed"},
	{approval.ErrDuplicateAction, http.StatusConflict, "duplicate_action"},
	{approval.ErrStepAlreadySatisfied, http.StatusConflict, "step_already_satisfied"},
	{expense.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},
	{role.ErrExists, http.StatusConflict, "role_exists"},
	{role.ErrInUse, http.StatusConflict, "role_in_use"},
	{user.ErrEmailTaken, http.StatusConflict, "email_taken"},

	{approval.ErrWrongRole, http.StatusForbidden, "wrong_role"},
	{approval.ErrNotAssignedApprover, http.StatusForbidden, "not_assigned_approver"},
	{user.ErrForbidden, http.StatusForbidden, "forbidden"},
	{role.ErrSystemRole, http.StatusForbidden, "system_role"},
	{user.ErrAdminImmutable, http.StatusForbidden, "admin_immutable"},

	{approval.ErrNoActionRequired, http.StatusBadRequest, "no_action_required"},
	{approval.ErrInvalidWorkflowReference, http.StatusBadRequest, "invalid_workflow_reference"},
	{approval.ErrInvalidDecision, http.StatusBadRequest, "invalid_decision"},
	{user.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{user.ErrInvalidManager, http.StatusBadRequest, "invalid_manager"},

	{expense.ErrInvalid, http.StatusUnprocessableEntity, "validation_failed"},
	{workflow.ErrInvalidDefinition, http.StatusUnprocessableEntity, "validation_failed"},
	{role.ErrInvalid, http.StatusUnprocessableEntity, "validation_failed"},
	{user.ErrInvalid, http.StatusUnprocessableEntity, "validation_failed"},
}

func classify(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// writeError maps a usecase error onto the response. Unknown errors are
// returned to echo so the logging middleware sees them.
func writeError(c echo.Context, err error) error {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		return err
	}
	resp := ErrorResponse{Error: err.Error(), Code: code}
	var inUse *role.InUseError
	if errors.As(err, &inUse) {
		resp.Details = []FieldError{
			{Field: "users", Message: strconv.FormatInt(inUse.Users, 10)},
			{Field: "workflows", Message: strconv.FormatInt(inUse.Workflows, 10)},
		}
	}
	return c.JSON(status, resp)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "validation_failed",
		Details: ToFieldErrors(err),
	})
}

// ErrorHandler renders anything a handler returned unmapped, keeping the
// ErrorResponse shape for echo's own errors too.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: msg, Code: httpCode(he.Code)})
		return
	}
	_ = c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
}

func httpCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusBadRequest:
		return "bad_request"
	}
	if status >= 500 {
		return "internal"
	}
	return "error"
}
