package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"expense-approval/internal/adapter/middleware"
	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/expense"
	approvaluc "expense-approval/internal/usecase/approval"
	expenseuc "expense-approval/internal/usecase/expense"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ExpenseHandler struct {
	expenses  *expenseuc.Usecase
	approvals *approvaluc.Usecase
}

func NewExpenseHandler(expenses *expenseuc.Usecase, approvals *approvaluc.Usecase) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, approvals: approvals}
}

type submitExpenseReq struct {
	Amount            decimal.Decimal `json:"amount"              validate:"money"`
	Currency          string          `json:"currency"            validate:"omitempty,iso4217"`
	Category          string          `json:"category"            validate:"required,category"`
	Description       string          `json:"description"         validate:"required,max=1000"`
	Date              string          `json:"date"                validate:"required,datetime=2006-01-02"`
	WorkflowID        string          `json:"workflow_id"         validate:"omitempty,hex32"`
	IsManagerApprover *bool           `json:"is_manager_approver"`
}

type approveReq struct {
	Comment string `json:"comment" validate:"max=1000"`
}

type rejectReq struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func actorOf(c echo.Context) (approval.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return a, echo.NewHTTPError(http.StatusUnauthorized, "missing actor")
	}
	return a, nil
}

func (h *ExpenseHandler) Submit(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req submitExpenseReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	date, _ := time.Parse(time.DateOnly, req.Date)

	dto, err := h.expenses.Submit(c.Request().Context(), actor, expenseuc.SubmitInput{
		Amount:            req.Amount,
		Currency:          req.Currency,
		Category:          req.Category,
		Description:       req.Description,
		Date:              date,
		WorkflowID:        req.WorkflowID,
		IsManagerApprover: req.IsManagerApprover,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ExpenseHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	dto, err := h.expenses.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ExpenseHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	in, err := listInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	list, err := h.expenses.List(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

func listInput(c echo.Context) (expenseuc.ListInput, error) {
	in := expenseuc.ListInput{Status: expense.Status(strings.ToLower(c.QueryParam("status")))}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &in.From}, {"to", &in.To}} {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return in, errors.New(p.name + " must be YYYY-MM-DD")
		}
		*p.dst = &t
	}
	return in, nil
}

func (h *ExpenseHandler) Stats(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	s, err := h.expenses.Stats(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ExpenseHandler) Pending(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	list, err := h.approvals.Pending(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

func (h *ExpenseHandler) Timeline(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	tl, err := h.approvals.Timeline(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tl)
}

func (h *ExpenseHandler) Approve(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.approvals.Approve(c.Request().Context(), actor, approvaluc.DecisionInput{ExpenseID: c.Param("id"), Comment: req.Comment})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ExpenseHandler) Reject(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.approvals.Reject(c.Request().Context(), actor, approvaluc.DecisionInput{ExpenseID: c.Param("id"), Comment: req.Reason})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ExpenseHandler) Progress(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	dto, err := h.approvals.Progress(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
