package http

import (
	"net/http"

	"expense-approval/internal/domain/workflow"
	workflowuc "expense-approval/internal/usecase/workflow"

	"github.com/labstack/echo/v4"
)

type WorkflowHandler struct{ uc *workflowuc.Usecase }

func NewWorkflowHandler(uc *workflowuc.Usecase) *WorkflowHandler { return &WorkflowHandler{uc: uc} }

type stepReq struct {
	StepIndex     int      `json:"step_index"     validate:"gte=0"`
	ApproverType  string   `json:"approver_type"  validate:"omitempty,oneof=role users"`
	ApproverRole  string   `json:"approver_role"  validate:"required_if=ApproverType role,max=64"`
	ApproverUsers []string `json:"approver_users" validate:"required_if=ApproverType users,dive,hex32"`
	ApprovalMode  string   `json:"approval_mode"  validate:"omitempty,oneof=any all ANY ALL"`
}

type ruleReq struct {
	Type        string `json:"type"         validate:"omitempty,oneof=none percentage specificApprover hybrid"`
	Percentage  int    `json:"percentage"   validate:"gte=0,lte=100"`
	SpecialRole string `json:"special_role" validate:"max=64"`
}

type createWorkflowReq struct {
	Name  string    `json:"name"  validate:"required,max=128"`
	Steps []stepReq `json:"steps" validate:"required,min=1,dive"`
	Rules ruleReq   `json:"rules"`
}

func (h *WorkflowHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req createWorkflowReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	in := workflowuc.CreateInput{
		Name:  req.Name,
		Steps: make([]workflow.StepRecord, 0, len(req.Steps)),
		Rules: workflow.RuleRecord{Type: req.Rules.Type, Percentage: req.Rules.Percentage, SpecialRole: req.Rules.SpecialRole},
	}
	for _, s := range req.Steps {
		in.Steps = append(in.Steps, workflow.StepRecord(s))
	}

	dto, err := h.uc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *WorkflowHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	list, err := h.uc.List(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

func (h *WorkflowHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
