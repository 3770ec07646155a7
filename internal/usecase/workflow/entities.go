package workflow

import (
	"time"

	domain "expense-approval/internal/domain/workflow"
)

type CreateInput struct {
	Name  string
	Steps []domain.StepRecord
	Rules domain.RuleRecord
}

type WorkflowDTO struct {
	WorkflowID string              `json:"workflow_id"`
	CompanyID  string              `json:"company_id"`
	Name       string              `json:"name"`
	Steps      []domain.StepRecord `json:"steps"`
	Rules      domain.RuleRecord   `json:"rules"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toDTO(w *domain.Workflow) WorkflowDTO {
	return WorkflowDTO{
		WorkflowID: w.WorkflowID,
		CompanyID:  w.CompanyID,
		Name:       w.Name,
		Steps:      domain.EncodeSteps(w.Steps),
		Rules:      domain.EncodeRule(w.Rules),
		CreatedAt:  w.CreatedAt,
	}
}
