package workflow

import (
	"context"
	"fmt"
	"strings"

	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/user"
	domain "expense-approval/internal/domain/workflow"
	"expense-approval/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	repo     domain.Repository
	users    user.Repository
	resolver role.ApproverResolver
	log      *zap.Logger
}

func NewUsecase(repo domain.Repository, users user.Repository, resolver role.ApproverResolver, log *zap.Logger) *Usecase {
	if resolver == nil {
		resolver = role.BuiltinResolver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, users: users, resolver: resolver, log: log}
}

// Create stores a new workflow for the admin's company. Every role it names
// must be approver-capable and every listed member must belong to the company.
func (u *Usecase) Create(ctx context.Context, actor approval.Actor, in CreateInput) (*WorkflowDTO, error) {
	if !actor.Holds(role.Admin) {
		return nil, fmt.Errorf("%w: only admins manage workflows", user.ErrForbidden)
	}

	recs := make([]domain.StepRecord, len(in.Steps))
	for i, s := range in.Steps {
		s.ApproverRole = role.Normalize(s.ApproverRole)
		s.ApproverType = strings.ToLower(strings.TrimSpace(s.ApproverType))
		s.ApprovalMode = strings.ToLower(strings.TrimSpace(s.ApprovalMode))
		recs[i] = s
	}
	steps, err := domain.DecodeSteps(recs)
	if err != nil {
		return nil, err
	}
	in.Rules.Type = strings.TrimSpace(in.Rules.Type)
	in.Rules.SpecialRole = role.Normalize(in.Rules.SpecialRole)
	rules, err := domain.DecodeRule(in.Rules)
	if err != nil {
		return nil, err
	}

	w, err := domain.New(actor.CompanyID, strings.TrimSpace(in.Name), steps, rules)
	if err != nil {
		return nil, err
	}
	if err := u.checkReferences(ctx, actor.CompanyID, w); err != nil {
		return nil, err
	}

	w.WorkflowID = id.NewID32()
	if err := u.repo.Create(ctx, w); err != nil {
		return nil, err
	}

	u.log.Info("workflow created",
		zap.String("workflow_id", w.WorkflowID),
		zap.String("company_id", w.CompanyID),
		zap.Int("steps", len(w.Steps)),
		zap.String("rule", string(w.Rules.Kind())))
	dto := toDTO(w)
	return &dto, nil
}

func (u *Usecase) checkReferences(ctx context.Context, companyID string, w *domain.Workflow) error {
	var members []string
	for _, s := range w.Steps {
		switch st := s.(type) {
		case domain.RoleStep:
			if !u.resolver.IsApprover(ctx, companyID, st.ApproverRole) {
				return fmt.Errorf("%w: role %q cannot approve", approval.ErrInvalidWorkflowReference, st.ApproverRole)
			}
		case domain.UserStep:
			members = append(members, st.ApproverUsers...)
		}
	}
	if r := ruleRole(w.Rules); r != "" && !u.resolver.IsApprover(ctx, companyID, r) {
		return fmt.Errorf("%w: role %q cannot approve", approval.ErrInvalidWorkflowReference, r)
	}
	if len(members) == 0 {
		return nil
	}

	found, err := u.users.ListByUserIDs(ctx, members)
	if err != nil {
		return err
	}
	inCompany := make(map[string]struct{}, len(found))
	for _, f := range found {
		if f.CompanyID == companyID {
			inCompany[f.UserID] = struct{}{}
		}
	}
	for _, m := range members {
		if _, ok := inCompany[m]; !ok {
			return fmt.Errorf("%w: user %s is not in this company", approval.ErrInvalidWorkflowReference, m)
		}
	}
	return nil
}

func ruleRole(r domain.CompletionRule) string {
	switch rule := r.(type) {
	case domain.SpecificApproverRule:
		return rule.Role
	case domain.HybridRule:
		return rule.Role
	}
	return ""
}

func (u *Usecase) List(ctx context.Context, actor approval.Actor) ([]WorkflowDTO, error) {
	list, err := u.repo.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]WorkflowDTO, 0, len(list))
	for i := range list {
		out = append(out, toDTO(&list[i]))
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, actor approval.Actor, workflowID string) (*WorkflowDTO, error) {
	w, err := u.repo.GetByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if w.CompanyID != actor.CompanyID {
		return nil, domain.ErrNotFound
	}
	dto := toDTO(w)
	return &dto, nil
}
