package workflow

import "slices"

// Step is one stage of a workflow: either a RoleStep or a UserStep.
type Step interface {
	Index() int
	isStep()
}

type ApprovalMode string

const (
	ModeAny ApprovalMode = "any"
	ModeAll ApprovalMode = "all"
)

func (m ApprovalMode) Valid() bool { return m == ModeAny || m == ModeAll }

// RoleStep is satisfied by any single holder of ApproverRole.
type RoleStep struct {
	StepIndex    int
	ApproverRole string
}

func (s RoleStep) Index() int { return s.StepIndex }
func (RoleStep) isStep()      {}

// UserStep is satisfied when any one (ModeAny) or every (ModeAll) listed user approved.
type UserStep struct {
	StepIndex     int
	ApproverUsers []string
	Mode          ApprovalMode
}

func (s UserStep) Index() int { return s.StepIndex }
func (UserStep) isStep()      {}

func (s UserStep) IsMember(userID string) bool { return slices.Contains(s.ApproverUsers, userID) }

// RuleKind tags the persisted form of a CompletionRule.
type RuleKind string

const (
	RuleNone             RuleKind = "none"
	RulePercentage       RuleKind = "percentage"
	RuleSpecificApprover RuleKind = "specificApprover"
	RuleHybrid           RuleKind = "hybrid"
)

// DefaultThreshold applies to percentage-based rules stored without a threshold.
const DefaultThreshold = 60

// CompletionRule can approve an expense independently of the sequential position.
type CompletionRule interface {
	Kind() RuleKind
	isRule()
}

type NoRule struct{}

type PercentageRule struct{ Threshold int }

type SpecificApproverRule struct{ Role string }

type HybridRule struct {
	Threshold int
	Role      string
}

func (NoRule) Kind() RuleKind               { return RuleNone }
func (PercentageRule) Kind() RuleKind       { return RulePercentage }
func (SpecificApproverRule) Kind() RuleKind { return RuleSpecificApprover }
func (HybridRule) Kind() RuleKind           { return RuleHybrid }

func (NoRule) isRule()               {}
func (PercentageRule) isRule()       {}
func (SpecificApproverRule) isRule() {}
func (HybridRule) isRule()           {}
