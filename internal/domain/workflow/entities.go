package workflow

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("workflow not found")
	ErrInvalidDefinition = errors.New("invalid workflow definition")
)

const (
	approverTypeRole  = "role"
	approverTypeUsers = "users"
)

// StepRecord is the persisted (JSON) form of a Step.
type StepRecord struct {
	StepIndex     int      `json:"step_index"`
	ApproverType  string   `json:"approver_type"`
	ApproverRole  string   `json:"approver_role,omitempty"`
	ApproverUsers []string `json:"approver_users,omitempty"`
	ApprovalMode  string   `json:"approval_mode,omitempty"`
}

// RuleRecord is the persisted (JSON) form of a CompletionRule.
type RuleRecord struct {
	Type        string `json:"type"`
	Percentage  int    `json:"percentage,omitempty"`
	SpecialRole string `json:"special_role,omitempty"`
}

// Table: workflows
//
// Steps and Rules are the working representation; the *Record fields are what
// gets stored and are kept in sync by the gorm hooks below.
type Workflow struct {
	ID          uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	WorkflowID  string       `gorm:"column:workflow_id;type:char(32);not null;uniqueIndex" json:"workflow_id"`
	CompanyID   string       `gorm:"column:company_id;type:char(32);not null;index" json:"company_id"`
	Name        string       `gorm:"column:name;size:128;not null" json:"name"`
	StepRecords []StepRecord `gorm:"column:steps;type:json;serializer:json" json:"steps"`
	RuleRecord  RuleRecord   `gorm:"column:rules;type:json;serializer:json" json:"rules"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Steps []Step         `gorm:"-" json:"-"`
	Rules CompletionRule `gorm:"-" json:"-"`
}

func (Workflow) TableName() string { return "workflows" }

// New builds a workflow, ordering steps by index, and validates it.
func New(companyID, name string, steps []Step, rules CompletionRule) (*Workflow, error) {
	ordered := append([]Step(nil), steps...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index() < ordered[j].Index() })
	if rules == nil {
		rules = NoRule{}
	}
	w := &Workflow{CompanyID: companyID, Name: name, Steps: ordered, Rules: rules}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	w.StepRecords = EncodeSteps(w.Steps)
	w.RuleRecord = EncodeRule(w.Rules)
	return w, nil
}

func (w *Workflow) BeforeSave(*gorm.DB) error {
	if err := w.Validate(); err != nil {
		return err
	}
	w.StepRecords = EncodeSteps(w.Steps)
	w.RuleRecord = EncodeRule(w.Rules)
	return nil
}

func (w *Workflow) AfterFind(*gorm.DB) error { return w.decode() }

func (w *Workflow) decode() error {
	steps, err := DecodeSteps(w.StepRecords)
	if err != nil {
		return err
	}
	rule, err := DecodeRule(w.RuleRecord)
	if err != nil {
		return err
	}
	w.Steps, w.Rules = steps, rule
	return nil
}

// StepAt returns the step at position i, or nil when i is out of range.
func (w *Workflow) StepAt(i int) Step {
	if w == nil || i < 0 || i >= len(w.Steps) {
		return nil
	}
	return w.Steps[i]
}

// ReferencesRole reports whether any RoleStep requires the given role.
func (w *Workflow) ReferencesRole(name string) bool {
	for _, s := range w.Steps {
		if rs, ok := s.(RoleStep); ok && rs.ApproverRole == name {
			return true
		}
	}
	return false
}

// Validate checks the dense 0-based step ordering and the per-variant payloads.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrInvalidDefinition)
	}
	for i, s := range w.Steps {
		if s.Index() != i {
			return fmt.Errorf("%w: step at position %d has index %d", ErrInvalidDefinition, i, s.Index())
		}
		switch st := s.(type) {
		case RoleStep:
			if st.ApproverRole == "" {
				return fmt.Errorf("%w: step %d has no approver role", ErrInvalidDefinition, i)
			}
		case UserStep:
			if len(st.ApproverUsers) == 0 {
				return fmt.Errorf("%w: step %d has no approver users", ErrInvalidDefinition, i)
			}
			if !st.Mode.Valid() {
				return fmt.Errorf("%w: step %d has approval mode %q", ErrInvalidDefinition, i, st.Mode)
			}
			seen := make(map[string]struct{}, len(st.ApproverUsers))
			for _, u := range st.ApproverUsers {
				if _, dup := seen[u]; dup {
					return fmt.Errorf("%w: step %d lists user %s twice", ErrInvalidDefinition, i, u)
				}
				seen[u] = struct{}{}
			}
		default:
			return fmt.Errorf("%w: step %d has unknown type %T", ErrInvalidDefinition, i, s)
		}
	}
	switch r := w.Rules.(type) {
	case nil, NoRule:
	case PercentageRule:
		return validThreshold(r.Threshold)
	case SpecificApproverRule:
		if r.Role == "" {
			return fmt.Errorf("%w: specific approver rule needs a role", ErrInvalidDefinition)
		}
	case HybridRule:
		if r.Role == "" {
			return fmt.Errorf("%w: hybrid rule needs a role", ErrInvalidDefinition)
		}
		return validThreshold(r.Threshold)
	default:
		return fmt.Errorf("%w: unknown rule %T", ErrInvalidDefinition, r)
	}
	return nil
}

func validThreshold(t int) error {
	if t < 1 || t > 100 {
		return fmt.Errorf("%w: threshold %d outside 1..100", ErrInvalidDefinition, t)
	}
	return nil
}

func EncodeSteps(steps []Step) []StepRecord {
	out := make([]StepRecord, 0, len(steps))
	for _, s := range steps {
		switch st := s.(type) {
		case RoleStep:
			out = append(out, StepRecord{StepIndex: st.StepIndex, ApproverType: approverTypeRole, ApproverRole: st.ApproverRole})
		case UserStep:
			out = append(out, StepRecord{
				StepIndex:     st.StepIndex,
				ApproverType:  approverTypeUsers,
				ApproverUsers: append([]string(nil), st.ApproverUsers...),
				ApprovalMode:  string(st.Mode),
			})
		}
	}
	return out
}

func DecodeSteps(recs []StepRecord) ([]Step, error) {
	ordered := append([]StepRecord(nil), recs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StepIndex < ordered[j].StepIndex })

	out := make([]Step, 0, len(ordered))
	for _, r := range ordered {
		switch r.ApproverType {
		case approverTypeRole, "":
			out = append(out, RoleStep{StepIndex: r.StepIndex, ApproverRole: r.ApproverRole})
		case approverTypeUsers:
			mode := ApprovalMode(r.ApprovalMode)
			if mode == "" {
				mode = ModeAny
			}
			out = append(out, UserStep{StepIndex: r.StepIndex, ApproverUsers: append([]string(nil), r.ApproverUsers...), Mode: mode})
		default:
			return nil, fmt.Errorf("%w: approver type %q", ErrInvalidDefinition, r.ApproverType)
		}
	}
	return out, nil
}

func EncodeRule(rule CompletionRule) RuleRecord {
	switch r := rule.(type) {
	case PercentageRule:
		return RuleRecord{Type: string(RulePercentage), Percentage: r.Threshold}
	case SpecificApproverRule:
		return RuleRecord{Type: string(RuleSpecificApprover), SpecialRole: r.Role}
	case HybridRule:
		return RuleRecord{Type: string(RuleHybrid), Percentage: r.Threshold, SpecialRole: r.Role}
	default:
		return RuleRecord{Type: string(RuleNone)}
	}
}

func DecodeRule(rec RuleRecord) (CompletionRule, error) {
	threshold := rec.Percentage
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	switch RuleKind(rec.Type) {
	case RuleNone, "":
		return NoRule{}, nil
	case RulePercentage:
		return PercentageRule{Threshold: threshold}, nil
	case RuleSpecificApprover:
		return SpecificApproverRule{Role: rec.SpecialRole}, nil
	case RuleHybrid:
		return HybridRule{Threshold: threshold, Role: rec.SpecialRole}, nil
	default:
		return nil, fmt.Errorf("%w: rule type %q", ErrInvalidDefinition, rec.Type)
	}
}
