package domain

import "time"

// Step is a node of the onboarding guide tree. The root step has no parent.
type Step struct {
	ID          string
	Title       string
	Description string
	ParentID    *string
	Video       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot reports whether the step is the top of the tree.
func (s *Step) IsRoot() bool {
	return s.ParentID == nil
}

// SubStep is an ordered leaf attached to a Step.
type SubStep struct {
	ID          string
	StepID      string
	Title       string
	Description string
	Video       *string
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StepNode is a step with its ordered substeps and child steps.
type StepNode struct {
	Step     Step
	SubSteps []SubStep
	Children []*StepNode
}
