package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
)

type Status string

const (
	StatusQuoteGenerated Status = "quote_generated"
	StatusSubmitted      Status = "submitted"
	StatusInProgress     Status = "in_progress"
	StatusProofreading   Status = "proofreading"
	StatusCompleted      Status = "completed"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	switch st {
	case StatusQuoteGenerated, StatusSubmitted, StatusInProgress, StatusProofreading, StatusCompleted:
		return st, true
	}
	return "", false
}

// IsActive reports whether an operator is working on the project.
func (s Status) IsActive() bool {
	return s == StatusSubmitted || s == StatusInProgress || s == StatusProofreading
}

// OwnerDeletable reports whether the owner may still withdraw the project.
func (s Status) OwnerDeletable() bool {
	return s == StatusQuoteGenerated || s == StatusSubmitted
}

// OperatorSettable reports whether an admin may move a project into s directly.
// Completion goes through the translation upload instead.
func (s Status) OperatorSettable() bool {
	return s.IsActive()
}

// Project is a materialized quote plus its fulfilment state.
// TranslatedFileRef is set exactly when Status is completed.
type Project struct {
	ID                uuid.UUID           `json:"id"`
	HumanID           string              `json:"human_id"`
	OwnerID           uuid.UUID           `json:"owner_id"`
	Name              string              `json:"name"`
	FileName          string              `json:"file_name"`
	SourceFileRef     string              `json:"-"`
	UnitCount         int64               `json:"unit_count"`
	Breakdown         []pricing.LineItem  `json:"breakdown"`
	Subtotal          pricing.Money       `json:"subtotal"`
	PMFee             pricing.Money       `json:"pm_fee"`
	Total             pricing.Money       `json:"total"`
	ProjectType       pricing.ProjectType `json:"project_type"`
	MultiplierApplied float64             `json:"multiplier_applied"`
	Status            Status              `json:"status"`
	ETADays           *int                `json:"eta_days,omitempty"`
	TranslatedFileRef *string             `json:"-"`
	CreatedAt         time.Time           `json:"created_at"`
	SubmittedAt       *time.Time          `json:"submitted_at,omitempty"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (p *Project) Prepare() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusQuoteGenerated
	}
}

// HasTranslation reports whether a translated artifact is recorded.
func (p *Project) HasTranslation() bool {
	return p.TranslatedFileRef != nil && *p.TranslatedFileRef != ""
}

// ApplyQuote copies a computed quote onto the project.
func (p *Project) ApplyQuote(q pricing.Quote) {
	p.UnitCount = q.UnitCount
	p.Breakdown = q.Breakdown
	p.Subtotal = q.Subtotal
	p.PMFee = q.PMFee
	p.Total = q.Total
	p.ProjectType = q.ProjectType
	p.MultiplierApplied = q.MultiplierApplied
}

// ProjectFilter narrows project listings. Zero values match everything.
type ProjectFilter struct {
	OwnerID *uuid.UUID
	Status  *Status
}
