package service

import (
	"context"
	"strings"

	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

// CVService manages the CV records standard users attach to applications. Documents live
// in the file store; only their URL is kept.
type CVService struct {
	cvs repository.CVRepository
}

// NewCVService constructs the service.
func NewCVService(cvs repository.CVRepository) *CVService {
	return &CVService{cvs: cvs}
}

// CVInput describes a CV record.
type CVInput struct {
	Name        string `validate:"required,max=200"`
	DocumentURL string `validate:"required,url"`
}

func (s *CVService) Create(ctx context.Context, actor *domain.Account, input CVInput) (*domain.CV, error) {
	if !auth.IsAllowed(actor, auth.ActionManageCVs, nil) {
		return nil, auth.Forbidden()
	}
	if err := apperrors.ValidateStruct(input); err != nil {
		return nil, err
	}
	cv := &domain.CV{
		UserID:      actor.ID,
		Name:        strings.TrimSpace(input.Name),
		DocumentURL: strings.TrimSpace(input.DocumentURL),
	}
	if err := s.cvs.Create(ctx, cv); err != nil {
		return nil, err
	}
	return cv, nil
}

func (s *CVService) List(ctx context.Context, actor *domain.Account) ([]domain.CV, error) {
	if !auth.IsAllowed(actor, auth.ActionManageCVs, nil) {
		return nil, auth.Forbidden()
	}
	return s.cvs.ListByUser(ctx, actor.ID)
}

func (s *CVService) Delete(ctx context.Context, actor *domain.Account, id string) error {
	cv, err := s.cvs.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "cv", id)
	}
	if !auth.IsAllowed(actor, auth.ActionOwnCV, cv) {
		return auth.Forbidden()
	}
	return s.cvs.Delete(ctx, id)
}
