package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/events"
	"github.com/spec-kit/social-services/internal/repository"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

// JobOfferService drives the job offer lifecycle: publication, moderation, removal and
// applications.
type JobOfferService struct {
	offers       repository.JobOfferRepository
	applications repository.JobApplicationRepository
	cvs          repository.CVRepository
	tx           repository.Transactor
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// JobOfferDependencies bundles collaborators for the job offer service.
type JobOfferDependencies struct {
	OfferRepo       repository.JobOfferRepository
	ApplicationRepo repository.JobApplicationRepository
	CVRepo          repository.CVRepository
	Transactor      repository.Transactor
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// JobOfferInput describes a new offer.
type JobOfferInput struct {
	Title       string
	Description string
	Location    string
	SalaryMin   *int
	SalaryMax   *int
}

// JobOfferUpdateInput carries the fields to change on an offer.
type JobOfferUpdateInput struct {
	Title       *string
	Description *string
	Location    *string
	SalaryMin   *int
	SalaryMax   *int
}

// JobOfferListFilter narrows offer listings.
type JobOfferListFilter struct {
	Confirmed  *bool
	SearchTerm *string
	// ConfirmedSince restricts the listing to offers confirmed after the given instant.
	ConfirmedSince *time.Time
	Limit          int
	Offset         int
}

// NewJobOfferService constructs the service.
func NewJobOfferService(deps JobOfferDependencies) *JobOfferService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobOfferService{
		offers:       deps.OfferRepo,
		applications: deps.ApplicationRepo,
		cvs:          deps.CVRepo,
		tx:           deps.Transactor,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
	}
}

func isJobsStaff(actor *domain.Account) bool {
	return auth.IsAllowed(actor, auth.ActionModerateJobs, nil)
}

// Create publishes a new unconfirmed offer owned by the calling employer.
func (s *JobOfferService) Create(ctx context.Context, actor *domain.Account, input JobOfferInput) (*domain.JobOffer, error) {
	if !auth.IsAllowed(actor, auth.ActionCreateOffer, nil) {
		return nil, auth.Forbidden()
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"title": "is required"})
	}
	if err := validateSalary(input.SalaryMin, input.SalaryMax); err != nil {
		return nil, err
	}

	employerID := actor.ID
	offer := &domain.JobOffer{
		EmployerID:  &employerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		SalaryMin:   input.SalaryMin,
		SalaryMax:   input.SalaryMax,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventJobOfferCreated, actor, offer)
	return offer, nil
}

// Get returns an offer visible to actor, which may be nil for anonymous callers. Hidden
// offers are reported as missing rather than forbidden.
func (s *JobOfferService) Get(ctx context.Context, actor *domain.Account, id string) (*domain.JobOffer, error) {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "job offer", id)
	}
	if offer.Removed && !isJobsStaff(actor) {
		return nil, apperrors.NewNotFound("job offer", map[string]any{"id": id})
	}
	if !offer.Confirmed && !auth.IsAllowed(actor, auth.ActionViewHidden, offer) {
		return nil, apperrors.NewNotFound("job offer", map[string]any{"id": id})
	}
	return offer, nil
}

// Edit updates an offer. Salary bounds are validated against the stored value of whichever
// bound is not being changed.
func (s *JobOfferService) Edit(ctx context.Context, actor *domain.Account, id string, input JobOfferUpdateInput) (*domain.JobOffer, error) {
	var offer *domain.JobOffer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		offer, err = s.offers.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "job offer", id)
		}
		if !auth.IsAllowed(actor, auth.ActionEditOffer, offer) {
			return auth.Forbidden()
		}
		if offer.Removed {
			return apperrors.NewInvalidState("job offer has been removed", map[string]any{"id": id})
		}

		salaryMin, salaryMax := offer.SalaryMin, offer.SalaryMax
		if input.SalaryMin != nil {
			salaryMin = input.SalaryMin
		}
		if input.SalaryMax != nil {
			salaryMax = input.SalaryMax
		}
		if err := validateSalary(salaryMin, salaryMax); err != nil {
			return err
		}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return apperrors.NewValidationError("title must not be empty", map[string]any{"title": "is required"})
			}
			offer.Title = title
		}
		if input.Description != nil {
			offer.Description = strings.TrimSpace(*input.Description)
		}
		if input.Location != nil {
			offer.Location = strings.TrimSpace(*input.Location)
		}
		offer.SalaryMin, offer.SalaryMax = salaryMin, salaryMax
		return s.offers.Update(ctx, offer)
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// Remove hides an offer from every listing. Removal cannot be undone.
func (s *JobOfferService) Remove(ctx context.Context, actor *domain.Account, id string) error {
	var offer *domain.JobOffer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		offer, err = s.offers.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "job offer", id)
		}
		if !auth.IsAllowed(actor, auth.ActionRemoveOffer, offer) {
			return auth.Forbidden()
		}
		if offer.Removed {
			return apperrors.NewInvalidState("job offer already removed", map[string]any{"id": id})
		}
		offer.Removed = true
		return s.offers.Update(ctx, offer)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.EventJobOfferRemoved, actor, offer)
	return nil
}

// Confirm sets whether an offer is approved for the public listing.
func (s *JobOfferService) Confirm(ctx context.Context, actor *domain.Account, id string, confirmed bool) (*domain.JobOffer, error) {
	var (
		offer   *domain.JobOffer
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		offer, err = s.offers.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "job offer", id)
		}
		if !auth.IsAllowed(actor, auth.ActionConfirmOffer, offer) {
			return auth.Forbidden()
		}
		if offer.Removed {
			return apperrors.NewInvalidState("job offer has been removed", map[string]any{"id": id})
		}
		changed = offer.Confirmed != confirmed
		if !changed {
			return nil
		}
		offer.Confirmed = confirmed
		offer.ConfirmedAt = nil
		if confirmed {
			now := time.Now().UTC()
			offer.ConfirmedAt = &now
		}
		return s.offers.Update(ctx, offer)
	})
	if err != nil {
		return nil, err
	}
	if changed && confirmed {
		s.publish(ctx, events.EventJobOfferConfirmed, actor, offer)
	}
	return offer, nil
}

// Apply records a standard user's application to a public offer with one of their CVs.
func (s *JobOfferService) Apply(ctx context.Context, actor *domain.Account, offerID, cvID string) (*domain.JobOfferApplication, error) {
	if !auth.IsAllowed(actor, auth.ActionApplyOffer, nil) {
		return nil, auth.Forbidden()
	}
	var (
		offer       *domain.JobOffer
		application *domain.JobOfferApplication
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		offer, err = s.offers.GetByID(ctx, offerID)
		if err != nil {
			return notFound(err, "job offer", offerID)
		}
		if !offer.Public() {
			return apperrors.NewNotFound("job offer", map[string]any{"id": offerID})
		}
		cv, err := s.cvs.GetByID(ctx, cvID)
		if err != nil {
			return notFound(err, "cv", cvID)
		}
		if !auth.IsAllowed(actor, auth.ActionOwnCV, cv) {
			return auth.Forbidden()
		}
		exists, err := s.applications.Exists(ctx, offerID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewForbidden("you have already applied to this job offer")
		}
		application = &domain.JobOfferApplication{OfferID: offerID, UserID: actor.ID, CVID: cvID}
		if err := s.applications.Create(ctx, application); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewForbidden("you have already applied to this job offer")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventJobApplication,
		SubjectID: offer.ID,
		Actor:     events.ActorOf(actor),
		Payload: events.JobApplicationPayload{
			ApplicationID: application.ID,
			OfferTitle:    offer.Title,
			EmployerID:    offer.EmployerID,
			ApplicantID:   actor.ID,
		},
	})
	return application, nil
}

// ListApplications returns the applications to an offer for its employer or jobs staff.
func (s *JobOfferService) ListApplications(ctx context.Context, actor *domain.Account, offerID string) ([]domain.JobOfferApplication, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, notFound(err, "job offer", offerID)
	}
	if !auth.IsAllowed(actor, auth.ActionViewHidden, offer) {
		return nil, auth.Forbidden()
	}
	return s.applications.ListByOffer(ctx, offerID)
}

// ListPublic returns confirmed offers that have not been removed.
func (s *JobOfferService) ListPublic(ctx context.Context, filter JobOfferListFilter) ([]domain.JobOffer, error) {
	confirmed := true
	return s.offers.List(ctx, repository.JobOfferFilter{
		Confirmed:      &confirmed,
		ConfirmedSince: filter.ConfirmedSince,
		SearchTerm:     filter.SearchTerm,
		Limit:          filter.Limit,
		Offset:         filter.Offset,
	})
}

// ListForEmployer returns the caller's own offers, confirmed or not.
func (s *JobOfferService) ListForEmployer(ctx context.Context, actor *domain.Account, filter JobOfferListFilter) ([]domain.JobOffer, error) {
	if !auth.IsAllowed(actor, auth.ActionCreateOffer, nil) {
		return nil, auth.Forbidden()
	}
	return s.offers.List(ctx, repository.JobOfferFilter{
		EmployerID: &actor.ID,
		Confirmed:  filter.Confirmed,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// ListForStaff returns every offer that has not been removed, for moderation.
func (s *JobOfferService) ListForStaff(ctx context.Context, actor *domain.Account, filter JobOfferListFilter) ([]domain.JobOffer, error) {
	if !isJobsStaff(actor) {
		return nil, auth.Forbidden()
	}
	return s.offers.List(ctx, repository.JobOfferFilter{
		Confirmed:  filter.Confirmed,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

func (s *JobOfferService) publish(ctx context.Context, eventType events.EventType, actor *domain.Account, offer *domain.JobOffer) {
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      eventType,
		SubjectID: offer.ID,
		Actor:     events.ActorOf(actor),
		Payload: events.JobOfferPayload{
			Title:      offer.Title,
			EmployerID: offer.EmployerID,
			Confirmed:  offer.Confirmed,
		},
	})
}

func validateSalary(salaryMin, salaryMax *int) error {
	details := map[string]any{}
	if salaryMin != nil && *salaryMin < 0 {
		details["salary_min"] = "must be greater than or equal to 0"
	}
	if salaryMax != nil && *salaryMax < 0 {
		details["salary_max"] = "must be greater than or equal to 0"
	}
	if len(details) == 0 && salaryMin != nil && salaryMax != nil && *salaryMin > *salaryMax {
		details["salary_min"] = "must be less than or equal to salary_max"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid salary range", details)
	}
	return nil
}
