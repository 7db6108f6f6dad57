package testutil

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
)

// JobOffers returns an in-memory JobOfferRepository.
func (s *Store) JobOffers() repository.JobOfferRepository { return offerStore{s} }

// Applications returns an in-memory JobApplicationRepository.
func (s *Store) Applications() repository.JobApplicationRepository { return applicationStore{s} }

// CVs returns an in-memory CVRepository.
func (s *Store) CVs() repository.CVRepository { return cvStore{s} }

type offerStore struct{ s *Store }

func (r offerStore) Create(_ context.Context, offer *domain.JobOffer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	offer.ID = newID()
	offer.CreatedAt = r.s.tick()
	offer.UpdatedAt = offer.CreatedAt
	r.s.offers[offer.ID] = *offer
	return nil
}

func (r offerStore) Update(_ context.Context, offer *domain.JobOffer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.offers[offer.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := *offer
	updated.EmployerID = current.EmployerID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.s.tick()
	r.s.offers[offer.ID] = updated
	offer.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r offerStore) GetByID(_ context.Context, id string) (*domain.JobOffer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	offer, ok := r.s.offers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &offer, nil
}

func (r offerStore) List(_ context.Context, filter repository.JobOfferFilter) ([]domain.JobOffer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := ""
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	var result []domain.JobOffer
	for _, offer := range r.s.offers {
		if offer.Removed && !filter.IncludeRemoved {
			continue
		}
		if filter.EmployerID != nil && (offer.EmployerID == nil || *offer.EmployerID != *filter.EmployerID) {
			continue
		}
		if filter.Confirmed != nil && offer.Confirmed != *filter.Confirmed {
			continue
		}
		if filter.ConfirmedSince != nil && (offer.ConfirmedAt == nil || !offer.ConfirmedAt.After(*filter.ConfirmedSince)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(offer.Title), search) &&
			!strings.Contains(strings.ToLower(offer.Description), search) {
			continue
		}
		result = append(result, offer)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset, 20), nil
}

type applicationStore struct{ s *Store }

func (r applicationStore) Create(_ context.Context, app *domain.JobOfferApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.applications {
		if existing.OfferID == app.OfferID && existing.UserID == app.UserID {
			return repository.ErrDuplicate
		}
	}
	app.ID = newID()
	app.CreatedAt = r.s.tick()
	r.s.applications[app.ID] = *app
	return nil
}

func (r applicationStore) Exists(_ context.Context, offerID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.applications {
		if existing.OfferID == offerID && existing.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r applicationStore) ListByOffer(_ context.Context, offerID string) ([]domain.JobOfferApplication, error) {
	return r.filter(func(app domain.JobOfferApplication) bool { return app.OfferID == offerID }, false), nil
}

func (r applicationStore) ListByUser(_ context.Context, userID string) ([]domain.JobOfferApplication, error) {
	return r.filter(func(app domain.JobOfferApplication) bool { return app.UserID == userID }, true), nil
}

func (r applicationStore) filter(keep func(domain.JobOfferApplication) bool, newestFirst bool) []domain.JobOfferApplication {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.JobOfferApplication
	for _, app := range r.s.applications {
		if keep(app) {
			result = append(result, app)
		}
	}
	sortByCreated(result, func(app domain.JobOfferApplication) time.Time { return app.CreatedAt })
	if newestFirst {
		reverse(result)
	}
	return result
}

type cvStore struct{ s *Store }

func (r cvStore) Create(_ context.Context, cv *domain.CV) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cv.ID = newID()
	cv.CreatedAt = r.s.tick()
	r.s.cvs[cv.ID] = *cv
	return nil
}

func (r cvStore) GetByID(_ context.Context, id string) (*domain.CV, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cv, ok := r.s.cvs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &cv, nil
}

func (r cvStore) ListByUser(_ context.Context, userID string) ([]domain.CV, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.CV
	for _, cv := range r.s.cvs {
		if cv.UserID == userID {
			result = append(result, cv)
		}
	}
	sortByCreated(result, func(cv domain.CV) time.Time { return cv.CreatedAt })
	reverse(result)
	return result, nil
}

func (r cvStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cvs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.cvs, id)
	return nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
