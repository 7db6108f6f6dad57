// Package testutil provides in-memory implementations of the repository interfaces for
// service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
)

// Store is an in-memory database shared by all in-memory repositories.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	clock time.Time

	accounts     map[string]domain.Account
	profiles     map[string]domain.EmployerProfile
	steps        map[string]domain.Step
	substeps     map[string]domain.SubStep
	offers       map[string]domain.JobOffer
	applications map[string]domain.JobOfferApplication
	cvs          map[string]domain.CV
	inbox        map[string][]domain.Notification
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		clock:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		accounts:     map[string]domain.Account{},
		profiles:     map[string]domain.EmployerProfile{},
		steps:        map[string]domain.Step{},
		substeps:     map[string]domain.SubStep{},
		offers:       map[string]domain.JobOffer{},
		applications: map[string]domain.JobOfferApplication{},
		cvs:          map[string]domain.CV{},
		inbox:        map[string][]domain.Notification{},
	}
}

// tick returns a strictly increasing timestamp so creation order is deterministic.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

type memTxKey struct{}

// Transactor serializes units of work and checks the deferred (step, order) uniqueness
// constraint when the outermost unit commits.
func (s *Store) Transactor() repository.Transactor {
	return memTransactor{s}
}

type memTransactor struct{ s *Store }

func (t memTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	snapshot := t.s.snapshot()
	t.s.mu.Unlock()

	err := fn(context.WithValue(ctx, memTxKey{}, true))
	if err == nil {
		err = t.s.checkSubStepOrders()
	}
	if err != nil {
		t.s.mu.Lock()
		t.s.restore(snapshot)
		t.s.mu.Unlock()
	}
	return err
}

type storeSnapshot struct {
	accounts     map[string]domain.Account
	profiles     map[string]domain.EmployerProfile
	steps        map[string]domain.Step
	substeps     map[string]domain.SubStep
	offers       map[string]domain.JobOffer
	applications map[string]domain.JobOfferApplication
	cvs          map[string]domain.CV
}

func (s *Store) snapshot() storeSnapshot {
	return storeSnapshot{
		accounts:     copyMap(s.accounts),
		profiles:     copyMap(s.profiles),
		steps:        copyMap(s.steps),
		substeps:     copyMap(s.substeps),
		offers:       copyMap(s.offers),
		applications: copyMap(s.applications),
		cvs:          copyMap(s.cvs),
	}
}

func (s *Store) restore(snap storeSnapshot) {
	s.accounts = snap.accounts
	s.profiles = snap.profiles
	s.steps = snap.steps
	s.substeps = snap.substeps
	s.offers = snap.offers
	s.applications = snap.applications
	s.cvs = snap.cvs
}

func (s *Store) checkSubStepOrders() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]string{}
	for _, sub := range s.substeps {
		key := fmt.Sprintf("%s/%d", sub.StepID, sub.Order)
		if other, dup := seen[key]; dup {
			return fmt.Errorf("unique violation substeps (step_id, sort_order): %s and %s", other, sub.ID)
		}
		seen[key] = sub.ID
	}
	return nil
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func newID() string {
	return uuid.NewString()
}

func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).Before(created(items[j]))
	})
}
