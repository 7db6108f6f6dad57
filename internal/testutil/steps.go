package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
)

// Steps returns an in-memory StepRepository.
func (s *Store) Steps() repository.StepRepository { return stepStore{s} }

// SubSteps returns an in-memory SubStepRepository.
func (s *Store) SubSteps() repository.SubStepRepository { return subStepStore{s} }

type stepStore struct{ s *Store }

func (r stepStore) Create(_ context.Context, step *domain.Step) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if step.ParentID == nil {
		for _, existing := range r.s.steps {
			if existing.ParentID == nil {
				return repository.ErrDuplicate
			}
		}
	} else if _, ok := r.s.steps[*step.ParentID]; !ok {
		return pgx.ErrNoRows
	}
	step.ID = newID()
	step.CreatedAt = r.s.tick()
	step.UpdatedAt = step.CreatedAt
	r.s.steps[step.ID] = *step
	return nil
}

func (r stepStore) Update(_ context.Context, step *domain.Step) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.steps[step.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := *step
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.s.tick()
	r.s.steps[step.ID] = updated
	return nil
}

func (r stepStore) GetByID(_ context.Context, id string) (*domain.Step, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	step, ok := r.s.steps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &step, nil
}

func (r stepStore) GetRoot(_ context.Context) (*domain.Step, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, step := range r.s.steps {
		if step.ParentID == nil {
			root := step
			return &root, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r stepStore) List(_ context.Context) ([]domain.Step, error) {
	return r.filter(func(domain.Step) bool { return true }), nil
}

func (r stepStore) ListChildren(_ context.Context, parentID string) ([]domain.Step, error) {
	return r.filter(func(step domain.Step) bool {
		return step.ParentID != nil && *step.ParentID == parentID
	}), nil
}

func (r stepStore) filter(keep func(domain.Step) bool) []domain.Step {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Step
	for _, step := range r.s.steps {
		if keep(step) {
			result = append(result, step)
		}
	}
	sortByCreated(result, func(step domain.Step) time.Time { return step.CreatedAt })
	return result
}

func (r stepStore) Reparent(_ context.Context, fromParentID, toParentID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var moved int64
	for id, step := range r.s.steps {
		if step.ParentID != nil && *step.ParentID == fromParentID {
			parent := toParentID
			step.ParentID = &parent
			step.UpdatedAt = r.s.tick()
			r.s.steps[id] = step
			moved++
		}
	}
	return moved, nil
}

func (r stepStore) LockForUpdate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.steps[id]; !ok {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete cascades to descendant steps and their substeps like the foreign keys do.
func (r stepStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.steps[id]; !ok {
		return pgx.ErrNoRows
	}
	r.s.deleteStepLocked(id)
	return nil
}

func (r stepStore) DeleteAllExcept(_ context.Context, keepID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for id := range r.s.steps {
		if id == keepID {
			continue
		}
		delete(r.s.steps, id)
		r.s.deleteSubStepsLocked(id)
		deleted++
	}
	return deleted, nil
}

func (s *Store) deleteStepLocked(id string) {
	delete(s.steps, id)
	s.deleteSubStepsLocked(id)
	for childID, step := range s.steps {
		if step.ParentID != nil && *step.ParentID == id {
			s.deleteStepLocked(childID)
		}
	}
}

func (s *Store) deleteSubStepsLocked(stepID string) int64 {
	var deleted int64
	for id, sub := range s.substeps {
		if sub.StepID == stepID {
			delete(s.substeps, id)
			deleted++
		}
	}
	return deleted
}

type subStepStore struct{ s *Store }

func (r subStepStore) Create(_ context.Context, sub *domain.SubStep) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.steps[sub.StepID]; !ok {
		return pgx.ErrNoRows
	}
	sub.ID = newID()
	sub.CreatedAt = r.s.tick()
	sub.UpdatedAt = sub.CreatedAt
	r.s.substeps[sub.ID] = *sub
	return nil
}

// Update changes content only; order moves go through SetOrder.
func (r subStepStore) Update(_ context.Context, sub *domain.SubStep) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.substeps[sub.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	current.Title = sub.Title
	current.Description = sub.Description
	current.Video = sub.Video
	current.UpdatedAt = r.s.tick()
	r.s.substeps[sub.ID] = current
	return nil
}

func (r subStepStore) GetByID(_ context.Context, id string) (*domain.SubStep, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.substeps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &sub, nil
}

func (r subStepStore) List(_ context.Context) ([]domain.SubStep, error) {
	result := r.filter(func(domain.SubStep) bool { return true })
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StepID < result[j].StepID
	})
	return result, nil
}

func (r subStepStore) ListByStep(_ context.Context, stepID string) ([]domain.SubStep, error) {
	return r.filter(func(sub domain.SubStep) bool { return sub.StepID == stepID }), nil
}

// filter orders by position, then creation time, then id.
func (r subStepStore) filter(keep func(domain.SubStep) bool) []domain.SubStep {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.SubStep
	for _, sub := range r.s.substeps {
		if keep(sub) {
			result = append(result, sub)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return result
}

func (r subStepStore) MaxOrder(_ context.Context, stepID string) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	highest, found := 0, false
	for _, sub := range r.s.substeps {
		if sub.StepID != stepID {
			continue
		}
		if !found || sub.Order > highest {
			highest = sub.Order
		}
		found = true
	}
	return highest, found, nil
}

func (r subStepStore) SetOrder(_ context.Context, id string, order int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.substeps[id]
	if !ok {
		return pgx.ErrNoRows
	}
	sub.Order = order
	sub.UpdatedAt = r.s.tick()
	r.s.substeps[id] = sub
	return nil
}

func (r subStepStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.substeps[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.substeps, id)
	return nil
}

func (r subStepStore) DeleteByStep(_ context.Context, stepID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.deleteSubStepsLocked(stepID), nil
}

func (r subStepStore) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	deleted := int64(len(r.s.substeps))
	r.s.substeps = map[string]domain.SubStep{}
	return deleted, nil
}
