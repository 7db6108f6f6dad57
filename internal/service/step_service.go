package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

const stepTreeCacheKey = "steps:forest"

// StepService maintains the onboarding guide tree and the ordering of substeps.
type StepService struct {
	steps    repository.StepRepository
	substeps repository.SubStepRepository
	tx       repository.Transactor
	cache    *cache.Cache
	// generation advances on every invalidation; a forest built from an older
	// generation is never served.
	generation atomic.Uint64
	logger     *zap.Logger
}

// StepDependencies bundles collaborators for the step service.
type StepDependencies struct {
	StepRepo    repository.StepRepository
	SubStepRepo repository.SubStepRepository
	Transactor  repository.Transactor
	Logger      *zap.Logger
	// CacheTTL bounds how long a read of the whole tree is served from memory. Zero
	// disables caching.
	CacheTTL time.Duration
}

// StepInput describes step creation.
type StepInput struct {
	ParentID    *string
	Title       string
	Description string
	Video       *string
}

// StepUpdateInput carries the fields to change on a step.
type StepUpdateInput struct {
	Title       *string
	Description *string
	Video       *string
}

// SubStepInput describes substep creation.
type SubStepInput struct {
	Title       string
	Description string
	Video       *string
}

// SubStepUpdateInput carries the content fields to change on a substep.
type SubStepUpdateInput struct {
	Title       *string
	Description *string
	Video       *string
}

type stepForest struct {
	generation uint64
	roots      []*domain.StepNode
	index      map[string]*domain.StepNode
}

// NewStepService constructs the service.
func NewStepService(deps StepDependencies) *StepService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &StepService{
		steps:    deps.StepRepo,
		substeps: deps.SubStepRepo,
		tx:       deps.Transactor,
		logger:   logger,
	}
	if deps.CacheTTL > 0 {
		svc.cache = cache.New(deps.CacheTTL, 2*deps.CacheTTL)
	}
	return svc
}

func (s *StepService) authorize(actor *domain.Account) error {
	if !auth.IsAllowed(actor, auth.ActionManageSteps, nil) {
		return auth.Forbidden()
	}
	return nil
}

func (s *StepService) invalidate() {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Delete(stepTreeCacheKey)
	}
}

// CreateStep adds a step. Without a parent the step is attached to the root, or becomes the
// root when the tree is empty.
func (s *StepService) CreateStep(ctx context.Context, actor *domain.Account, input StepInput) (*domain.Step, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"title": "is required"})
	}

	step := &domain.Step{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Video:       input.Video,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if input.ParentID != nil {
			if err := s.steps.LockForUpdate(ctx, *input.ParentID); err != nil {
				return notFound(err, "step", *input.ParentID)
			}
			step.ParentID = input.ParentID
		} else {
			root, err := s.steps.GetRoot(ctx)
			switch {
			case err == nil:
				step.ParentID = &root.ID
			case !apperrors.IsNotFound(err):
				return err
			}
		}
		if err := s.steps.Create(ctx, step); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict("root step already exists", nil)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return step, nil
}

// UpdateStep changes the content of a step.
func (s *StepService) UpdateStep(ctx context.Context, actor *domain.Account, id string, input StepUpdateInput) (*domain.Step, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	var step *domain.Step
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		step, err = s.steps.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "step", id)
		}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return apperrors.NewValidationError("title must not be empty", map[string]any{"title": "is required"})
			}
			step.Title = title
		}
		if input.Description != nil {
			step.Description = strings.TrimSpace(*input.Description)
		}
		if input.Video != nil {
			step.Video = input.Video
		}
		return s.steps.Update(ctx, step)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return step, nil
}

// GetStep returns a step with its ordered substeps and nested children.
func (s *StepService) GetStep(ctx context.Context, id string) (*domain.StepNode, error) {
	forest, err := s.forest(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := forest.index[id]
	if !ok {
		return nil, apperrors.NewNotFound("step", map[string]any{"id": id})
	}
	return node, nil
}

// Tree returns every top-level step with its nested content.
func (s *StepService) Tree(ctx context.Context) ([]*domain.StepNode, error) {
	forest, err := s.forest(ctx)
	if err != nil {
		return nil, err
	}
	return forest.roots, nil
}

func (s *StepService) forest(ctx context.Context) (*stepForest, error) {
	generation := s.generation.Load()
	if s.cache != nil {
		if cached, ok := s.cache.Get(stepTreeCacheKey); ok && cached.(*stepForest).generation == generation {
			return cached.(*stepForest), nil
		}
	}
	steps, err := s.steps.List(ctx)
	if err != nil {
		return nil, err
	}
	substeps, err := s.substeps.List(ctx)
	if err != nil {
		return nil, err
	}

	forest := &stepForest{generation: generation, index: make(map[string]*domain.StepNode, len(steps))}
	for _, step := range steps {
		forest.index[step.ID] = &domain.StepNode{Step: step, SubSteps: []domain.SubStep{}, Children: []*domain.StepNode{}}
	}
	for _, sub := range substeps {
		if node, ok := forest.index[sub.StepID]; ok {
			node.SubSteps = append(node.SubSteps, sub)
		}
	}
	for _, step := range steps {
		node := forest.index[step.ID]
		if step.ParentID != nil {
			if parent, ok := forest.index[*step.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		forest.roots = append(forest.roots, node)
	}
	for _, node := range forest.index {
		sort.SliceStable(node.SubSteps, func(i, j int) bool {
			return node.SubSteps[i].Order < node.SubSteps[j].Order
		})
	}

	if s.cache != nil && s.generation.Load() == generation {
		s.cache.SetDefault(stepTreeCacheKey, forest)
	}
	return forest, nil
}

// CreateSubStep appends a substep after the current last sibling.
func (s *StepService) CreateSubStep(ctx context.Context, actor *domain.Account, stepID string, input SubStepInput) (*domain.SubStep, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"title": "is required"})
	}
	sub := &domain.SubStep{
		StepID:      stepID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Video:       input.Video,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.steps.LockForUpdate(ctx, stepID); err != nil {
			return notFound(err, "step", stepID)
		}
		highest, ok, err := s.substeps.MaxOrder(ctx, stepID)
		if err != nil {
			return err
		}
		if ok {
			sub.Order = highest + 1
		}
		return s.substeps.Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return sub, nil
}

// UpdateSubStep changes substep content. Position changes go through SwitchPlaces and
// MoveToSpot.
func (s *StepService) UpdateSubStep(ctx context.Context, actor *domain.Account, id string, input SubStepUpdateInput) (*domain.SubStep, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	var sub *domain.SubStep
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.substeps.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "substep", id)
		}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return apperrors.NewValidationError("title must not be empty", map[string]any{"title": "is required"})
			}
			sub.Title = title
		}
		if input.Description != nil {
			sub.Description = strings.TrimSpace(*input.Description)
		}
		if input.Video != nil {
			sub.Video = input.Video
		}
		return s.substeps.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return sub, nil
}

// SwitchPlaces swaps the positions of two substeps of the same step and returns the
// step's substeps in their new order.
func (s *StepService) SwitchPlaces(ctx context.Context, actor *domain.Account, stepID, firstID, secondID string) ([]domain.SubStep, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	var ordered []domain.SubStep
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.steps.LockForUpdate(ctx, stepID); err != nil {
			return notFound(err, "step", stepID)
		}
		first, err := s.substeps.GetByID(ctx, firstID)
		if err != nil {
			return notFound(err, "substep", firstID)
		}
		second, err := s.substeps.GetByID(ctx, secondID)
		if err != nil {
			return notFound(err, "substep", secondID)
		}
		if first.StepID != stepID || second.StepID != stepID {
			return apperrors.NewValidationError("substeps must belong to the same step", map[string]any{
				"step_id": stepID,
			})
		}
		if first.ID != second.ID {
			if err := s.substeps.SetOrder(ctx, first.ID, second.Order); err != nil {
				return err
			}
			if err := s.substeps.SetOrder(ctx, second.ID, first.Order); err != nil {
				return err
			}
		}
		ordered, err = s.reorder(ctx, stepID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return ordered, nil
}

// MoveToSpot places a substep at position spot, shifting the siblings at or after it.
func (s *StepService) MoveToSpot(ctx context.Context, actor *domain.Account, id string, spot int) ([]domain.SubStep, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	if spot < 0 {
		return nil, apperrors.NewValidationError("order must not be negative", map[string]any{"order": "must be greater than or equal to 0"})
	}
	var ordered []domain.SubStep
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.substeps.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "substep", id)
		}
		if err := s.steps.LockForUpdate(ctx, sub.StepID); err != nil {
			return notFound(err, "step", sub.StepID)
		}
		siblings, err := s.substeps.ListByStep(ctx, sub.StepID)
		if err != nil {
			return err
		}
		// Highest first so no two rows share an order mid-shift.
		for i := len(siblings) - 1; i >= 0; i-- {
			if siblings[i].Order < spot {
				continue
			}
			if err := s.substeps.SetOrder(ctx, siblings[i].ID, siblings[i].Order+1); err != nil {
				return err
			}
		}
		if err := s.substeps.SetOrder(ctx, sub.ID, spot); err != nil {
			return err
		}
		ordered, err = s.reorder(ctx, sub.StepID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return ordered, nil
}

// DeleteSubStep removes a substep and closes the gap it leaves.
func (s *StepService) DeleteSubStep(ctx context.Context, actor *domain.Account, id string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.substeps.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "substep", id)
		}
		if err := s.steps.LockForUpdate(ctx, sub.StepID); err != nil {
			return notFound(err, "step", sub.StepID)
		}
		if err := s.substeps.Delete(ctx, sub.ID); err != nil {
			return err
		}
		_, err = s.reorder(ctx, sub.StepID)
		return err
	})
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// DeleteStep removes a step. Children of a regular step move up to its parent. Deleting the
// root discards the whole tree.
func (s *StepService) DeleteStep(ctx context.Context, actor *domain.Account, id string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		step, err := s.steps.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "step", id)
		}
		if step.IsRoot() {
			return s.clearTree(ctx, step.ID)
		}
		if err := s.steps.LockForUpdate(ctx, *step.ParentID); err != nil {
			return notFound(err, "step", *step.ParentID)
		}
		moved, err := s.steps.Reparent(ctx, step.ID, *step.ParentID)
		if err != nil {
			return err
		}
		if _, err := s.substeps.DeleteByStep(ctx, step.ID); err != nil {
			return err
		}
		if err := s.steps.Delete(ctx, step.ID); err != nil {
			return err
		}
		s.logger.Info("step deleted",
			zap.String("step_id", step.ID),
			zap.Int64("children_promoted", moved))
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *StepService) clearTree(ctx context.Context, rootID string) error {
	substeps, err := s.substeps.DeleteAll(ctx)
	if err != nil {
		return err
	}
	steps, err := s.steps.DeleteAllExcept(ctx, rootID)
	if err != nil {
		return err
	}
	if err := s.steps.Delete(ctx, rootID); err != nil {
		return err
	}
	s.logger.Warn("step tree cleared",
		zap.Int64("steps_deleted", steps+1),
		zap.Int64("substeps_deleted", substeps))
	return nil
}

// reorder renumbers the substeps of a step densely from zero, keeping their relative order.
func (s *StepService) reorder(ctx context.Context, stepID string) ([]domain.SubStep, error) {
	siblings, err := s.substeps.ListByStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	for i := range siblings {
		if siblings[i].Order == i {
			continue
		}
		if err := s.substeps.SetOrder(ctx, siblings[i].ID, i); err != nil {
			return nil, err
		}
		siblings[i].Order = i
	}
	return siblings, nil
}
