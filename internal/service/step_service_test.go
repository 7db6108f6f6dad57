package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
	"github.com/spec-kit/social-services/internal/testutil"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

type stepFixture struct {
	svc    *StepService
	store  *testutil.Store
	editor *domain.Account
}

func newStepFixture(t *testing.T) stepFixture {
	t.Helper()
	store := testutil.NewStore()
	editor := store.Staff(domain.StaffGroupGuideEditor)
	svc := NewStepService(StepDependencies{
		StepRepo:    store.Steps(),
		SubStepRepo: store.SubSteps(),
		Transactor:  store.Transactor(),
	})
	return stepFixture{svc: svc, store: store, editor: &editor}
}

func (f stepFixture) step(t *testing.T, title string, parentID *string) *domain.Step {
	t.Helper()
	step, err := f.svc.CreateStep(context.Background(), f.editor, StepInput{Title: title, ParentID: parentID})
	require.NoError(t, err)
	return step
}

func (f stepFixture) substep(t *testing.T, stepID, title string) *domain.SubStep {
	t.Helper()
	sub, err := f.svc.CreateSubStep(context.Background(), f.editor, stepID, SubStepInput{Title: title})
	require.NoError(t, err)
	return sub
}

func orderOf(t *testing.T, f stepFixture, stepID string) map[string]int {
	t.Helper()
	subs, err := f.store.SubSteps().ListByStep(context.Background(), stepID)
	require.NoError(t, err)
	orders := map[string]int{}
	for _, sub := range subs {
		orders[sub.Title] = sub.Order
	}
	return orders
}

func assertDense(t *testing.T, f stepFixture, stepID string) {
	t.Helper()
	subs, err := f.store.SubSteps().ListByStep(context.Background(), stepID)
	require.NoError(t, err)
	for i, sub := range subs {
		assert.Equal(t, i, sub.Order, "substep %s", sub.Title)
	}
}

func TestCreateStepAttachesToRoot(t *testing.T) {
	f := newStepFixture(t)

	root := f.step(t, "Root", nil)
	assert.True(t, root.IsRoot())

	child := f.step(t, "Housing", nil)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	missing := "does-not-exist"
	_, err := f.svc.CreateStep(context.Background(), f.editor, StepInput{Title: "x", ParentID: &missing})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStepMutationsRequireGuideEditor(t *testing.T) {
	f := newStepFixture(t)
	ctx := context.Background()
	root := f.step(t, "Root", nil)

	moderator := f.store.Staff(domain.StaffGroupJobsModeration)
	_, err := f.svc.CreateStep(ctx, &moderator, StepInput{Title: "x"})
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	waiting := f.store.AddAccount(domain.AccountTypeStaff, domain.VerificationWaiting, domain.StaffGroupGuideEditor)
	_, err = f.svc.CreateSubStep(ctx, &waiting, root.ID, SubStepInput{Title: "x"})
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(f.svc.DeleteStep(ctx, nil, root.ID)).Code)
}

func TestCreateSubStepAppends(t *testing.T) {
	f := newStepFixture(t)
	root := f.step(t, "Root", nil)

	first := f.substep(t, root.ID, "first")
	second := f.substep(t, root.ID, "second")
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	_, err := f.svc.CreateSubStep(context.Background(), f.editor, "missing", SubStepInput{Title: "x"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSwitchPlacesIsSelfInverse(t *testing.T) {
	f := newStepFixture(t)
	ctx := context.Background()
	root := f.step(t, "Root", nil)
	a := f.substep(t, root.ID, "a")
	f.substep(t, root.ID, "b")
	c := f.substep(t, root.ID, "c")

	before := orderOf(t, f, root.ID)

	ordered, err := f.svc.SwitchPlaces(ctx, f.editor, root.ID, a.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, "c", ordered[0].Title)
	assert.Equal(t, "a", ordered[2].Title)

	_, err = f.svc.SwitchPlaces(ctx, f.editor, root.ID, a.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before, orderOf(t, f, root.ID))
}

func TestSwitchPlacesRejectsDifferentParents(t *testing.T) {
	f := newStepFixture(t)
	root := f.step(t, "Root", nil)
	other := f.step(t, "Other", nil)
	a := f.substep(t, root.ID, "a")
	b := f.substep(t, other.ID, "b")

	_, err := f.svc.SwitchPlaces(context.Background(), f.editor, root.ID, a.ID, b.ID)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, 0, orderOf(t, f, root.ID)["a"])
	assert.Equal(t, 0, orderOf(t, f, other.ID)["b"])
}

func TestMoveToSpot(t *testing.T) {
	f := newStepFixture(t)
	ctx := context.Background()
	root := f.step(t, "Root", nil)
	for _, title := range []string{"a", "b", "c", "d"} {
		f.substep(t, root.ID, title)
	}
	d := orderOf(t, f, root.ID)
	require.Equal(t, 3, d["d"])

	subs, err := f.store.SubSteps().ListByStep(ctx, root.ID)
	require.NoError(t, err)

	_, err = f.svc.MoveToSpot(ctx, f.editor, subs[3].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "d": 1, "b": 2, "c": 3}, orderOf(t, f, root.ID))

	_, err = f.svc.MoveToSpot(ctx, f.editor, subs[0].ID, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"d": 0, "b": 1, "c": 2, "a": 3}, orderOf(t, f, root.ID))

	_, err = f.svc.MoveToSpot(ctx, f.editor, subs[0].ID, -1)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestOrdersStayDenseAcrossMutations(t *testing.T) {
	f := newStepFixture(t)
	ctx := context.Background()
	root := f.step(t, "Root", nil)
	var ids []string
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, f.substep(t, root.ID, title).ID)
	}

	require.NoError(t, f.svc.DeleteSubStep(ctx, f.editor, ids[1]))
	assertDense(t, f, root.ID)

	_, err := f.svc.MoveToSpot(ctx, f.editor, ids[4], 0)
	require.NoError(t, err)
	assertDense(t, f, root.ID)

	_, err = f.svc.SwitchPlaces(ctx, f.editor, root.ID, ids[0], ids[3])
	require.NoError(t, err)
	assertDense(t, f, root.ID)

	f.substep(t, root.ID, "f")
	require.NoError(t, f.svc.DeleteSubStep(ctx, f.editor, ids[4]))
	assertDense(t, f, root.ID)
	assert.Equal(t, map[string]int{"d": 0, "c": 1, "a": 2, "f": 3}, orderOf(t, f, root.ID))
}

func TestDeleteStepPromotesChildren(t *testing.T) {
	f := newStepFixture(t)
	ctx := context.Background()
	root := f.step(t, "Root", nil)
	middle := f.step(t, "Middle", &root.ID)
	leaf := f.step(t, "Leaf", &middle.ID)
	grandchild := f.step(t, "Grandchild", &leaf.ID)
	f.substep(t, middle.ID, "gone")
	kept := f.substep(t, leaf.ID, "kept")

	require.NoError(t, f.svc.DeleteStep(ctx, f.editor, middle.ID))

	moved, err := f.store.Steps().GetByID(ctx, leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *moved.ParentID)

	untouched, err := f.store.Steps().GetByID(ctx, grandchild.ID)
	require.NoError(t, err)
	assert.Equal(t, leaf.ID, *untouched.ParentID)

	_, err = f.store.SubSteps().GetByID(ctx, kept.ID)
	assert.NoError(t, err)
	gone, err := f.store.SubSteps().ListByStep(ctx, middle.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestDeleteRootClearsTree(t *testing.T) {
	f := newStepFixture(t)
	ctx := context.Background()
	root := f.step(t, "Root", nil)
	a := f.step(t, "A", nil)
	f.step(t, "B", &a.ID)
	f.substep(t, root.ID, "r")
	f.substep(t, a.ID, "a")

	require.NoError(t, f.svc.DeleteStep(ctx, f.editor, root.ID))

	steps, err := f.store.Steps().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, steps)
	subs, err := f.store.SubSteps().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	tree, err := f.svc.Tree(ctx)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestStepScenario(t *testing.T) {
	f := newStepFixture(t)
	ctx := context.Background()
	root := f.step(t, "Root", nil)
	a := f.step(t, "A", &root.ID)
	s1 := f.substep(t, a.ID, "S1")
	s2 := f.substep(t, a.ID, "S2")
	require.Equal(t, 0, s1.Order)
	require.Equal(t, 1, s2.Order)

	_, err := f.svc.MoveToSpot(ctx, f.editor, s2.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"S2": 0, "S1": 1}, orderOf(t, f, a.ID))

	require.NoError(t, f.svc.DeleteStep(ctx, f.editor, a.ID))
	subs, err := f.store.SubSteps().ListByStep(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	node, err := f.svc.GetStep(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, node.Children)
}

func TestTreeIsCachedUntilMutation(t *testing.T) {
	store := testutil.NewStore()
	editor := store.Staff(domain.StaffGroupGuideEditor)
	svc := NewStepService(StepDependencies{
		StepRepo:    store.Steps(),
		SubStepRepo: store.SubSteps(),
		Transactor:  store.Transactor(),
		CacheTTL:    time.Minute,
	})
	ctx := context.Background()

	root, err := svc.CreateStep(ctx, &editor, StepInput{Title: "Root"})
	require.NoError(t, err)
	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)

	// A write that bypasses the service is not visible until the cache is invalidated.
	require.NoError(t, store.SubSteps().Create(ctx, &domain.SubStep{StepID: root.ID, Title: "direct"}))
	tree, err = svc.Tree(ctx)
	require.NoError(t, err)
	assert.Empty(t, tree[0].SubSteps)

	_, err = svc.CreateSubStep(ctx, &editor, root.ID, SubStepInput{Title: "via service"})
	require.NoError(t, err)
	tree, err = svc.Tree(ctx)
	require.NoError(t, err)
	assert.Len(t, tree[0].SubSteps, 2)
}

// racingSteps runs beforeReturn once, after the step listing was read and before it is
// returned, to let a write commit in the middle of a tree read.
type racingSteps struct {
	repository.StepRepository
	beforeReturn func()
}

func (r *racingSteps) List(ctx context.Context) ([]domain.Step, error) {
	steps, err := r.StepRepository.List(ctx)
	if hook := r.beforeReturn; hook != nil {
		r.beforeReturn = nil
		hook()
	}
	return steps, err
}

func TestTreeReadOverlappingWriteIsNotCached(t *testing.T) {
	store := testutil.NewStore()
	editor := store.Staff(domain.StaffGroupGuideEditor)
	steps := &racingSteps{StepRepository: store.Steps()}
	svc := NewStepService(StepDependencies{
		StepRepo:    steps,
		SubStepRepo: store.SubSteps(),
		Transactor:  store.Transactor(),
		CacheTTL:    time.Minute,
	})
	ctx := context.Background()

	root, err := svc.CreateStep(ctx, &editor, StepInput{Title: "Root"})
	require.NoError(t, err)

	steps.beforeReturn = func() {
		_, err := svc.CreateStep(ctx, &editor, StepInput{Title: "A", ParentID: &root.ID})
		require.NoError(t, err)
	}
	stale, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Empty(t, stale[0].Children)

	fresh, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	require.Len(t, fresh[0].Children, 1)
	assert.Equal(t, "A", fresh[0].Children[0].Step.Title)
}

func TestGetStepNotFound(t *testing.T) {
	f := newStepFixture(t)
	_, err := f.svc.GetStep(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
