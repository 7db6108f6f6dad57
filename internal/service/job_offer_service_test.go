package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/events"
	"github.com/spec-kit/social-services/internal/testutil"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

type offerFixture struct {
	svc        *JobOfferService
	store      *testutil.Store
	dispatcher *testutil.Dispatcher
	employer   *domain.Account
	moderator  *domain.Account
	user       *domain.Account
}

func newOfferFixture(t *testing.T) offerFixture {
	t.Helper()
	store := testutil.NewStore()
	dispatcher := testutil.NewDispatcher()
	employer := store.Employer()
	moderator := store.Staff(domain.StaffGroupJobsModeration)
	user := store.Standard()
	svc := NewJobOfferService(JobOfferDependencies{
		OfferRepo:       store.JobOffers(),
		ApplicationRepo: store.Applications(),
		CVRepo:          store.CVs(),
		Transactor:      store.Transactor(),
		Dispatcher:      dispatcher,
	})
	return offerFixture{
		svc:        svc,
		store:      store,
		dispatcher: dispatcher,
		employer:   &employer,
		moderator:  &moderator,
		user:       &user,
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func errCode(err error) string {
	if de := apperrors.ToDomainError(err); de != nil {
		return de.Code
	}
	return ""
}

func (f offerFixture) publicOffer(t *testing.T) *domain.JobOffer {
	t.Helper()
	ctx := context.Background()
	offer, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Warehouse assistant", SalaryMin: intPtr(3000)})
	require.NoError(t, err)
	offer, err = f.svc.Confirm(ctx, f.moderator, offer.ID, true)
	require.NoError(t, err)
	return offer
}

func (f offerFixture) cv(t *testing.T, owner *domain.Account) *domain.CV {
	t.Helper()
	cv := &domain.CV{UserID: owner.ID, Name: "cv.pdf", DocumentURL: "https://files.example.com/cv.pdf"}
	require.NoError(t, f.store.CVs().Create(context.Background(), cv))
	return cv
}

func TestCreateOffer(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	offer, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: " Cook ", Location: "Warsaw"})
	require.NoError(t, err)
	assert.Equal(t, "Cook", offer.Title)
	assert.False(t, offer.Confirmed)
	assert.False(t, offer.Removed)
	require.NotNil(t, offer.EmployerID)
	assert.Equal(t, f.employer.ID, *offer.EmployerID)
	assert.Len(t, f.dispatcher.Published(events.EventJobOfferCreated), 1)

	_, err = f.svc.Create(ctx, f.user, JobOfferInput{Title: "Cook"})
	assert.Equal(t, "FORBIDDEN", errCode(err))

	_, err = f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Cook", SalaryMin: intPtr(10), SalaryMax: intPtr(5)})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))

	unverified := f.store.AddAccount(domain.AccountTypeEmployer, domain.VerificationWaiting)
	_, err = f.svc.Create(ctx, &unverified, JobOfferInput{Title: "Cook"})
	assert.Equal(t, "FORBIDDEN", errCode(err))
}

func TestEditOfferMergesSalaryRange(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	offer, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Cook", SalaryMin: intPtr(3000), SalaryMax: intPtr(4000)})
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, f.employer, offer.ID, JobOfferUpdateInput{SalaryMax: intPtr(2000)})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Contains(t, de.Details, "salary_min")

	updated, err := f.svc.Edit(ctx, f.employer, offer.ID, JobOfferUpdateInput{SalaryMin: intPtr(1000), SalaryMax: intPtr(2000), Title: strPtr("Chef")})
	require.NoError(t, err)
	assert.Equal(t, "Chef", updated.Title)
	assert.Equal(t, 1000, *updated.SalaryMin)

	_, err = f.svc.Edit(ctx, f.moderator, offer.ID, JobOfferUpdateInput{Location: strPtr("Gdansk")})
	assert.NoError(t, err)

	other := f.store.Employer()
	_, err = f.svc.Edit(ctx, &other, offer.ID, JobOfferUpdateInput{Location: strPtr("Nowhere")})
	assert.Equal(t, "FORBIDDEN", errCode(err))
}

func TestRemoveOffer(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	offer := f.publicOffer(t)

	other := f.store.Employer()
	assert.Equal(t, "FORBIDDEN", errCode(f.svc.Remove(ctx, &other, offer.ID)))

	require.NoError(t, f.svc.Remove(ctx, f.employer, offer.ID))
	stored, err := f.store.JobOffers().GetByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.True(t, stored.Removed)

	public, err := f.svc.ListPublic(ctx, JobOfferListFilter{})
	require.NoError(t, err)
	assert.Empty(t, public)

	assert.Equal(t, "INVALID_STATE", errCode(f.svc.Remove(ctx, f.employer, offer.ID)))
	assert.Len(t, f.dispatcher.Published(events.EventJobOfferRemoved), 1)

	_, err = f.svc.Get(ctx, f.employer, offer.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.svc.Get(ctx, f.moderator, offer.ID)
	assert.NoError(t, err)
}

func TestRemoveChecksPermissionBeforeState(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	offer := f.publicOffer(t)
	require.NoError(t, f.svc.Remove(ctx, f.moderator, offer.ID))

	assert.Equal(t, "FORBIDDEN", errCode(f.svc.Remove(ctx, f.user, offer.ID)))
}

func TestConfirmOffer(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	offer, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Cook"})
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, f.employer, offer.ID, true)
	assert.Equal(t, "FORBIDDEN", errCode(err))

	confirmed, err := f.svc.Confirm(ctx, f.moderator, offer.ID, true)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	require.NotNil(t, confirmed.ConfirmedAt)

	unconfirmed, err := f.svc.Confirm(ctx, f.moderator, offer.ID, false)
	require.NoError(t, err)
	assert.False(t, unconfirmed.Confirmed)
	assert.Nil(t, unconfirmed.ConfirmedAt)
	assert.Len(t, f.dispatcher.Published(events.EventJobOfferConfirmed), 1)

	require.NoError(t, f.svc.Remove(ctx, f.employer, offer.ID))
	_, err = f.svc.Confirm(ctx, f.moderator, offer.ID, true)
	assert.Equal(t, "INVALID_STATE", errCode(err))
}

func TestListPublicConfirmedSince(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	early, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Cook"})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.moderator, early.ID, true)
	require.NoError(t, err)

	cutoff := time.Now().UTC()
	time.Sleep(time.Millisecond)

	late, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Waiter"})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.moderator, late.ID, true)
	require.NoError(t, err)
	_, err = f.svc.Edit(ctx, f.employer, early.ID, JobOfferUpdateInput{Title: strPtr("Head cook")})
	require.NoError(t, err)

	listed, err := f.svc.ListPublic(ctx, JobOfferListFilter{ConfirmedSince: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, []string{late.ID}, offerIDs(listed))
}

func TestGetHidesUnconfirmedOffers(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	offer, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Cook"})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, nil, offer.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.svc.Get(ctx, f.user, offer.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.Get(ctx, f.employer, offer.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, f.moderator, offer.ID)
	assert.NoError(t, err)
}

func TestApplyOnlyOnce(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	offer := f.publicOffer(t)
	cv := f.cv(t, f.user)

	application, err := f.svc.Apply(ctx, f.user, offer.ID, cv.ID)
	require.NoError(t, err)
	assert.Equal(t, cv.ID, application.CVID)

	_, err = f.svc.Apply(ctx, f.user, offer.ID, cv.ID)
	assert.Equal(t, "FORBIDDEN", errCode(err))

	apps, err := f.svc.ListApplications(ctx, f.employer, offer.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Len(t, f.dispatcher.Published(events.EventJobApplication), 1)
}

func TestApplyRequiresOwnCVAndPublicOffer(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	offer := f.publicOffer(t)
	someoneElse := f.store.Standard()
	foreignCV := f.cv(t, &someoneElse)

	_, err := f.svc.Apply(ctx, f.user, offer.ID, foreignCV.ID)
	assert.Equal(t, "FORBIDDEN", errCode(err))

	_, err = f.svc.Apply(ctx, f.employer, offer.ID, foreignCV.ID)
	assert.Equal(t, "FORBIDDEN", errCode(err))

	hidden, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Hidden"})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, f.user, hidden.ID, f.cv(t, f.user).ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.ListApplications(ctx, f.user, offer.ID)
	assert.Equal(t, "FORBIDDEN", errCode(err))
}

func TestListings(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()
	public := f.publicOffer(t)
	pending, err := f.svc.Create(ctx, f.employer, JobOfferInput{Title: "Pending"})
	require.NoError(t, err)
	removed := f.publicOffer(t)
	require.NoError(t, f.svc.Remove(ctx, f.employer, removed.ID))

	listed, err := f.svc.ListPublic(ctx, JobOfferListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{public.ID}, offerIDs(listed))

	own, err := f.svc.ListForEmployer(ctx, f.employer, JobOfferListFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{public.ID, pending.ID}, offerIDs(own))

	unconfirmed := false
	queue, err := f.svc.ListForStaff(ctx, f.moderator, JobOfferListFilter{Confirmed: &unconfirmed})
	require.NoError(t, err)
	assert.Equal(t, []string{pending.ID}, offerIDs(queue))

	_, err = f.svc.ListForStaff(ctx, f.employer, JobOfferListFilter{})
	assert.Equal(t, "FORBIDDEN", errCode(err))
}

func offerIDs(offers []domain.JobOffer) []string {
	return lo.Map(offers, func(offer domain.JobOffer, _ int) string { return offer.ID })
}
