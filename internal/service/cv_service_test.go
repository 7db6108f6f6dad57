package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/social-services/internal/testutil"
)

func TestCVLifecycle(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCVService(store.CVs())
	ctx := context.Background()
	owner := store.Standard()
	other := store.Standard()
	employer := store.Employer()

	cv, err := svc.Create(ctx, &owner, CVInput{Name: "Main", DocumentURL: "https://files.example.com/cv/1.pdf"})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, cv.UserID)

	_, err = svc.Create(ctx, &owner, CVInput{Name: "Broken", DocumentURL: "not a url"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))

	_, err = svc.Create(ctx, &employer, CVInput{Name: "Main", DocumentURL: "https://files.example.com/cv/2.pdf"})
	assert.Equal(t, "FORBIDDEN", errCode(err))

	listed, err := svc.List(ctx, &other)
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.Equal(t, "FORBIDDEN", errCode(svc.Delete(ctx, &other, cv.ID)))
	require.NoError(t, svc.Delete(ctx, &owner, cv.ID))
	assert.Equal(t, "NOT_FOUND", errCode(svc.Delete(ctx, &owner, cv.ID)))
}
