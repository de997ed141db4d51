package matching_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/batchbook/internal/matching"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

func TestService_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().FindCategory(gomock.Any(), "UBER *TRIP").Return("Transport", nil)

	svc := matching.NewService(repo)

	got, err := svc.Suggest(context.Background(), "UBER *TRIP")
	require.NoError(t, err)
	assert.Equal(t, "Transport", got)

	got, err = svc.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().CreateMapping(gomock.Any(), "UBER", "Transport").Return(nil)

	svc := matching.NewService(repo)

	require.NoError(t, svc.Learn(context.Background(), " UBER ", "Transport"))

	err := svc.Learn(context.Background(), "", "")
	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 2)
}

func TestBest(t *testing.T) {
	patterns := []string{"uber", "UBER EATS", "wise"}
	categories := []string{"Transport", "Food", "Transfers"}

	assert.Equal(t, "Food", matching.Best("Uber Eats Lisboa", patterns, categories))
	assert.Equal(t, "Transport", matching.Best("UBER *TRIP", patterns, categories))
	assert.Equal(t, "", matching.Best("CONTINENTE", patterns, categories))
}
