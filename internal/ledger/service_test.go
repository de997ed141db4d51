package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params ledger.CreateParams
	}

	type testCase struct {
		name         string
		args         args
		setupMock    func(m *ledger.MockRepository)
		wantErr      bool
		wantCategory string
	}

	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	tests := []testCase{
		{
			name: "DefaultsCategory",
			args: args{params: ledger.CreateParams{Date: date, Description: "Capital", Amount: d("5000"), Type: ledger.TypeCredit}},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
						e.ID = "e1"
						return nil
					})
			},
			wantCategory: ledger.DefaultCategory,
		},
		{
			name: "KeepsCategory",
			args: args{params: ledger.CreateParams{Date: date, Description: "Boxes", Amount: d("300"), Type: ledger.TypeDebit, Category: "Packaging"}},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCategory: "Packaging",
		},
		{
			name:    "NonPositiveAmount",
			args:    args{params: ledger.CreateParams{Date: date, Description: "Boxes", Amount: d("0"), Type: ledger.TypeDebit}},
			wantErr: true,
		},
		{
			name:    "UnknownType",
			args:    args{params: ledger.CreateParams{Date: date, Description: "Boxes", Amount: d("10"), Type: "REFUND"}},
			wantErr: true,
		},
		{
			name: "RepoError",
			args: args{params: ledger.CreateParams{Date: date, Description: "Boxes", Amount: d("10"), Type: ledger.TypeDebit}},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo, nil, live.Discard)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, got.Category)
		})
	}
}

func TestService_Create_ValidationFields(t *testing.T) {
	svc := ledger.NewService(nil, nil, live.Discard)

	_, err := svc.Create(context.Background(), ledger.CreateParams{})

	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "description")
	assert.Contains(t, verr.Fields, "amount")
	assert.Contains(t, verr.Fields, "type")
}

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListEntries(gomock.Any(), ledger.ListFilter{}).Return([]*ledger.Entry{
		{Type: ledger.TypeCredit, Amount: d("5000")},
		{Type: ledger.TypeDebit, Amount: d("1200")},
		{Type: ledger.TypeDebit, Amount: d("300")},
	}, nil)

	svc := ledger.NewService(repo, nil, live.Discard)

	got, err := svc.Summary(context.Background(), ledger.ListFilter{})
	require.NoError(t, err)
	assert.True(t, d("3500").Equal(got.Balance))
}

func TestService_ImportStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	params := []ledger.CreateParams{
		{Date: day, Description: "COMPRA CONTINENTE", Amount: d("42.10"), Type: ledger.TypeDebit},
		{Date: day, Description: "TRF CLIENTE", Amount: d("900"), Type: ledger.TypeCredit},
		{Date: day, Description: "TRF CLIENTE", Amount: d("900"), Type: ledger.TypeCredit},
		{Date: day, Description: "ALREADY THERE", Amount: d("15"), Type: ledger.TypeDebit, Category: "Fees"},
	}

	repo := ledger.NewMockRepository(ctrl)
	itx := ledger.NewMockImportTx(ctrl)
	categorizer := ledger.NewMockCategorizer(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), day, day).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*ledger.Entry{
		{Date: day, Description: "ALREADY THERE", Amount: d("15.00"), Type: ledger.TypeDebit},
	}, nil)
	categorizer.EXPECT().Suggest(gomock.Any(), "COMPRA CONTINENTE").Return("Groceries", nil)
	categorizer.EXPECT().Suggest(gomock.Any(), "TRF CLIENTE").Return("", nil)
	itx.EXPECT().
		CreateEntries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entries []*ledger.Entry) error {
			require.Len(t, entries, 2)
			assert.Equal(t, "Groceries", entries[0].Category)
			assert.Equal(t, ledger.DefaultCategory, entries[1].Category)

			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	notifier := &countingNotifier{}
	svc := ledger.NewService(repo, categorizer, notifier)

	got, err := svc.ImportStatement(context.Background(), params)
	require.NoError(t, err)

	assert.Len(t, got.Imported, 2)
	assert.Len(t, got.Skipped, 2)
	assert.Equal(t, 1, notifier.calls)
}

func TestService_ImportStatement_RollsBackOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	params := []ledger.CreateParams{{Date: day, Description: "X", Amount: d("1"), Type: ledger.TypeDebit, Category: "Misc"}}

	repo := ledger.NewMockRepository(ctrl)
	itx := ledger.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), day, day).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().CreateEntries(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
	itx.EXPECT().Rollback().Return(nil)

	svc := ledger.NewService(repo, nil, live.Discard)

	_, err := svc.ImportStatement(context.Background(), params)
	assert.Error(t, err)
}

type countingNotifier struct {
	calls int
}

func (n *countingNotifier) Notify(context.Context, live.Kind) {
	n.calls++
}
