package backup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/batchbook/internal/backup"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingNotifier struct {
	kinds []live.Kind
}

func (n *recordingNotifier) Notify(_ context.Context, kind live.Kind) {
	n.kinds = append(n.kinds, kind)
}

func TestService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := backup.NewMockSource(ctrl)

	src.EXPECT().ListBatches(gomock.Any(), batch.ListFilter{}).Return([]*batch.Batch{
		{ID: "b-1", Name: "Kurta", TargetQty: 10, GrandTotal: d("100"), UnitCost: d("10"), SellingPrice: d("12"), MarginPerUnit: d("2")},
	}, nil)
	src.EXPECT().ListSales(gomock.Any(), sale.ListFilter{}).Return([]*sale.Sale{
		{ID: "s-1", BatchID: "b-1", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Qty: 1, Price: d("12"), Status: sale.StatusNew},
	}, nil)
	src.EXPECT().ListEntries(gomock.Any(), ledger.ListFilter{}).Return(nil, nil)

	svc := backup.NewService(src, nil, live.Discard)

	doc, err := svc.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, backup.CurrentVersion, doc.Version)
	assert.False(t, doc.Timestamp.IsZero())
	require.Len(t, doc.Batches, 1)
	assert.Equal(t, backup.ID("b-1"), doc.Batches[0].ID)
	assert.InDelta(t, 12, doc.Batches[0].SellingPrice, 0.0001)
	require.Len(t, doc.Sales, 1)
	assert.Equal(t, backup.ID("b-1"), doc.Sales[0].BatchID)
	assert.NotNil(t, doc.Expenses)
}

func TestService_Export_SourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := backup.NewMockSource(ctrl)

	src.EXPECT().ListBatches(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := backup.NewService(src, nil, live.Discard).Export(context.Background())
	assert.Error(t, err)
}

func restoreDoc() *backup.Document {
	return &backup.Document{
		Version: backup.CurrentVersion,
		Batches: []backup.Batch{{ID: "1", Name: "Kurta", TargetQty: 2, Costs: []backup.Cost{{Name: "Fabric", Rate: 10, Qty: 1, Type: "FIXED"}}}},
		Sales:   []backup.Sale{{ID: "1", BatchID: "1", CustName: "Sana", Qty: 1, Price: 8}},
		Expenses: []backup.Expense{
			{ID: "1", Description: "Rent", Amount: 300, Type: "DEBIT"},
			{ID: "2", Description: "Refund", Amount: 20, Type: "CREDIT", Category: "Returns"},
		},
	}
}

func TestService_Restore(t *testing.T) {
	type testCase struct {
		name       string
		setupMock  func(r *backup.MockRestorer, tx *backup.MockRestoreTx)
		wantErr    bool
		wantCounts *backup.Counts
		wantNotify bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(r *backup.MockRestorer, tx *backup.MockRestoreTx) {
				r.EXPECT().BeginRestore(gomock.Any()).Return(tx, nil)
				gomock.InOrder(
					tx.EXPECT().Clear(gomock.Any()).Return(nil),
					tx.EXPECT().PutBatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *batch.Batch) error {
						assert.True(t, b.UnitCost.Equal(d("5")))
						return nil
					}),
					tx.EXPECT().PutSale(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *sale.Sale) error {
						assert.Equal(t, sale.StatusNew, s.Status)
						return nil
					}),
					tx.EXPECT().PutEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
						assert.Equal(t, ledger.DefaultCategory, e.Category)
						return nil
					}),
					tx.EXPECT().PutEntry(gomock.Any(), gomock.Any()).Return(nil),
					tx.EXPECT().Commit().Return(nil),
				)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantCounts: &backup.Counts{Batches: 1, Sales: 1, Expenses: 2},
			wantNotify: true,
		},
		{
			name: "PutFailureRollsBack",
			setupMock: func(r *backup.MockRestorer, tx *backup.MockRestoreTx) {
				r.EXPECT().BeginRestore(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Clear(gomock.Any()).Return(nil)
				tx.EXPECT().PutBatch(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: true,
		},
		{
			name: "BeginFails",
			setupMock: func(r *backup.MockRestorer, _ *backup.MockRestoreTx) {
				r.EXPECT().BeginRestore(gomock.Any()).Return(nil, errors.New("locked"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			restorer := backup.NewMockRestorer(ctrl)
			tx := backup.NewMockRestoreTx(ctrl)
			tt.setupMock(restorer, tx)

			notifier := &recordingNotifier{}
			svc := backup.NewService(nil, restorer, notifier)

			counts, err := svc.Restore(context.Background(), restoreDoc())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, notifier.kinds)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCounts, counts)

			if tt.wantNotify {
				assert.ElementsMatch(t, live.Kinds, notifier.kinds)
			}
		})
	}
}

func TestService_ClearAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	restorer := backup.NewMockRestorer(ctrl)
	tx := backup.NewMockRestoreTx(ctrl)

	restorer.EXPECT().BeginRestore(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Clear(gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	err := backup.NewService(nil, restorer, live.Discard).ClearAll(context.Background())
	require.NoError(t, err)
}
