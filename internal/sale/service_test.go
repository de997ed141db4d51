package sale_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

func kurta() *batch.Batch {
	return &batch.Batch{ID: "b1", Name: "Kurta", TargetQty: 10, UnitCost: d("50")}
}

func params() sale.CreateParams {
	return sale.CreateParams{
		BatchID:    "b1",
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CustName:   "Asha",
		Qty:        5,
		BaseAmount: d("1000"),
		Discount:   d("100"),
	}
}

func TestService_Record(t *testing.T) {
	type args struct {
		params sale.CreateParams
	}

	type testCase struct {
		name         string
		args         args
		setupMock    func(r *sale.MockRepository, b *sale.MockBatchLookup)
		wantErr      bool
		wantInvalid  string
		wantProfit   string
		wantUnitCost string
		wantOversold bool
	}

	tests := []testCase{
		{
			name: "FreezesEconomics",
			args: args{params: params()},
			setupMock: func(r *sale.MockRepository, b *sale.MockBatchLookup) {
				b.EXPECT().GetBatch(gomock.Any(), "b1").Return(kurta(), nil)
				r.EXPECT().ListSales(gomock.Any(), sale.ListFilter{BatchID: "b1"}).Return(nil, nil)
				r.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, s *sale.Sale) error {
						s.ID = "s1"
						return nil
					})
			},
			wantProfit:   "650",
			wantUnitCost: "50",
		},
		{
			name: "OversellIsAWarning",
			args: args{params: params()},
			setupMock: func(r *sale.MockRepository, b *sale.MockBatchLookup) {
				b.EXPECT().GetBatch(gomock.Any(), "b1").Return(kurta(), nil)
				r.EXPECT().ListSales(gomock.Any(), gomock.Any()).Return([]*sale.Sale{
					{ID: "s0", BatchID: "b1", Qty: 8, Status: sale.StatusNew},
				}, nil)
				r.EXPECT().CreateSale(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantProfit:   "650",
			wantUnitCost: "50",
			wantOversold: true,
		},
		{
			name: "MissingBatchCostsNothing",
			args: args{params: params()},
			setupMock: func(r *sale.MockRepository, b *sale.MockBatchLookup) {
				b.EXPECT().GetBatch(gomock.Any(), "b1").Return(nil, batch.ErrNotFound)
				r.EXPECT().CreateSale(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantProfit:   "900",
			wantUnitCost: "0",
		},
		{
			name: "NoCustomer",
			args: args{params: func() sale.CreateParams {
				p := params()
				p.CustName = ""

				return p
			}()},
			wantErr:     true,
			wantInvalid: "cust_name",
		},
		{
			name: "NoBatch",
			args: args{params: func() sale.CreateParams {
				p := params()
				p.BatchID = ""

				return p
			}()},
			wantErr:     true,
			wantInvalid: "batch_id",
		},
		{
			name: "ZeroAmount",
			args: args{params: func() sale.CreateParams {
				p := params()
				p.BaseAmount = d("0")

				return p
			}()},
			wantErr:     true,
			wantInvalid: "base_amount",
		},
		{
			name: "RepoError",
			args: args{params: params()},
			setupMock: func(r *sale.MockRepository, b *sale.MockBatchLookup) {
				b.EXPECT().GetBatch(gomock.Any(), "b1").Return(kurta(), nil)
				r.EXPECT().ListSales(gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().CreateSale(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := sale.NewMockRepository(ctrl)
			batches := sale.NewMockBatchLookup(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, batches)
			}

			svc := sale.NewService(repo, batches, live.Discard)

			got, err := svc.Record(context.Background(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				if tt.wantInvalid != "" {
					verr, ok := validation.As(err)
					require.True(t, ok)
					assert.Contains(t, verr.Fields, tt.wantInvalid)
				}

				return
			}

			require.NoError(t, err)
			assert.True(t, d("900").Equal(got.Sale.Price), got.Sale.Price.String())
			assert.True(t, d(tt.wantProfit).Equal(got.Sale.Profit), got.Sale.Profit.String())
			assert.True(t, d(tt.wantUnitCost).Equal(got.Sale.UnitCost), got.Sale.UnitCost.String())
			assert.Equal(t, sale.StatusNew, got.Sale.Status)
			assert.Equal(t, tt.wantOversold, got.Oversold)
		})
	}
}

func TestService_Update_ExcludesOwnQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &sale.Sale{ID: "s1", BatchID: "b1", Qty: 8, Status: sale.StatusNew}

	repo := sale.NewMockRepository(ctrl)
	batches := sale.NewMockBatchLookup(ctrl)

	repo.EXPECT().GetSale(gomock.Any(), "s1").Return(existing, nil)
	batches.EXPECT().GetBatch(gomock.Any(), "b1").Return(kurta(), nil)
	repo.EXPECT().ListSales(gomock.Any(), gomock.Any()).Return([]*sale.Sale{
		existing,
		{ID: "s2", BatchID: "b1", Qty: 2, Status: sale.StatusNew},
	}, nil)
	repo.EXPECT().UpdateSale(gomock.Any(), existing).Return(nil)

	svc := sale.NewService(repo, batches, live.Discard)

	p := params()
	p.Qty = 8
	p.BaseAmount = d("800")
	p.Discount = d("0")

	got, err := svc.Update(context.Background(), "s1", p)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Stock.Sold)
	assert.Equal(t, 8, got.Stock.Remaining)
	assert.False(t, got.Oversold)
	assert.True(t, d("400").Equal(got.Sale.Profit), got.Sale.Profit.String())
}

func TestService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	repo.EXPECT().UpdateStatus(gomock.Any(), "s1", sale.StatusShipped).Return(nil)

	svc := sale.NewService(repo, nil, live.Discard)

	require.NoError(t, svc.UpdateStatus(context.Background(), "s1", sale.StatusShipped))

	err := svc.UpdateStatus(context.Background(), "s1", sale.Status("Lost"))
	_, ok := validation.As(err)
	assert.True(t, ok)
}

func TestService_BatchName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	batches := sale.NewMockBatchLookup(ctrl)
	batches.EXPECT().GetBatch(gomock.Any(), "b1").Return(kurta(), nil)
	batches.EXPECT().GetBatch(gomock.Any(), "gone").Return(nil, batch.ErrNotFound)

	svc := sale.NewService(nil, batches, live.Discard)

	assert.Equal(t, "Kurta", svc.BatchName(context.Background(), "b1"))
	assert.Equal(t, sale.UnknownBatchName, svc.BatchName(context.Background(), "gone"))
	assert.Equal(t, sale.UnknownBatchName, svc.BatchName(context.Background(), ""))
}

func TestService_List_SortsNewestFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := func(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }

	repo := sale.NewMockRepository(ctrl)
	repo.EXPECT().ListSales(gomock.Any(), sale.ListFilter{}).Return([]*sale.Sale{
		{ID: "a", Date: day(1)},
		{ID: "c", Date: day(3)},
		{ID: "b", Date: day(2)},
	}, nil)

	svc := sale.NewService(repo, nil, live.Discard)

	got, err := svc.List(context.Background(), sale.ListFilter{})
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}

	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestListFilter_Matches(t *testing.T) {
	shipped := sale.StatusShipped
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	s := &sale.Sale{BatchID: "b1", CustName: "Asha Rao", Status: sale.StatusShipped, Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)}

	assert.True(t, sale.ListFilter{Query: "asha"}.Matches(s))
	assert.True(t, sale.ListFilter{Query: "ship"}.Matches(s))
	assert.True(t, sale.ListFilter{Status: &shipped, StartDate: &from}.Matches(s))
	assert.False(t, sale.ListFilter{BatchID: "b2"}.Matches(s))
	assert.False(t, sale.ListFilter{Query: "ravi"}.Matches(s))
}
