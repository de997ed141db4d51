package render_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

func TestError(t *testing.T) {
	verr := &validation.Error{}
	verr.Add("name", "required")

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "Validation", err: verr, wantCode: http.StatusUnprocessableEntity, wantBody: `"name":"required"`},
		{name: "WrappedNotFound", err: fmt.Errorf("getting: %w", batch.ErrNotFound), wantCode: http.StatusNotFound},
		{name: "SaleNotFound", err: sale.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "MigrationRunning", err: migration.ErrAlreadyRunning, wantCode: http.StatusConflict},
		{name: "Other", err: errors.New("pq: connection refused"), wantCode: http.StatusInternalServerError, wantBody: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			render.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?start_date=2024-03-01&end_date=03/04/2024&qty=4&bad=x", nil)

	start := render.DateParam(r, "start_date")
	if assert.NotNil(t, start) {
		assert.Equal(t, "2024-03-01", start.Format("2006-01-02"))
	}

	assert.Nil(t, render.DateParam(r, "end_date"))
	assert.Nil(t, render.DateParam(r, "missing"))
	assert.Equal(t, 4, render.IntParam(r, "qty", 1))
	assert.Equal(t, 1, render.IntParam(r, "bad", 1))
}
