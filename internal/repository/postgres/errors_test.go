package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name        string
		err         error
		wantMissing bool
	}{
		{name: "nil", err: nil},
		{name: "plain error passes through", err: plain},
		{name: "undefined table", err: fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01", Message: `relation "passages" does not exist`}), wantMissing: true},
		{name: "undefined type", err: &pgconn.PgError{Code: "42704", Message: `type "vector" does not exist`}, wantMissing: true},
		{name: "unique violation is not schema", err: &pgconn.PgError{Code: "23505"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.wantMissing, errors.Is(got, ErrSchemaMissing))
			if !tt.wantMissing {
				assert.Equal(t, tt.err, got)
			}
		})
	}
}
