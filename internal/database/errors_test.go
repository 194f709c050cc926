package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUndefinedTable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "postgres_undefined_table", err: &pgconn.PgError{Code: "42P01", Message: `relation "telegram_activity_events" does not exist`}, want: true},
		{name: "wrapped_postgres_undefined_table", err: fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"}), want: true},
		{name: "postgres_other_code", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "sqlite_no_such_table", err: errors.New("no such table: participant_groups"), want: true},
		{name: "generic", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUndefinedTable(tt.err); got != tt.want {
				t.Errorf("IsUndefinedTable() = %v, want %v", got, tt.want)
			}
		})
	}
}
