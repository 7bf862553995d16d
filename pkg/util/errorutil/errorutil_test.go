package errorutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyPgError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		field      string
		wantCode   string
		wantStatus int
	}{
		{
			name:       "unique violation",
			err:        &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"},
			field:      "email",
			wantCode:   "DUPLICATE_KEY",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "foreign key violation",
			err:        &pgconn.PgError{Code: "23503"},
			field:      "user_id",
			wantCode:   "FOREIGN_KEY_VIOLATION",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no rows",
			err:        pgx.ErrNoRows,
			field:      "id",
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown error",
			err:        errors.New("connection reset"),
			field:      "id",
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ClassifyPgError(tc.err, tc.field)
			domainErr := ToDomainError(err)
			if domainErr.Code != tc.wantCode {
				t.Fatalf("code = %s, want %s", domainErr.Code, tc.wantCode)
			}
			if domainErr.HTTPStatus != tc.wantStatus {
				t.Fatalf("status = %d, want %d", domainErr.HTTPStatus, tc.wantStatus)
			}
		})
	}
}

func TestClassifyPgErrorNil(t *testing.T) {
	t.Parallel()
	if err := ClassifyPgError(nil, "email"); err != nil {
		t.Fatalf("nil must classify to nil, got %v", err)
	}
}

func TestDuplicateKeyCarriesField(t *testing.T) {
	t.Parallel()
	err := ClassifyPgError(&pgconn.PgError{Code: "23505"}, "application_number")
	domainErr := ToDomainError(err)
	if field, _ := domainErr.Details["field"].(string); field != "application_number" {
		t.Fatalf("details field = %q", field)
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := NewPreconditionFailed("deposit missing")
	if !IsCode(err, "PRECONDITION_FAILED") {
		t.Fatal("IsCode should match the error's code")
	}
	if IsCode(err, "NOT_FOUND") {
		t.Fatal("IsCode must not match a different code")
	}
	if IsCode(errors.New("plain"), "PRECONDITION_FAILED") {
		t.Fatal("plain errors carry no code")
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	domainErr := ToDomainError(cause)
	if domainErr.Code != "INTERNAL_ERROR" {
		t.Fatalf("code = %s", domainErr.Code)
	}
	if !errors.Is(domainErr, cause) {
		t.Fatal("wrapped cause must be reachable via errors.Is")
	}
}
