package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}

	if !IsUniqueViolation(unique) {
		t.Fatal("23505 should be detected")
	}
	if !IsUniqueViolation(fmt.Errorf("saving appointment: %w", unique)) {
		t.Fatal("wrapped 23505 should be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign-key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("connection reset")) {
		t.Fatal("plain errors are not unique violations")
	}
	if IsUniqueViolation(nil) {
		t.Fatal("nil is not a unique violation")
	}
}

func TestIsBusiness(t *testing.T) {
	err := ConflictErr("time_conflict")

	if !IsBusiness(err, "time_conflict") {
		t.Fatal("code should match")
	}
	if IsBusiness(err, "doctor_double_booked") {
		t.Fatal("different code should not match")
	}
	if !IsBusiness(fmt.Errorf("booking: %w", err), "time_conflict") {
		t.Fatal("wrapped business error should match")
	}
	if IsBusiness(errors.New("time_conflict"), "time_conflict") {
		t.Fatal("untyped error should not match")
	}
}

func respondTo(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, err)
	return w
}

func TestRespondStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFoundErr("patient_not_found"), http.StatusNotFound},
		{"inactive", InactiveErr("doctor_inactive"), http.StatusBadRequest},
		{"unavailable", UnavailableErr("room_unavailable"), http.StatusBadRequest},
		{"validation", ValidationErr("invalid_date"), http.StatusBadRequest},
		{"conflict", ConflictErr("doctor_double_booked"), http.StatusConflict},
		{"invalid token", InvalidTokenErr("invalid_or_expired_token"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := respondTo(tc.err).Code; got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
