package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/MacMoment/coding/internal/platform/apierr"
	"github.com/MacMoment/coding/internal/services"
)

func TestFromService(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"wrapped not found", fmt.Errorf("load: %w", services.ErrProjectNotFound), http.StatusNotFound, "project_not_found"},
		{"cooldown", &services.ClaimCooldownError{NextClaimAt: time.Now()}, http.StatusConflict, "daily_already_claimed"},
		{"insufficient", services.ErrInsufficientBalance, http.StatusPaymentRequired, "insufficient_balance"},
		{"plan", services.ErrModelNotAllowed, http.StatusForbidden, "model_not_allowed"},
		{"explicit", apierr.New(http.StatusTeapot, "teapot", errors.New("short and stout")), http.StatusTeapot, "teapot"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		got := FromService(tc.err)
		if got == nil {
			t.Fatalf("%s: want error got nil", tc.name)
		}
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("%s: want=%d/%s got=%d/%s", tc.name, tc.status, tc.code, got.Status, got.Code)
		}
	}
	if FromService(nil) != nil {
		t.Fatalf("nil: want nil")
	}
}
