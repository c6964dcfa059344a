package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MacMoment/coding/internal/platform/apierr"
	"github.com/MacMoment/coding/internal/services"
)

var serviceErrors = []struct {
	target error
	status int
	code   string
}{
	{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrModelNotAllowed, http.StatusForbidden, "model_not_allowed"},
	{services.ErrProjectNotFound, http.StatusNotFound, "project_not_found"},
	{services.ErrJobNotFound, http.StatusNotFound, "job_not_found"},
	{services.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{services.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
	{services.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{services.ErrInsufficientBalance, http.StatusPaymentRequired, "insufficient_balance"},
	{services.ErrDailyAlreadyClaimed, http.StatusConflict, "daily_already_claimed"},
}

// FromService classifies a service error. Unknown errors become a 500 whose
// message is not shown to the caller.
func FromService(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	for _, se := range serviceErrors {
		if errors.Is(err, se.target) {
			return apierr.New(se.status, se.code, err)
		}
	}
	return apierr.From(err)
}

// RespondServiceError renders err with the status FromService picks.
func RespondServiceError(c *gin.Context, err error) {
	ae := FromService(err)
	if ae == nil {
		return
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New("internal server error"))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}
