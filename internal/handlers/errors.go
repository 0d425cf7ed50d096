package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"clinical-case-server/internal/services"
	"clinical-case-server/internal/utils"
)

// respondServiceError translates a core error into the standard HTTP envelope.
// Conflict-class errors (state machine preconditions, concurrent writes) map
// to 409 so the client can decide whether to retry the whole request.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUnknownUser):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidSchedule),
		errors.Is(err, services.ErrUnsupportedUserType):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrCaseNotOpen),
		errors.Is(err, services.ErrAppointmentCancelled),
		errors.Is(err, services.ErrNotApproved),
		errors.Is(err, services.ErrVisitAlreadyExists),
		errors.Is(err, services.ErrNoVisit),
		errors.Is(err, services.ErrPatientBlacklisted):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

// accessDeniedMessage is deliberately the same whether the target exists or
// not, so a deny does not reveal which it was.
const accessDeniedMessage = "You are not authorized to access this patient's record."
