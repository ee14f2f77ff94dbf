package handlers

import (
	"errors"
	"net/http"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/msgs"
	"collabCanvas/internal/relay"
	"collabCanvas/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler carries what every route group shares: the token secret for the
// authentication middleware and the relay for health reporting.
type Handler struct {
	secret []byte
	hub    *relay.Hub
}

func NewHandler(secret []byte, hub *relay.Hub) *Handler {
	return &Handler{
		secret: secret,
		hub:    hub,
	}
}

func (h *Handler) Health(ctx *gin.Context) {
	rooms := h.hub.Rooms()
	participants := 0
	for _, id := range rooms {
		participants += h.hub.Participants(id)
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data: gin.H{
			"rooms":        len(rooms),
			"participants": participants,
		},
	})
}

func abortWithErrors(ctx *gin.Context, status int, errors ...error) {
	ctx.AbortWithStatusJSON(status, models.Response{
		Success: false,
		Message: msgs.MsgOperationFailed,
		Errors:  publicErrors(errors),
	})
}

// publicErrors keeps sentinel errors and flattens everything else to its
// message so it survives JSON encoding.
func publicErrors(in []error) []error {
	out := make([]error, 0, len(in))
	for _, err := range in {
		var sentinel errs.Error
		if errors.As(err, &sentinel) {
			out = append(out, sentinel)
			continue
		}
		out = append(out, errs.Error(err.Error()))
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrBoardNotFound), errors.Is(err, errs.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrWrongPasscode), errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrFileStorageOff):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrBoardName), errors.Is(err, errs.ErrParticipantName),
		errors.Is(err, errs.ErrPasscodeTooShort), errors.Is(err, errs.ErrSessionName),
		errors.Is(err, errs.ErrInvalidFile), errors.Is(err, errs.ErrInvalidRequestBody),
		errors.Is(err, errs.ErrInvalidBoardID), errors.Is(err, errs.ErrInvalidSnapshot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func boardIDParam(ctx *gin.Context) (uint, bool) {
	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		abortWithErrors(ctx, http.StatusBadRequest, errs.ErrInvalidBoardID)
		return 0, false
	}
	return id, true
}
