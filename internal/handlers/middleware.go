package handlers

import (
	"log/slog"
	"net/http"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/msgs"
	"collabCanvas/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) MustAuthenticateMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		jwtToken := utils.TokenFromRequest(ctx)
		if jwtToken == "" {
			abortWithErrors(ctx, http.StatusUnauthorized, errs.ErrUnauthorized)
			return
		}

		claims, err := utils.VerifyToken(jwtToken, h.secret)
		if err != nil {
			slog.Debug("MustAuthenticateMiddleware - token rejected", "err", err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: msgs.MsgYouMustJoinFirst,
				Errors:  []error{errs.ErrInvalidToken},
			})
			return
		}

		ctx.Set("claims", claims)
		ctx.Set("participant_id", claims.ParticipantID)
		ctx.Set("board_id", claims.BoardID)
		ctx.Next()
	}
}

// MustBelongToBoardMiddleware rejects tokens issued for another board than
// the :id path parameter.
func (h *Handler) MustBelongToBoardMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		boardID, ok := boardIDParam(ctx)
		if !ok {
			return
		}
		claims := utils.GetClaimsFromContext(ctx)
		if claims == nil || claims.BoardID != boardID {
			abortWithErrors(ctx, http.StatusForbidden, errs.ErrUnauthorized)
			return
		}
		ctx.Next()
	}
}
