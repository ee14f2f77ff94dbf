package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/relay"
	"collabCanvas/internal/services"
	"collabCanvas/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type SocketCanvasHandler struct {
	ctx          context.Context
	upgrader     websocket.Upgrader
	hub          *relay.Hub
	boardService *services.BoardService
}

func NewSocketCanvasHandler(ctx context.Context, hub *relay.Hub, boardService *services.BoardService) *SocketCanvasHandler {
	return &SocketCanvasHandler{
		ctx:          ctx,
		hub:          hub,
		boardService: boardService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (sch *SocketCanvasHandler) HandleSocketCanvasRoute(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}

	claims, err := sch.authorize(ctx, boardID)
	if err != nil {
		abortWithErrors(ctx, http.StatusUnauthorized, err)
		return
	}

	if _, err := sch.boardService.GetBoard(ctx.Request.Context(), boardID); err != nil {
		abortWithErrors(ctx, statusFor(err), err)
		return
	}

	ws, err := sch.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Warn("HandleSocketCanvasRoute - upgrade failed", "board", boardID, "err", err)
		return
	}

	sch.hub.Serve(sch.ctx, ws, relay.Identity{
		ParticipantID: claims.ParticipantID,
		Name:          claims.Name,
		Color:         claims.Color,
		BoardID:       boardID,
	})
}

func (sch *SocketCanvasHandler) authorize(ctx *gin.Context, boardID uint) (*models.Claims, error) {
	jwtToken := utils.TokenFromRequest(ctx)
	if jwtToken == "" {
		return nil, errs.ErrUnauthorized
	}
	claims, err := utils.VerifyToken(jwtToken, sch.boardService.Secret())
	if err != nil {
		return nil, err
	}
	if claims.BoardID != boardID {
		return nil, errs.ErrUnauthorized
	}
	return claims, nil
}
