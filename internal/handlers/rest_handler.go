package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/msgs"
	"collabCanvas/internal/relay"
	"collabCanvas/internal/services"

	"github.com/gin-gonic/gin"
)

type RestHandler struct {
	boardService       *services.BoardService
	sessionService     *services.SessionService
	exportService      *services.ExportService
	fileManagerService *services.FileManagerService
	hub                *relay.Hub
}

func NewRestHandler(
	boardService *services.BoardService,
	sessionService *services.SessionService,
	exportService *services.ExportService,
	fileManagerService *services.FileManagerService,
	hub *relay.Hub,
) *RestHandler {
	return &RestHandler{
		boardService:       boardService,
		sessionService:     sessionService,
		exportService:      exportService,
		fileManagerService: fileManagerService,
		hub:                hub,
	}
}

// CreateBoard godoc
// @Summary      Create a drawing board
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        board  body      models.CreateBoardRequest  true  "Board name and optional passcode"
// @Success      200    {object}  models.Response
// @Failure      400    {object}  models.Response
// @Router       /api/boards [post]
func (rh *RestHandler) CreateBoard(ctx *gin.Context) {
	var req models.CreateBoardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Debug("CreateBoard - json binding failed", "err", err)
		abortWithErrors(ctx, http.StatusBadRequest, errs.ErrInvalidRequestBody)
		return
	}

	board, errors := rh.boardService.CreateBoard(ctx.Request.Context(), &req)
	if len(errors) > 0 {
		abortWithErrors(ctx, statusFor(errors[0]), errors...)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgBoardCreated,
		Data:    board,
	})
}

// GetBoard godoc
// @Summary      Get a board
// @Tags         boards
// @Produce      json
// @Param        id   path      int  true  "Board ID"
// @Success      200  {object}  models.Response
// @Failure      404  {object}  models.Response
// @Router       /api/boards/{id} [get]
func (rh *RestHandler) GetBoard(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	board, err := rh.boardService.GetBoard(ctx.Request.Context(), boardID)
	if err != nil {
		abortWithErrors(ctx, statusFor(err), err)
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    board,
	})
}

// JoinBoard godoc
// @Summary      Join a board as a participant
// @Description  Returns a participant token for the websocket and the board routes
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Board ID"
// @Param        join  body      models.JoinBoardRequest   true  "Display name and passcode"
// @Success      200   {object}  models.Response
// @Failure      401   {object}  models.Response
// @Failure      404   {object}  models.Response
// @Router       /api/boards/{id}/join [post]
func (rh *RestHandler) JoinBoard(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	var req models.JoinBoardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithErrors(ctx, http.StatusBadRequest, errs.ErrInvalidRequestBody)
		return
	}

	joined, errors := rh.boardService.JoinBoard(ctx.Request.Context(), boardID, &req)
	if len(errors) > 0 {
		abortWithErrors(ctx, statusFor(errors[0]), errors...)
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgJoinedBoard,
		Data:    joined,
	})
}

func (rh *RestHandler) GetSnapshot(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    rh.hub.Snapshot(ctx.Request.Context(), boardID),
	})
}

// SaveSession godoc
// @Summary      Save the board under a name
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Board ID"
// @Param        session  body      models.SaveSessionRequest  true  "Session name"
// @Success      200      {object}  models.Response
// @Router       /api/boards/{id}/sessions [post]
func (rh *RestHandler) SaveSession(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	var req models.SaveSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithErrors(ctx, http.StatusBadRequest, errs.ErrInvalidRequestBody)
		return
	}
	info, err := rh.sessionService.SaveSession(ctx.Request.Context(), boardID, req.Name)
	if err != nil {
		abortWithErrors(ctx, statusFor(err), err)
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgSessionSaved,
		Data:    info,
	})
}

func (rh *RestHandler) ListSessions(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	infos, err := rh.sessionService.ListSessions(ctx.Request.Context(), boardID)
	if err != nil {
		abortWithErrors(ctx, statusFor(err), err)
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    infos,
	})
}

func (rh *RestHandler) LoadSession(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	info, err := rh.sessionService.LoadSession(ctx.Request.Context(), boardID, ctx.Param("name"))
	if err != nil {
		abortWithErrors(ctx, statusFor(err), err)
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgSessionLoaded,
		Data:    info,
	})
}

func (rh *RestHandler) DeleteSession(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	if err := rh.sessionService.DeleteSession(ctx.Request.Context(), boardID, ctx.Param("name")); err != nil {
		abortWithErrors(ctx, statusFor(err), err)
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgSessionDeleted,
	})
}

func (rh *RestHandler) ExportPNG(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := rh.exportService.ExportPNG(ctx.Request.Context(), boardID, &buf); err != nil {
		abortWithErrors(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="board-%d.png"`, boardID))
	ctx.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (rh *RestHandler) ExportPDF(ctx *gin.Context) {
	boardID, ok := boardIDParam(ctx)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := rh.exportService.ExportPDF(ctx.Request.Context(), boardID, &buf); err != nil {
		abortWithErrors(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="board-%d.pdf"`, boardID))
	ctx.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// UploadImage godoc
// @Summary      Upload an image for use on a canvas
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200    {object}  models.Response
// @Failure      400    {object}  models.Response
// @Failure      503    {object}  models.Response
// @Router       /api/images [post]
func (rh *RestHandler) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		abortWithErrors(ctx, http.StatusBadRequest, errs.ErrInvalidFile)
		return
	}

	src, err := file.Open()
	if err != nil {
		abortWithErrors(ctx, http.StatusInternalServerError, errs.ErrInvalidFile)
		return
	}
	defer src.Close()

	url, err := rh.fileManagerService.UploadCanvasImage(ctx.Request.Context(), file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		slog.Warn("UploadImage - upload failed", "file", file.Filename, "err", err)
		abortWithErrors(ctx, statusFor(err), err)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgImageUploaded,
		Data:    models.UploadImageResponse{URL: url},
	})
}
