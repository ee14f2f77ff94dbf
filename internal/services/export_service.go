package services

import (
	"context"
	"io"
	"log/slog"

	"collabCanvas/internal/interfaces"
	"collabCanvas/internal/render"
)

type ExportService struct {
	canvas     interfaces.Canvas
	imageHosts []string
	logger     *slog.Logger
}

// NewExportService renders board snapshots. Image payloads pointing at URLs
// are fetched only from imageHosts, normally the object storage endpoints.
func NewExportService(canvas interfaces.Canvas, logger *slog.Logger, imageHosts ...string) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{canvas: canvas, imageHosts: imageHosts, logger: logger}
}

func (es *ExportService) ExportPNG(ctx context.Context, boardID uint, w io.Writer) error {
	return render.NewExporter(es.logger, es.imageHosts...).WritePNG(w, es.canvas.Snapshot(ctx, boardID))
}

func (es *ExportService) ExportPDF(ctx context.Context, boardID uint, w io.Writer) error {
	return render.NewExporter(es.logger, es.imageHosts...).WritePDF(w, es.canvas.Snapshot(ctx, boardID))
}
