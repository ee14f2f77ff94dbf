package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"collabCanvas/configs"
	"collabCanvas/internal/enums"
	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/repositories"
	"collabCanvas/internal/utils"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *configs.Config {
	v := viper.New()
	v.Set("jwt.secret", "test-secret")
	v.Set("jwt.expiration_time", 3600)
	v.Set("canvas.width", 640)
	v.Set("canvas.height", 480)
	return &configs.Config{Viper: v}
}

type fakeCanvas struct {
	mu     sync.Mutex
	boards map[uint]*models.SessionSnapshot
	loads  int
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{boards: make(map[uint]*models.SessionSnapshot)}
}

func (fc *fakeCanvas) Snapshot(_ context.Context, boardID uint) *models.SessionSnapshot {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if snap, ok := fc.boards[boardID]; ok {
		return snap.Clone()
	}
	return models.NewSessionSnapshot()
}

func (fc *fakeCanvas) Load(_ context.Context, boardID uint, snap *models.SessionSnapshot) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.boards[boardID] = snap.Clone()
	fc.loads++
	return nil
}

func TestCreateAndJoinProtectedBoard(t *testing.T) {
	ctx := context.Background()
	bs := NewBoardService(repositories.NewMemoryRepository(), testConfig())

	board, errors := bs.CreateBoard(ctx, &models.CreateBoardRequest{Name: "  Design review ", Passcode: "hunter2"})
	require.Empty(t, errors)
	assert.Equal(t, "Design review", board.Name)
	assert.True(t, board.Protected)
	assert.NotEqual(t, "hunter2", board.PasscodeHash)
	assert.Equal(t, 640, board.CanvasWidth)

	_, errors = bs.JoinBoard(ctx, board.ID, &models.JoinBoardRequest{Name: "Ada", Passcode: "nope"})
	assert.Equal(t, []error{errs.ErrWrongPasscode}, errors)

	joined, errors := bs.JoinBoard(ctx, board.ID, &models.JoinBoardRequest{Name: "Ada", Passcode: "hunter2"})
	require.Empty(t, errors)
	assert.NotEmpty(t, joined.ParticipantID)
	assert.Equal(t, utils.ParticipantColor(joined.ParticipantID), joined.Color)

	claims, err := utils.VerifyToken(joined.Token, bs.Secret())
	require.NoError(t, err)
	assert.Equal(t, joined.ParticipantID, claims.ParticipantID)
	assert.Equal(t, board.ID, claims.BoardID)
	assert.Equal(t, "Ada", claims.Name)
}

func TestJoinOpenBoardAndMissingBoard(t *testing.T) {
	ctx := context.Background()
	bs := NewBoardService(repositories.NewMemoryRepository(), testConfig())
	board, errors := bs.CreateBoard(ctx, &models.CreateBoardRequest{Name: "open"})
	require.Empty(t, errors)
	assert.False(t, board.Protected)

	_, errors = bs.JoinBoard(ctx, board.ID, &models.JoinBoardRequest{Name: "Bob"})
	assert.Empty(t, errors)

	_, errors = bs.JoinBoard(ctx, 404, &models.JoinBoardRequest{Name: "Bob"})
	assert.Equal(t, []error{errs.ErrBoardNotFound}, errors)

	_, errors = bs.CreateBoard(ctx, &models.CreateBoardRequest{Name: ""})
	assert.Equal(t, []error{errs.ErrBoardName}, errors)
}

func TestSessionSaveListLoadDelete(t *testing.T) {
	ctx := context.Background()
	canvas := newFakeCanvas()
	ss := NewSessionService(repositories.NewMemoryRepository(), canvas)
	ms := int64(1700000000000)
	ss.now = func() time.Time {
		ms += 1000
		return time.UnixMilli(ms)
	}

	snap := models.NewSessionSnapshot()
	snap.Texts = append(snap.Texts, &models.Text{ID: "text-1-a", Content: "hi"})
	require.NoError(t, canvas.Load(ctx, 1, snap))

	info, err := ss.SaveSession(ctx, 1, "morning")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Entities)
	assert.Equal(t, ms, info.Timestamp)

	require.NoError(t, canvas.Load(ctx, 1, models.NewSessionSnapshot()))
	_, err = ss.SaveSession(ctx, 1, "empty")
	require.NoError(t, err)

	_, err = ss.SaveSession(ctx, 1, "bad/name")
	assert.ErrorIs(t, err, errs.ErrSessionName)

	list, err := ss.ListSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "empty", list[0].Name)

	loaded, err := ss.LoadSession(ctx, 1, "morning")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Entities)
	assert.Equal(t, 1, canvas.Snapshot(ctx, 1).Len())

	require.NoError(t, ss.DeleteSession(ctx, 1, "morning"))
	_, err = ss.LoadSession(ctx, 1, "morning")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestExportService(t *testing.T) {
	ctx := context.Background()
	canvas := newFakeCanvas()
	snap := models.NewSessionSnapshot()
	snap.CanvasWidth, snap.CanvasHeight = 20, 20
	snap.Shapes = append(snap.Shapes, &models.Shape{ID: "shape-1-a", Start: models.Point{X: 2, Y: 2}, End: models.Point{X: 18, Y: 18}, Color: "#00f", Width: 2, Kind: enums.SHAPE_CIRCLE})
	require.NoError(t, canvas.Load(ctx, 5, snap))

	es := NewExportService(canvas, nil)
	var pngOut, pdf bytes.Buffer
	require.NoError(t, es.ExportPNG(ctx, 5, &pngOut))
	require.NoError(t, es.ExportPDF(ctx, 5, &pdf))
	assert.True(t, bytes.HasPrefix(pngOut.Bytes(), []byte("\x89PNG")))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))
}

func TestExportFetchesImagesOnlyFromAllowedHosts(t *testing.T) {
	ctx := context.Background()
	red := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(red, red.Bounds(), &image.Uniform{C: color.NRGBA{R: 0xff, A: 0xff}}, image.Point{}, draw.Src)
	var body bytes.Buffer
	require.NoError(t, png.Encode(&body, red))
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body.Bytes())
	}))
	defer srv.Close()

	canvas := newFakeCanvas()
	snap := models.NewSessionSnapshot()
	snap.CanvasWidth, snap.CanvasHeight = 10, 10
	snap.Images = append(snap.Images, &models.Image{ID: "image-1-a", Width: 10, Height: 10, Payload: srv.URL + "/canvas_images/a.png"})
	require.NoError(t, canvas.Load(ctx, 5, snap))

	pixel := func(es *ExportService) color.NRGBA {
		var out bytes.Buffer
		require.NoError(t, es.ExportPNG(ctx, 5, &out))
		img, err := png.Decode(&out)
		require.NoError(t, err)
		return color.NRGBAModel.Convert(img.At(5, 5)).(color.NRGBA)
	}

	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, pixel(NewExportService(canvas, nil)))
	assert.Zero(t, hits.Load())

	host := strings.TrimPrefix(srv.URL, "http://")
	got := pixel(NewExportService(canvas, nil, host))
	assert.Greater(t, got.R, uint8(0xf0))
	assert.Less(t, got.G, uint8(0x10))
	assert.Equal(t, int32(1), hits.Load())
}

type recordingFileManager struct {
	name, bucket, contentType string
}

func (r *recordingFileManager) UploadFile(_ context.Context, fileName string, file io.Reader, _ int64, contentType string, bucketName string) (string, error) {
	_, _ = io.ReadAll(file)
	r.name, r.bucket, r.contentType = fileName, bucketName, contentType
	return "http://files/" + bucketName + "/" + fileName, nil
}

func TestUploadCanvasImage(t *testing.T) {
	ctx := context.Background()
	fm := &recordingFileManager{}
	fs := NewFileManagerService(fm)

	url, err := fs.UploadCanvasImage(ctx, "Photo.PNG", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, enums.FILE_BUCKET_CANVAS_IMAGES, fm.bucket)
	assert.True(t, strings.HasPrefix(fm.name, "canvas_image_"))
	assert.True(t, strings.HasSuffix(fm.name, ".png"))
	assert.Equal(t, "http://files/canvas-images/"+fm.name, url)

	_, err = fs.UploadCanvasImage(ctx, "notes.txt", strings.NewReader("x"), 1, "text/plain")
	assert.ErrorIs(t, err, errs.ErrInvalidFile)

	_, err = NewFileManagerService(nil).UploadCanvasImage(ctx, "a.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, errs.ErrFileStorageOff)
}
