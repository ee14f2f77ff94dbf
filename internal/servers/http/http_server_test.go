package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"collabCanvas/configs"
	"collabCanvas/internal/enums"
	"collabCanvas/internal/handlers"
	"collabCanvas/internal/models"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/relay"
	"collabCanvas/internal/repositories"
	"collabCanvas/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type stack struct {
	server *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	v := viper.New()
	v.Set("jwt.secret", "integration")
	v.Set("jwt.expiration_time", 3600)
	v.Set("canvas.width", 320)
	v.Set("canvas.height", 240)
	config := &configs.Config{Viper: v}

	ctx, cancel := context.WithCancel(context.Background())
	opts := relay.DefaultOptions()
	opts.AutosaveInterval = 0
	hub := relay.NewHub(relay.NewLocalBroker(), nil, opts, nil)
	go func() { _ = hub.Run(ctx) }()

	repo := repositories.NewMemoryRepository()
	boardService := services.NewBoardService(repo, config)
	restHandler := handlers.NewRestHandler(
		boardService,
		services.NewSessionService(repo, hub),
		services.NewExportService(hub, nil),
		services.NewFileManagerService(nil),
		hub,
	)
	hs := NewHttpServer(ctx, ":0", hub,
		handlers.NewHandler(boardService.Secret(), hub),
		restHandler,
		handlers.NewSocketCanvasHandler(ctx, hub, boardService),
	)
	server := httptest.NewServer(hs.Router())
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	time.Sleep(20 * time.Millisecond)
	return &stack{server: server}
}

func (s *stack) do(t *testing.T, method, path, token string, body any) (int, envelope, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	var env envelope
	_ = json.Unmarshal(buf.Bytes(), &env)
	return res.StatusCode, env, buf.Bytes()
}

func (s *stack) createAndJoin(t *testing.T, passcode string) (models.Board, models.JoinBoardResponse) {
	t.Helper()
	status, env, _ := s.do(t, http.MethodPost, "/api/boards", "", models.CreateBoardRequest{Name: "Team board", Passcode: passcode})
	require.Equal(t, http.StatusOK, status)
	var board models.Board
	require.NoError(t, json.Unmarshal(env.Data, &board))

	status, env, _ = s.do(t, http.MethodPost, "/api/boards/"+itoa(board.ID)+"/join", "", models.JoinBoardRequest{Name: "Ada", Passcode: passcode})
	require.Equal(t, http.StatusOK, status)
	var joined models.JoinBoardResponse
	require.NoError(t, json.Unmarshal(env.Data, &joined))
	return board, joined
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestBoardLifecycleOverRESTAndWebsocket(t *testing.T) {
	s := newStack(t)
	board, joined := s.createAndJoin(t, "")
	base := "/api/boards/" + itoa(board.ID)

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/boards/" + itoa(board.ID) + "?token=" + joined.Token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	_, m, err := protocol.Decode(data)
	require.NoError(t, err)
	load, ok := m.(protocol.StateLoad)
	require.True(t, ok)
	assert.Zero(t, load.Snapshot.Len())

	frame, err := protocol.Encode(protocol.ShapeCommit{Shape: &models.Shape{
		ID: "shape-1-x", Start: models.Point{X: 10, Y: 10}, End: models.Point{X: 60, Y: 40},
		Color: "#ff0000", Width: 3, Kind: enums.SHAPE_RECTANGLE,
	}}, 0, "")
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, frame))

	require.Eventually(t, func() bool {
		_, env, _ := s.do(t, http.MethodGet, base+"/snapshot", joined.Token, nil)
		var snap models.SessionSnapshot
		return json.Unmarshal(env.Data, &snap) == nil && len(snap.Shapes) == 1 && snap.Shapes[0].AuthorID == joined.ParticipantID
	}, 2*time.Second, 20*time.Millisecond)

	status, _, _ := s.do(t, http.MethodPost, base+"/sessions", joined.Token, models.SaveSessionRequest{Name: "draft"})
	require.Equal(t, http.StatusOK, status)

	status, env, _ := s.do(t, http.MethodGet, base+"/sessions", joined.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var infos []models.SavedSessionInfo
	require.NoError(t, json.Unmarshal(env.Data, &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "draft", infos[0].Name)
	assert.Equal(t, 1, infos[0].Entities)

	status, _, body := s.do(t, http.MethodGet, base+"/export.png", joined.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	status, _, _ = s.do(t, http.MethodPost, base+"/sessions/draft/load", joined.Token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err = ws.ReadMessage()
	require.NoError(t, err)
	_, m, err = protocol.Decode(data)
	require.NoError(t, err)
	load, ok = m.(protocol.StateLoad)
	require.True(t, ok, "session load reaches connected participants")
	assert.Len(t, load.Snapshot.Shapes, 1)

	status, _, _ = s.do(t, http.MethodDelete, base+"/sessions/draft", joined.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _, _ = s.do(t, http.MethodDelete, base+"/sessions/draft", joined.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env, _ = s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"participants":1`)
}

func TestProtectedBoardAndAuthorization(t *testing.T) {
	s := newStack(t)
	board, joined := s.createAndJoin(t, "open-sesame")
	base := "/api/boards/" + itoa(board.ID)

	status, env, _ := s.do(t, http.MethodPost, base+"/join", "", models.JoinBoardRequest{Name: "Eve", Passcode: "guess"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, []string{"wrong passcode"}, env.Errors)

	status, _, _ = s.do(t, http.MethodGet, base+"/snapshot", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	other, otherJoin := s.createAndJoin(t, "")
	status, _, _ = s.do(t, http.MethodGet, base+"/snapshot", otherJoin.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/boards/" + itoa(other.ID) + "?token=" + joined.Token
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	status, _, _ = s.do(t, http.MethodGet, "/api/boards/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _, _ = s.do(t, http.MethodGet, "/api/boards/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUploadWithoutStorage(t *testing.T) {
	s := newStack(t)
	_, joined := s.createAndJoin(t, "")

	var body bytes.Buffer
	body.WriteString("--x\r\nContent-Disposition: form-data; name=\"image\"; filename=\"a.png\"\r\nContent-Type: image/png\r\n\r\npng\r\n--x--\r\n")
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/images", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.Header.Set("Authorization", joined.Token)
	res, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}
