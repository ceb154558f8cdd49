package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"martapp/kiosk/internal/blob"
	"martapp/kiosk/internal/config"
	"martapp/kiosk/internal/handler/middleware"
	"martapp/kiosk/internal/journal"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/player"
	"martapp/kiosk/internal/repository"
	"martapp/kiosk/internal/service"
)

type nullSink struct {
	events chan player.Event
}

func newNullSink() *nullSink               { return &nullSink{events: make(chan player.Event)} }
func (s *nullSink) Load(path string) error { return nil }
func (s *nullSink) Play() error            { return nil }
func (s *nullSink) Stop() error            { return nil }
func (s *nullSink) Restart() error         { return nil }
func (s *nullSink) SetVolume(v float64) error {
	return nil
}
func (s *nullSink) Events() <-chan player.Event { return s.events }
func (s *nullSink) Close() error {
	close(s.events)
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Auth = config.AuthConfig{AdminUsername: "admin", AdminPassword: "1234"}
	cfg.CORS = config.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", middleware.SessionHeader},
	}

	kv := repository.NewMemoryKVStore()
	blobs := repository.NewMemoryBlobStore()
	resolver := blob.NewResolver(blobs, logger, t.TempDir())
	t.Cleanup(resolver.ReleaseAll)

	j := journal.New(kv, logger)
	j.Load(context.Background())
	t.Cleanup(j.Close)

	generate := service.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
		return `[{"insight":"ok"}]`, nil
	})

	audioService := service.NewAudioService(kv, blobs, resolver, logger)
	catalogService := service.NewCatalogService(kv, blobs, resolver, logger)
	settingsService := service.NewSettingsService(kv, logger)
	chatService := service.NewChatService(kv, catalogService, generate, logger)
	reportService := service.NewReportService(j, catalogService, settingsService, generate, logger)
	authService := service.NewAuthService(cfg.Auth, repository.NewMemorySessionStore(), time.Hour)

	ctx := context.Background()
	audioService.Load(ctx)
	catalogService.Load(ctx)
	settingsService.Load(ctx)
	chatService.Load(ctx)
	t.Cleanup(audioService.Close)
	t.Cleanup(catalogService.Close)
	t.Cleanup(settingsService.Close)
	t.Cleanup(chatService.Close)

	coordinator := player.NewCoordinator(
		player.NewChannel("ambient", newNullSink(), logger),
		player.NewChannel("spot", newNullSink(), logger),
		resolver, j,
		audioService.PlaylistCell(), audioService.SpotCell(),
		time.Second, logger,
	)
	t.Cleanup(coordinator.Close)

	return SetupRouter(cfg, logger,
		NewAuthHandler(authService),
		NewPlaybackHandler(coordinator),
		NewAudioHandler(audioService, coordinator),
		NewCatalogHandler(catalogService),
		NewSettingsHandler(settingsService),
		NewChatHandler(chatService),
		NewReportHandler(j, reportService),
		NewMediaHandler(resolver, blobs),
	)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
		gin.H{"username": "admin", "password": "1234"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Data struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.Data.SessionID == "" {
		t.Fatal("login returned no session ID")
	}
	return out.Data.SessionID
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
		gin.H{"username": "admin", "password": "nope"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/admin/audio", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without session = %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/admin/audio", nil,
		map[string]string{middleware.SessionHeader: "forged"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with forged session = %d, want 401", w.Code)
	}

	session := login(t, r)
	w = doJSON(t, r, http.MethodGet, "/api/v1/admin/audio", nil,
		map[string]string{middleware.SessionHeader: session})
	if w.Code != http.StatusOK {
		t.Fatalf("status with session = %d: %s", w.Code, w.Body.String())
	}
}

func TestFloorCatalogAndSettings(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/catalog/products",
		"/api/v1/catalog/brands",
		"/api/v1/catalog/discounts",
		"/api/v1/settings/labels",
		"/api/v1/settings/theme",
		"/api/v1/playback/state",
		"/api/v1/chat/messages",
	} {
		w := doJSON(t, r, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestRecordInteractionAndReport(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/v1/interactions",
			gin.H{"type": "brands", "key": "Nike"}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("record status = %d: %s", w.Code, w.Body.String())
		}
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/interactions",
		gin.H{"type": "clicks", "key": "x"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown type status = %d, want 400", w.Code)
	}

	session := login(t, r)
	w = doJSON(t, r, http.MethodGet, "/api/v1/admin/reports/interactions?metric=brands&period=7d", nil,
		map[string]string{middleware.SessionHeader: session})
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Data []service.LabeledCount `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].Key != "Nike" || out.Data[0].Count != 2 {
		t.Fatalf("report = %+v, want Nike:2", out.Data)
	}
}

func TestPlaybackEmptySlotConflict(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/playback/ambient/play",
		gin.H{"slot": "Ambiente 1"}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for an empty slot", w.Code)
	}
}

func uploadRequest(t *testing.T, path, field, filename string, data []byte, header map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return req
}

func TestAudioUploadPlayAndServe(t *testing.T) {
	r := newTestRouter(t)
	session := login(t, r)
	auth := map[string]string{middleware.SessionHeader: session}

	// Upload a file and assign it to an ambient slot.
	req := uploadRequest(t, "/api/v1/admin/audio", "file", "loop.mp3", []byte("audio"), auth)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	var uploaded struct {
		Data model.AudioFile `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload: %v", err)
	}

	w = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/admin/audio/%s/slots", uploaded.Data.ID),
		gin.H{"slots": []string{"Ambiente 1"}}, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("assign status = %d: %s", w.Code, w.Body.String())
	}

	// Now the floor can start ambient playback from that slot.
	w = doJSON(t, r, http.MethodPost, "/api/v1/playback/ambient/play",
		gin.H{"slot": "Ambiente 1"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("play status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"phase":"playing"`) {
		t.Fatalf("play response = %s, want the ambient channel playing", w.Body.String())
	}

	// The stored blob is servable through the image endpoint.
	w = doJSON(t, r, http.MethodGet, "/api/v1/images/"+uploaded.Data.ID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("serve status = %d", w.Code)
	}
	if w.Body.String() != "audio" {
		t.Fatalf("served bytes = %q, want the stored blob", w.Body.String())
	}
}

func TestStorageOverview(t *testing.T) {
	r := newTestRouter(t)
	session := login(t, r)
	auth := map[string]string{middleware.SessionHeader: session}

	req := uploadRequest(t, "/api/v1/admin/audio", "file", "loop.mp3", []byte("audio"), auth)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/admin/storage/blobs", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("overview status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Data struct {
			Blobs     []model.BlobRecord `json:"blobs"`
			TotalSize int64              `json:"total_size"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if len(out.Data.Blobs) != 1 || out.Data.TotalSize != int64(len("audio")) {
		t.Fatalf("overview = %+v, want one blob of %d bytes", out.Data, len("audio"))
	}
}

func TestServeMissingImage(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/images/absent", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestChatRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/chat/messages",
		gin.H{"content": "oi"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("send status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/chat/messages", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var out struct {
		Data []model.ChatMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(out.Data) != 2 {
		t.Fatalf("history length = %d, want user turn plus reply", len(out.Data))
	}
}

func TestSetThemeValidation(t *testing.T) {
	r := newTestRouter(t)
	session := login(t, r)
	auth := map[string]string{middleware.SessionHeader: session}

	w := doJSON(t, r, http.MethodPut, "/api/v1/admin/settings/theme",
		gin.H{"theme": "theme-natal"}, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("set theme status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/admin/settings/theme",
		gin.H{"theme": "theme-falso"}, auth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid theme status = %d, want 400", w.Code)
	}
}
