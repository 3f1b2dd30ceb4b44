package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/frudas24/gazewaldo/internal/config"
	"github.com/frudas24/gazewaldo/internal/gaze"
	"github.com/frudas24/gazewaldo/internal/level"
	"github.com/frudas24/gazewaldo/internal/web"
	"go.uber.org/zap"
)

const (
	minPreviewIntervalMs = 20
	maxPreviewIntervalMs = 5000
)

var (
	errPreviewInterval = fmt.Errorf("previewIntervalMs must be %d-%d", minPreviewIntervalMs, maxPreviewIntervalMs)
	errPreviewQuality  = errors.New("previewQuality must be 1-100")
)

// RegisterRoutes wires API, websocket and static handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		staticDir = filepath.Join("internal", "web", "static")
	}

	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/scenes", a.handleScenes)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.Handle("/ws/tracker", a.bridge)
	mux.Handle("/ws/control", a.control)
	mux.Handle("/ws/signal", a.signaling)
	mux.Handle("/preview.mjpg", a.stream)
	mux.Handle("/scenes/", http.StripPrefix("/scenes/", http.FileServer(http.Dir(filepath.Dir(a.cfg.ScenesPath)))))
	mux.HandleFunc("/favicon.ico", handleFavicon)

	mux.Handle("/", a.staticFileServer(staticDir))
}

// stateResponse is the /api/state payload.
type stateResponse struct {
	Stage             string        `json:"stage"`
	UseTracker        bool          `json:"useTracker"`
	LastError         string        `json:"lastError,omitempty"`
	BridgeConnected   bool          `json:"bridgeConnected"`
	RendererConnected bool          `json:"rendererConnected"`
	Scene             string        `json:"scene"`
	Level             int           `json:"level"`
	Gaze              gaze.Snapshot `json:"gaze"`
	ChangedAt         time.Time     `json:"changedAt"`
}

// configRequest is a runtime preview update.
type configRequest struct {
	PreviewIntervalMs *int `json:"previewIntervalMs,omitempty"`
	PreviewQuality    *int `json:"previewQuality,omitempty"`
	Reset             bool `json:"reset,omitempty"`
}

// configResponse reports the active preview settings.
type configResponse struct {
	Applied           bool `json:"applied"`
	PreviewIntervalMs int  `json:"previewIntervalMs"`
	PreviewQuality    int  `json:"previewQuality"`
}

// handleState returns session, tracker and game state.
func (a *App) handleState(w http.ResponseWriter, _ *http.Request) {
	snap := a.session.Snapshot()
	a.mu.Lock()
	scene := a.flow.Scene()
	index := a.flow.Index()
	a.mu.Unlock()

	writeJSON(w, stateResponse{
		Stage:             string(snap.Stage),
		UseTracker:        snap.UseTracker,
		LastError:         snap.LastError,
		BridgeConnected:   a.bridge.Connected(),
		RendererConnected: a.control.Connected(),
		Scene:             string(scene),
		Level:             index,
		Gaze:              a.filter.Snapshot(),
		ChangedAt:         snap.ChangedAt,
	})
}

// handleScenes returns the loaded scene catalog.
func (a *App) handleScenes(w http.ResponseWriter, _ *http.Request) {
	scenes := a.catalog
	if scenes == nil {
		scenes = []level.Scene{}
	}
	writeJSON(w, scenes)
}

// handleConfig reads or updates the runtime preview settings.
func (a *App) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.mu.Lock()
		p := a.cfg.Preview
		a.mu.Unlock()
		writeJSON(w, configResponse{PreviewIntervalMs: p.IntervalMs, PreviewQuality: p.Quality})
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	next := a.cfg
	a.mu.Unlock()

	if req.Reset {
		next.Preview = a.defaults
	} else {
		if req.PreviewIntervalMs != nil {
			next.Preview.IntervalMs = *req.PreviewIntervalMs
		}
		if req.PreviewQuality != nil {
			next.Preview.Quality = *req.PreviewQuality
		}
	}
	if err := validatePreview(next.Preview); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.Apply(next)
	writeJSON(w, configResponse{
		Applied:           true,
		PreviewIntervalMs: next.Preview.IntervalMs,
		PreviewQuality:    next.Preview.Quality,
	})
}

// validatePreview checks runtime preview bounds.
func validatePreview(p config.PreviewConfig) error {
	if p.IntervalMs < minPreviewIntervalMs || p.IntervalMs > maxPreviewIntervalMs {
		return errPreviewInterval
	}
	if p.Quality < 1 || p.Quality > 100 {
		return errPreviewQuality
	}
	return nil
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// staticFileServer returns a handler for static assets, preferring disk then embed.
func (a *App) staticFileServer(staticDir string) http.Handler {
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	embedded, err := web.StaticFS()
	if err != nil {
		a.log.Warn("static assets unavailable", zap.Error(err))
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(embedded))
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
