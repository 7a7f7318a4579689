package mixer

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"vjdeck/internal/catalog"
	"vjdeck/internal/deck"
	"vjdeck/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// Handler exposes the mixer HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics

	// PublicURL is encoded into the /qr code so a phone can join the
	// session. When empty the request's own host is used.
	PublicURL string
}

// NewHandler returns a Handler that uses the given Service, Logger, and
// optional Metrics. Metrics may be nil to disable metric recording (e.g.
// in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Routes mounts every mixer endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/library", h.LoadLibrary)
		r.Get("/library", h.GetLibrary)

		r.Get("/deck", h.GetDeck)
		r.Post("/deck/import", h.ImportSelection)
		r.Route("/deck/{deck_id}", func(r chi.Router) {
			r.Delete("/", h.RemoveItem)
			r.Post("/toggle", h.ToggleItem)
			r.Put("/volume", h.SetItemVolume)
			r.Put("/seek", h.SeekItem)
			r.Post("/stage", h.ToggleItemStage)
			r.Get("/thumbnail", h.GetThumbnail)
		})

		r.Post("/transport/play", h.PlayAll)
		r.Post("/transport/pause", h.PauseAll)
		r.Post("/transport/stop", h.StopAll)
		r.Put("/mix", h.SetMix)

		r.Put("/stage", h.SetStage)
		r.Put("/background", h.SetBackground)
		r.Post("/panels/toggle", h.TogglePanels)
	})

	r.Get("/media/{media_id}", h.ServeMedia)
	r.Get("/thumbs/*", h.ServeSidecar)
	r.Get("/qr", h.ServeQR)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("response encoding failed", slog.String("error", err.Error()))
	}
}

// LoadLibrary handles POST /api/library. Body: { "path": "/media/root" }.
// The previous catalog and the whole deck are replaced.
func (h *Handler) LoadLibrary(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	cat, err := h.svc.LoadFolder(body.Path)
	if err != nil {
		h.log.Error("library load failed", slog.String("path", body.Path), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{
		"ambient":    len(cat.Ambient),
		"visuals":    len(cat.Visuals),
		"music":      len(cat.Music),
		"thumbnails": len(cat.Thumbnails),
	})
	if h.metrics != nil {
		h.metrics.IncLibraryLoads()
	}
}

type libraryResponse struct {
	Ambient     []catalog.MediaFile            `json:"ambient"`
	Visuals     []catalog.MediaFile            `json:"visuals"`
	Music       []catalog.MediaFile            `json:"music"`
	MusicGroups map[string][]catalog.MediaFile `json:"musicGroups"`
}

// GetLibrary handles GET /api/library. Sidecar image paths never leave the
// server; clients fetch them through /thumbs/{key}.
func (h *Handler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	if cat == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, libraryResponse{
		Ambient:     cat.Ambient,
		Visuals:     cat.Visuals,
		Music:       cat.Music,
		MusicGroups: cat.MusicGroups,
	})
}

type deckResponse struct {
	deck.Snapshot
	Units []deck.Status `json:"units"`
}

// GetDeck handles GET /api/deck.
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, deckResponse{
		Snapshot: h.svc.Snapshot(),
		Units:    h.svc.UnitStatuses(),
	})
}

// ImportSelection handles POST /api/deck/import. Body: { "ids": [...] }.
// Already-imported sources are skipped silently.
func (h *Handler) ImportSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	added := h.svc.Import(body.IDs)
	h.log.Debug("selection imported",
		slog.Int("requested", len(body.IDs)),
		slog.Int("added", len(added)))
	if added == nil {
		added = []deck.Item{}
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"added": added})
}

// RemoveItem handles DELETE /api/deck/{deck_id}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deck_id")
	if !h.svc.Remove(deckID) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleItem handles POST /api/deck/{deck_id}/toggle.
func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	if !h.svc.TogglePlay(chi.URLParam(r, "deck_id")) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetItemVolume handles PUT /api/deck/{deck_id}/volume. Body: { "value": 55 }.
func (h *Handler) SetItemVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !h.svc.SetLocalVolume(chi.URLParam(r, "deck_id"), body.Value) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeekItem handles PUT /api/deck/{deck_id}/seek. Body: { "position": 12.5 }.
func (h *Handler) SeekItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !h.svc.SeekUnit(chi.URLParam(r, "deck_id"), body.Position) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleItemStage handles POST /api/deck/{deck_id}/stage. Only video items
// react; for everything else this is a no-op with success status.
func (h *Handler) ToggleItemStage(w http.ResponseWriter, r *http.Request) {
	if !h.svc.ToggleStage(chi.URLParam(r, "deck_id")) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetThumbnail handles GET /api/deck/{deck_id}/thumbnail. The fallback
// chain never errors; an exhausted chain is a 404.
func (h *Handler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deck_id")
	img := h.svc.Thumbnail(r.Context(), deckID)
	if img == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.WriteHeader(http.StatusOK)
	w.Write(img)
	if h.metrics != nil {
		h.metrics.IncThumbnailsResolved()
	}
}

// PlayAll handles POST /api/transport/play.
func (h *Handler) PlayAll(w http.ResponseWriter, r *http.Request) {
	h.svc.PlayAll()
	h.transportDone(w, "play")
}

// PauseAll handles POST /api/transport/pause.
func (h *Handler) PauseAll(w http.ResponseWriter, r *http.Request) {
	h.svc.PauseAll()
	h.transportDone(w, "pause")
}

// StopAll handles POST /api/transport/stop.
func (h *Handler) StopAll(w http.ResponseWriter, r *http.Request) {
	h.svc.StopAll()
	h.transportDone(w, "stop")
}

func (h *Handler) transportDone(w http.ResponseWriter, cmd string) {
	h.log.Debug("transport command", slog.String("command", cmd))
	w.WriteHeader(http.StatusNoContent)
	if h.metrics != nil {
		h.metrics.IncTransportCommands()
	}
}

// SetMix handles PUT /api/mix. Body fields are optional; only the ones
// present are applied. Example: { "masterVolume": 0.8, "globalMute": false }.
func (h *Handler) SetMix(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MasterVolume *float64 `json:"masterVolume"`
		GlobalMute   *bool    `json:"globalMute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if body.MasterVolume != nil {
		h.svc.SetMasterVolume(*body.MasterVolume)
	}
	if body.GlobalMute != nil {
		h.svc.SetGlobalMute(*body.GlobalMute)
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStage handles PUT /api/stage. Body: { "deckId": "deck_..." }; an empty
// id clears the slot back to the placeholder.
func (h *Handler) SetStage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeckID string `json:"deckId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.svc.SetActiveStageID(body.DeckID)
	w.WriteHeader(http.StatusNoContent)
}

// SetBackground handles PUT /api/background. Body: { "deckId": "deck_..." }.
func (h *Handler) SetBackground(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeckID string `json:"deckId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.svc.SetActiveBackgroundID(body.DeckID)
	w.WriteHeader(http.StatusNoContent)
}

// TogglePanels handles POST /api/panels/toggle.
func (h *Handler) TogglePanels(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"panelsHidden": h.svc.TogglePanels()})
}

// ServeMedia handles GET /media/{media_id}, streaming the source file
// behind a catalog entry's playable URL. Range requests are handled by
// http.ServeFile.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	path, ok := h.svc.MediaPath(chi.URLParam(r, "media_id"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

// ServeSidecar handles GET /thumbs/{key...}, serving the sidecar image
// registered for an extension-stripped relative path.
func (h *Handler) ServeSidecar(w http.ResponseWriter, r *http.Request) {
	path, ok := h.svc.SidecarPath(chi.URLParam(r, "*"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

// ServeQR handles GET /qr, returning a PNG QR code pointing at the
// configured public URL so a second device can open the control surface.
func (h *Handler) ServeQR(w http.ResponseWriter, r *http.Request) {
	target := h.PublicURL
	if target == "" {
		target = "http://" + r.Host + "/"
	}
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error("qr encoding failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
