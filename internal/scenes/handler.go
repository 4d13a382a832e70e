package scenes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/softrender/softrender/internal/asset"
	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/raster"
)

const maxDocumentSize = 1 << 20 // 1MB

var errBadQuery = errors.New("bad query")

type Handler struct {
	service *Service
	assets  *asset.Handler
}

func NewHandler(service *Service, assets *asset.Handler) *Handler {
	return &Handler{service: service, assets: assets}
}

// Render handles POST /render: the body is a scene document and the
// response is one rendered frame.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(w, r)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	frame, format, err := imageQuery(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	eng, err := h.service.NewEngine(doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	img, err := eng.RenderFrame(r.Context(), frame)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeImage(w, img, format)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scenes, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list scenes failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, scenes)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(w, r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	scene, err := h.service.Create(r.Context(), doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, scene)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	scene, err := h.service.Get(r.Context(), sceneID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scene)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	doc, err := readDocument(w, r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	scene, err := h.service.Update(r.Context(), sceneID, doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scene)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	if err := h.service.Delete(r.Context(), sceneID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Image handles GET /api/scenes/{sceneId}/image?frame=&format=.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	frame, format, err := imageQuery(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	img, err := h.service.RenderFrame(r.Context(), sceneID, frame)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeImage(w, img, format)
}

// Snapshot renders a frame of a stored scene into a PNG asset.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	frame, _, err := imageQuery(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	scene, err := h.service.Get(r.Context(), sceneID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	eng, err := h.service.NewEngine(scene.Document)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	img, err := eng.RenderFrame(r.Context(), frame)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	a, err := h.assets.Save(img, fmt.Sprintf("%s_%04d.png", scene.Name, frame))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func readDocument(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", document.ErrInvalidDocument, err)
	}
	return document.Parse(data, document.FormatForContentType(r.Header.Get("Content-Type")))
}

func imageQuery(r *http.Request) (int, raster.Format, error) {
	q := r.URL.Query()
	frame := 0
	if v := q.Get("frame"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, "", fmt.Errorf("%w: frame %q", errBadQuery, v)
		}
		frame = n
	}
	format, err := raster.ParseFormat(q.Get("format"))
	if err != nil {
		return 0, "", err
	}
	return frame, format, nil
}

func writeImage(w http.ResponseWriter, img *raster.Image, format raster.Format) {
	var buf bytes.Buffer
	if err := img.Encode(&buf, format); err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, document.ErrInvalidDocument),
		errors.Is(err, engine.ErrFrameOutOfRange),
		errors.Is(err, raster.ErrUnknownFormat),
		errors.Is(err, errBadQuery):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
