package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/raster"
	"github.com/softrender/softrender/internal/scenes"
)

const (
	maxUploadSize = 500 << 20 // 500MB
	framePattern  = "frame_%04d.png"
)

var ErrUnknownFormat = errors.New("invalid format: must be mp4, gif, or webm")

// SceneLoader builds an engine for a stored scene.
type SceneLoader interface {
	Engine(ctx context.Context, sceneID string) (*engine.Engine, error)
}

type Handler struct {
	ffmpegPath string
	maxFrames  int
	scenes     SceneLoader
}

func NewHandler(ffmpegPath string, maxFrames int, scenes SceneLoader) *Handler {
	return &Handler{ffmpegPath: ffmpegPath, maxFrames: maxFrames, scenes: scenes}
}

// job is the ffmpeg work for one output format.
type job struct {
	steps       [][]string
	output      string
	contentType string
}

func plan(format string, fps int, dir string) (job, error) {
	input := filepath.Join(dir, framePattern)
	rate := strconv.Itoa(fps)

	switch format {
	case "mp4":
		out := filepath.Join(dir, "output.mp4")
		return job{
			steps: [][]string{{
				"-framerate", rate,
				"-i", input,
				"-c:v", "libx264",
				"-pix_fmt", "yuv420p",
				"-crf", "18",
				"-preset", "fast",
				"-movflags", "+faststart",
				out,
			}},
			output:      out,
			contentType: "video/mp4",
		}, nil

	case "gif":
		// Two-pass GIF: generate palette then apply
		out := filepath.Join(dir, "output.gif")
		palette := filepath.Join(dir, "palette.png")
		return job{
			steps: [][]string{
				{"-framerate", rate, "-i", input, "-vf", "palettegen=stats_mode=diff", palette},
				{"-framerate", rate, "-i", input, "-i", palette,
					"-lavfi", "paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle", out},
			},
			output:      out,
			contentType: "image/gif",
		}, nil

	case "webm":
		out := filepath.Join(dir, "output.webm")
		return job{
			steps: [][]string{{
				"-framerate", rate,
				"-i", input,
				"-c:v", "libvpx-vp9",
				"-crf", "30",
				"-b:v", "0",
				"-pix_fmt", "yuva420p",
				out,
			}},
			output:      out,
			contentType: "video/webm",
		}, nil
	}
	return job{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// RenderFrames writes the first limit frames of eng into dir, naming the
// files with pattern and a frame number; limit <= 0 means every frame. It
// returns the written paths in order.
func RenderFrames(ctx context.Context, eng *engine.Engine, dir, pattern string, format raster.Format, limit int) ([]string, error) {
	total := eng.GetTotalFrames()
	if limit > 0 && limit < total {
		total = limit
	}
	paths := make([]string, 0, total)
	for i := 0; i < total; i++ {
		img, err := eng.RenderFrame(ctx, i)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf(pattern, i))
		if err := writeImage(path, img, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeImage(path string, img *raster.Image, format raster.Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := img.Encode(out, format); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close frame file: %w", err)
	}
	return nil
}

// ExportScene handles POST /export/{sceneId}?format=: every frame of the
// stored scene is rendered server side and encoded with ffmpeg.
func (h *Handler) ExportScene(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "gif"
	}
	if _, err := plan(format, 1, ""); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	eng, err := h.scenes.Engine(r.Context(), sceneID)
	if err != nil {
		if errors.Is(err, scenes.ErrNotFound) {
			http.Error(w, "scene not found", http.StatusNotFound)
			return
		}
		slog.Error("load scene for export", "error", err, "scene", sceneID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if n := eng.GetTotalFrames(); n > h.maxFrames {
		http.Error(w, fmt.Sprintf("scene has %d frames, limit is %d", n, h.maxFrames), http.StatusBadRequest)
		return
	}

	tempDir, err := os.MkdirTemp("", "softrender-export-*")
	if err != nil {
		slog.Error("create temp dir", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	if _, err := RenderFrames(r.Context(), eng, tempDir, framePattern, raster.FormatPNG, 0); err != nil {
		slog.Error("render frames", "error", err, "scene", sceneID)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	name := "scene"
	if doc := eng.Document(); doc != nil && doc.Name != "" {
		name = doc.Name
	}
	h.encode(w, r, tempDir, format, eng.GetFPS(), eng.GetTotalFrames(), name)
}

// ExportVideo handles POST /export/video: the client uploads frames it
// rendered itself as multipart files named frame_0000, frame_0001, ...
func (h *Handler) ExportVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	format := r.FormValue("format")
	if _, err := plan(format, 1, ""); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fps, err := strconv.Atoi(r.FormValue("fps"))
	if err != nil || fps <= 0 || fps > 120 {
		fps = 24
	}

	tempDir, err := os.MkdirTemp("", "softrender-export-*")
	if err != nil {
		slog.Error("create temp dir", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	// The key carries the frame index; map order is random.
	frameCount := 0
	for key, files := range r.MultipartForm.File {
		if !strings.HasPrefix(key, "frame_") || len(files) == 0 {
			continue
		}
		frameIdx, err := strconv.Atoi(strings.TrimPrefix(key, "frame_"))
		if err != nil || frameIdx < 0 {
			http.Error(w, "invalid frame key: "+key, http.StatusBadRequest)
			return
		}
		if frameCount >= h.maxFrames {
			http.Error(w, fmt.Sprintf("too many frames, limit is %d", h.maxFrames), http.StatusBadRequest)
			return
		}

		f, err := files[0].Open()
		if err != nil {
			http.Error(w, "failed to read frame", http.StatusBadRequest)
			return
		}
		img, err := raster.Decode(f)
		f.Close()
		if err != nil {
			http.Error(w, "invalid frame "+key+": "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := writeImage(filepath.Join(tempDir, fmt.Sprintf(framePattern, frameIdx)), img, raster.FormatPNG); err != nil {
			slog.Error("write frame file", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		frameCount++
	}

	if frameCount == 0 {
		http.Error(w, "no frames uploaded", http.StatusBadRequest)
		return
	}

	h.encode(w, r, tempDir, format, fps, frameCount, r.FormValue("name"))
}

func (h *Handler) encode(w http.ResponseWriter, r *http.Request, dir, format string, fps, frames int, name string) {
	j, err := plan(format, fps, dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("export started", "format", format, "frames", frames, "fps", fps)

	for _, args := range j.steps {
		if err := h.runFfmpeg(r.Context(), args...); err != nil {
			slog.Error("ffmpeg failed", "error", err)
			http.Error(w, fmt.Sprintf("encoding failed: %v", err), http.StatusInternalServerError)
			return
		}
	}

	outFile, err := os.Open(j.output)
	if err != nil {
		slog.Error("open output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer outFile.Close()

	stat, err := outFile.Stat()
	if err != nil {
		slog.Error("stat output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", j.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, sanitize(name), format))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	io.Copy(w, outFile)

	slog.Info("export complete", "format", format, "size", stat.Size())
}

func (h *Handler) runFfmpeg(ctx context.Context, args ...string) error {
	// -y overwrites output without prompting
	fullArgs := append([]string{"-y"}, args...)
	cmd := exec.CommandContext(ctx, h.ffmpegPath, fullArgs...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, stderr.String())
	}
	return nil
}

func sanitize(name string) string {
	if name == "" {
		return "animation"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
