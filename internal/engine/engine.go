package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
	"github.com/softrender/softrender/internal/scene"
)

var (
	ErrNoDocument      = errors.New("engine: no document loaded")
	ErrFrameOutOfRange = errors.New("engine: frame out of range")
)

// Engine owns a scene document, the modules built from it and the playback
// state. It is not safe for concurrent use; give each goroutine its own.
type Engine struct {
	// Document state
	doc   *document.Document
	scene *document.Scene

	// Size used when the document does not set one
	defaultWidth  int
	defaultHeight int

	// Largest image the engine will allocate
	maxWidth  int
	maxHeight int

	// Playback state
	frame   int
	playing bool
	fps     int

	totalFrames int

	// Last rendered frame; rebuilt when dirty
	image *raster.Image
	dirty bool
}

// NewEngine creates a new engine instance.
func NewEngine() *Engine {
	return &Engine{
		defaultWidth:  document.DefaultWidth,
		defaultHeight: document.DefaultHeight,
		maxWidth:      document.MaxDimension,
		maxHeight:     document.MaxDimension,
		fps:           24,
		totalFrames:   1,
		dirty:         true,
	}
}

// SetDefaultSize sets the image size for documents that leave it out.
func (e *Engine) SetDefaultSize(width, height int) {
	if width > 0 {
		e.defaultWidth = width
	}
	if height > 0 {
		e.defaultHeight = height
	}
}

// SetMaxSize lowers the largest image size a document may ask for.
// Values outside (0, document.MaxDimension] are ignored.
func (e *Engine) SetMaxSize(width, height int) {
	if width > 0 && width <= document.MaxDimension {
		e.maxWidth = width
	}
	if height > 0 && height <= document.MaxDimension {
		e.maxHeight = height
	}
}

// --- Commands ---

// LoadDocument parses and loads a document, resetting playback.
func (e *Engine) LoadDocument(data []byte, format document.Format) error {
	doc, err := document.Parse(data, format)
	if err != nil {
		return err
	}
	return e.SetDocument(doc)
}

// SetDocument loads doc, resetting playback.
func (e *Engine) SetDocument(doc *document.Document) error {
	if err := e.setDocument(doc); err != nil {
		return err
	}
	e.frame = 0
	e.playing = false
	return nil
}

// UpdateDocument replaces the document while preserving playback state.
func (e *Engine) UpdateDocument(data []byte, format document.Format) error {
	doc, err := document.Parse(data, format)
	if err != nil {
		return err
	}
	return e.ReplaceDocument(doc)
}

// ReplaceDocument swaps in doc while preserving playback state.
func (e *Engine) ReplaceDocument(doc *document.Document) error {
	if err := e.setDocument(doc); err != nil {
		return err
	}

	// Clamp frame to valid range (but don't reset it)
	if e.frame >= e.totalFrames {
		e.frame = e.totalFrames - 1
	}
	return nil
}

// LoadSampleDocument loads one of the built-in samples by name.
func (e *Engine) LoadSampleDocument(name string) error {
	sample, ok := document.Samples[name]
	if !ok {
		return fmt.Errorf("unknown sample %q", name)
	}
	return e.SetDocument(sample())
}

func (e *Engine) setDocument(doc *document.Document) error {
	sized := *doc
	if sized.Width == 0 {
		sized.Width = e.defaultWidth
	}
	if sized.Height == 0 {
		sized.Height = e.defaultHeight
	}
	if sized.Width > e.maxWidth || sized.Height > e.maxHeight {
		return fmt.Errorf("%w: size %dx%d exceeds %dx%d",
			document.ErrInvalidDocument, sized.Width, sized.Height, e.maxWidth, e.maxHeight)
	}
	sc, err := document.Build(&sized)
	if err != nil {
		return err
	}

	e.doc = doc
	e.scene = sc
	e.fps = sc.FPS
	e.totalFrames = sc.Frames
	e.image = nil
	e.dirty = true
	return nil
}

// SetPlayhead sets the current frame.
func (e *Engine) SetPlayhead(frame int) {
	if frame < 0 {
		frame = 0
	}
	if frame >= e.totalFrames {
		frame = e.totalFrames - 1
	}
	if e.frame != frame {
		e.frame = frame
		e.dirty = true
	}
}

// Play starts playback.
func (e *Engine) Play() {
	e.playing = true
}

// Pause stops playback.
func (e *Engine) Pause() {
	e.playing = false
}

// TogglePlay toggles play/pause state.
func (e *Engine) TogglePlay() {
	e.playing = !e.playing
}

// Tick advances the frame if playing and renders it.
func (e *Engine) Tick(ctx context.Context) (*raster.Image, error) {
	if e.playing {
		e.frame = (e.frame + 1) % e.totalFrames
		e.dirty = true
	}
	return e.Render(ctx)
}

// --- Queries ---

// Render draws the current frame. The returned image belongs to the engine
// and is reused by later calls.
func (e *Engine) Render(ctx context.Context) (*raster.Image, error) {
	if e.scene == nil {
		return nil, ErrNoDocument
	}
	if !e.dirty && e.image != nil {
		return e.image, nil
	}

	if e.image == nil {
		e.image = raster.New(e.scene.Height, e.scene.Width)
	}
	if err := e.draw(ctx, e.frame, e.image); err != nil {
		return nil, err
	}
	e.dirty = false
	return e.image, nil
}

// RenderFrame draws frame into a new image without moving the playhead.
func (e *Engine) RenderFrame(ctx context.Context, frame int) (*raster.Image, error) {
	if e.scene == nil {
		return nil, ErrNoDocument
	}
	if frame < 0 || frame >= e.totalFrames {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, frame, e.totalFrames)
	}
	img := raster.New(e.scene.Height, e.scene.Width)
	if err := e.draw(ctx, frame, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (e *Engine) draw(ctx context.Context, frame int, img *raster.Image) error {
	sc := e.scene
	img.Reset()
	img.Fill(sc.Background)

	gtm := OrbitTransform(sc.Orbit, frame, e.totalFrames)
	ds := sc.DrawState
	if err := scene.Draw(ctx, sc.Root, &sc.View, &gtm, &ds, img); err != nil {
		return fmt.Errorf("draw frame %d: %w", frame, err)
	}
	return nil
}

// OrbitTransform returns the global transform for frame: a rotation about
// the y axis by orbit degrees spread evenly over total frames.
func OrbitTransform(orbit float64, frame, total int) geom.Matrix {
	gtm := geom.Identity()
	if orbit == 0 || total <= 0 {
		return gtm
	}
	rad := orbit * float64(frame) / float64(total) * math.Pi / 180
	gtm.RotateY(math.Cos(rad), math.Sin(rad))
	return gtm
}

// PlaybackState is a snapshot of the engine's playback fields.
type PlaybackState struct {
	Frame       int  `json:"frame"`
	Playing     bool `json:"playing"`
	FPS         int  `json:"fps"`
	TotalFrames int  `json:"totalFrames"`
}

// GetPlaybackState returns the current playback state.
func (e *Engine) GetPlaybackState() PlaybackState {
	return PlaybackState{
		Frame:       e.frame,
		Playing:     e.playing,
		FPS:         e.fps,
		TotalFrames: e.totalFrames,
	}
}

// Document returns the loaded document, or nil.
func (e *Engine) Document() *document.Document {
	return e.doc
}

// Size returns the rendered image size, or zeros without a document.
func (e *Engine) Size() (width, height int) {
	if e.scene == nil {
		return 0, 0
	}
	return e.scene.Width, e.scene.Height
}

// GetFrame returns the current frame number.
func (e *Engine) GetFrame() int {
	return e.frame
}

// IsPlaying returns whether playback is active.
func (e *Engine) IsPlaying() bool {
	return e.playing
}

// GetFPS returns the frames per second.
func (e *Engine) GetFPS() int {
	return e.fps
}

// GetTotalFrames returns the total number of frames.
func (e *Engine) GetTotalFrames() int {
	return e.totalFrames
}
