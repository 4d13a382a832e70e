package scenes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/raster"
	"github.com/softrender/softrender/internal/store"
	"github.com/softrender/softrender/internal/typeid"
)

var ErrNotFound = errors.New("scene not found")

type Scene struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Document  *document.Document `json:"document"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// UpdateFunc is told about every stored document change.
type UpdateFunc func(sceneID string, doc *document.Document)

type Service struct {
	store    store.Store
	width     int
	height    int
	maxWidth  int
	maxHeight int
	onUpdate  UpdateFunc
}

// NewService creates a scene service. width and height size documents
// that leave the image size out.
func NewService(st store.Store, width, height int) *Service {
	return &Service{store: st, width: width, height: height}
}

// SetMaxSize bounds the image size of every document the service accepts.
func (s *Service) SetMaxSize(width, height int) {
	s.maxWidth, s.maxHeight = width, height
}

// OnUpdate registers fn to run after Update succeeds.
func (s *Service) OnUpdate(fn UpdateFunc) {
	s.onUpdate = fn
}

// NewEngine builds doc into a fresh engine, which also checks that every
// module and op in it is valid.
func (s *Service) NewEngine(doc *document.Document) (*engine.Engine, error) {
	eng := engine.NewEngine()
	eng.SetDefaultSize(s.width, s.height)
	eng.SetMaxSize(s.maxWidth, s.maxHeight)
	if err := eng.SetDocument(doc); err != nil {
		return nil, err
	}
	return eng, nil
}

func (s *Service) Create(ctx context.Context, doc *document.Document) (*Scene, error) {
	if _, err := s.NewEngine(doc); err != nil {
		return nil, err
	}

	stored := *doc
	stored.ID = typeid.NewSceneID()
	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	row := &store.Scene{ID: stored.ID, Name: sceneName(&stored), Document: data}
	if err := s.store.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create scene: %w", err)
	}
	return toScene(row)
}

func (s *Service) Get(ctx context.Context, sceneID string) (*Scene, error) {
	row, err := s.store.Get(ctx, sceneID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toScene(row)
}

func (s *Service) List(ctx context.Context) ([]Scene, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	out := make([]Scene, 0, len(rows))
	for i := range rows {
		sc, err := toScene(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, nil
}

// Update replaces the document of an existing scene.
func (s *Service) Update(ctx context.Context, sceneID string, doc *document.Document) (*Scene, error) {
	if _, err := s.NewEngine(doc); err != nil {
		return nil, err
	}

	stored := *doc
	stored.ID = sceneID
	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	row, err := s.store.Update(ctx, sceneID, sceneName(&stored), data)
	if err != nil {
		return nil, mapStoreError(err)
	}
	sc, err := toScene(row)
	if err != nil {
		return nil, err
	}
	if s.onUpdate != nil {
		s.onUpdate(sceneID, sc.Document)
	}
	return sc, nil
}

func (s *Service) Delete(ctx context.Context, sceneID string) error {
	return mapStoreError(s.store.Delete(ctx, sceneID))
}

// Engine loads a stored scene into a new engine.
func (s *Service) Engine(ctx context.Context, sceneID string) (*engine.Engine, error) {
	sc, err := s.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	return s.NewEngine(sc.Document)
}

// RenderFrame draws one frame of a stored scene.
func (s *Service) RenderFrame(ctx context.Context, sceneID string, frame int) (*raster.Image, error) {
	eng, err := s.Engine(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	return eng.RenderFrame(ctx, frame)
}

func sceneName(doc *document.Document) string {
	if doc.Name == "" {
		return "untitled"
	}
	return doc.Name
}

func toScene(row *store.Scene) (*Scene, error) {
	var doc document.Document
	if err := json.Unmarshal(row.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode stored scene %s: %w", row.ID, err)
	}
	return &Scene{
		ID:        row.ID,
		Name:      row.Name,
		Document:  &doc,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
