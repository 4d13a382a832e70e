package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrInvalidDocument = errors.New("invalid scene document")

// Upper bounds accepted for any document.
const (
	MaxDimension = 8192
	MaxFPS       = 240
	MaxFrames    = 100000
	MaxSegments  = 1024
)

// FormatForPath picks the format from a file extension, defaulting to YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// FormatForContentType maps an HTTP Content-Type to a format. Anything that
// is not JSON is treated as YAML, which is a superset.
func FormatForContentType(contentType string) Format {
	mt, _, err := mime.ParseMediaType(contentType)
	if err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json")) {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and validates a document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode json: %w", ErrInvalidDocument, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serializes doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(doc)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// Validate checks the parts of a document that do not need building:
// the root module exists, every module reference resolves and the size
// and animation stay within the Max limits.
func (d *Document) Validate() error {
	if d.Width < 0 || d.Height < 0 || d.Width > MaxDimension || d.Height > MaxDimension {
		return fmt.Errorf("%w: size %dx%d outside [0, %d]", ErrInvalidDocument, d.Width, d.Height, MaxDimension)
	}
	if d.Camera != nil && d.View2D != nil {
		return fmt.Errorf("%w: camera and view2d are exclusive", ErrInvalidDocument)
	}
	if d.Root == "" {
		return fmt.Errorf("%w: missing root module", ErrInvalidDocument)
	}
	if _, ok := d.Modules[d.Root]; !ok {
		return fmt.Errorf("%w: root module %q not defined", ErrInvalidDocument, d.Root)
	}
	for name, ops := range d.Modules {
		for i, op := range ops {
			if op.Op != OpModule {
				continue
			}
			if _, ok := d.Modules[op.Ref]; !ok {
				return fmt.Errorf("%w: module %q op %d references unknown module %q", ErrInvalidDocument, name, i, op.Ref)
			}
		}
	}
	if a := d.Animation; a != nil {
		if a.Frames < 0 || a.Frames > MaxFrames {
			return fmt.Errorf("%w: frame count %d outside [0, %d]", ErrInvalidDocument, a.Frames, MaxFrames)
		}
		if a.FPS < 0 || a.FPS > MaxFPS {
			return fmt.Errorf("%w: fps %d outside [0, %d]", ErrInvalidDocument, a.FPS, MaxFPS)
		}
	}
	return nil
}

// Frames returns the number of frames in the document's animation, at
// least 1.
func (d *Document) Frames() int {
	if d.Animation == nil || d.Animation.Frames < 1 {
		return 1
	}
	return d.Animation.Frames
}

// FPS returns the playback rate, defaulting to 24.
func (d *Document) FPS() int {
	if d.Animation == nil || d.Animation.FPS <= 0 {
		return 24
	}
	return d.Animation.FPS
}
