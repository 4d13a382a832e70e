//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/raster"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	renderEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	renderEngine.Set("loadDocument", js.FuncOf(loadDocument))
	renderEngine.Set("updateDocument", js.FuncOf(updateDocument))
	renderEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	renderEngine.Set("setDefaultSize", js.FuncOf(setDefaultSize))
	renderEngine.Set("setPlayhead", js.FuncOf(setPlayhead))
	renderEngine.Set("play", js.FuncOf(play))
	renderEngine.Set("pause", js.FuncOf(pause))
	renderEngine.Set("togglePlay", js.FuncOf(togglePlay))
	renderEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	renderEngine.Set("render", js.FuncOf(render))
	renderEngine.Set("getPlaybackState", js.FuncOf(getPlaybackState))
	renderEngine.Set("getDocument", js.FuncOf(getDocument))
	renderEngine.Set("getSize", js.FuncOf(getSize))
	renderEngine.Set("getFrame", js.FuncOf(getFrame))
	renderEngine.Set("isPlaying", js.FuncOf(isPlaying))
	renderEngine.Set("getFPS", js.FuncOf(getFPS))
	renderEngine.Set("getTotalFrames", js.FuncOf(getTotalFrames))

	// Register on global scope
	js.Global().Set("softrenderEngine", renderEngine)

	// Signal that WASM is ready
	js.Global().Set("softrenderWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// documentArgs reads the document text and its optional format ("json" or
// "yaml", default json).
func documentArgs(args []js.Value) ([]byte, document.Format, bool) {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return nil, "", false
	}
	format := document.FormatJSON
	if len(args) > 1 && args[1].Type() == js.TypeString && args[1].String() == string(document.FormatYAML) {
		format = document.FormatYAML
	}
	return []byte(args[0].String()), format, true
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	data, format, ok := documentArgs(args)
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "missing document"})
	}
	if err := eng.LoadDocument(data, format); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func updateDocument(this js.Value, args []js.Value) interface{} {
	data, format, ok := documentArgs(args)
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "missing document"})
	}
	if err := eng.UpdateDocument(data, format); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	name := "cube"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	if err := eng.LoadSampleDocument(name); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setDefaultSize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetDefaultSize(args[0].Int(), args[1].Int())
	return nil
}

func setPlayhead(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetPlayhead(args[0].Int())
	return nil
}

func play(this js.Value, args []js.Value) interface{} {
	eng.Play()
	return nil
}

func pause(this js.Value, args []js.Value) interface{} {
	eng.Pause()
	return nil
}

func togglePlay(this js.Value, args []js.Value) interface{} {
	eng.TogglePlay()
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	img, err := eng.Tick(context.Background())
	if err != nil {
		return errorResult(err)
	}
	return imageResult(img)
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	img, err := eng.Render(context.Background())
	if err != nil {
		return errorResult(err)
	}
	return imageResult(img)
}

// imageResult hands the frame over as {width, height, pixels} where pixels
// is a Uint8ClampedArray ready for ImageData.
func imageResult(img *raster.Image) interface{} {
	rgba := img.RGBA()
	pixels := js.Global().Get("Uint8ClampedArray").New(len(rgba.Pix))
	js.CopyBytesToJS(pixels, rgba.Pix)
	return js.ValueOf(map[string]interface{}{
		"width":  img.Cols(),
		"height": img.Rows(),
		"pixels": pixels,
	})
}

func getPlaybackState(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(eng.GetPlaybackState())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	doc := eng.Document()
	if doc == nil {
		return js.ValueOf("null")
	}
	data, err := document.Encode(doc, document.FormatJSON)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

func getSize(this js.Value, args []js.Value) interface{} {
	w, h := eng.Size()
	return js.ValueOf(map[string]interface{}{"width": w, "height": h})
}

func getFrame(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFrame())
}

func isPlaying(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.IsPlaying())
}

func getFPS(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFPS())
}

func getTotalFrames(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetTotalFrames())
}
