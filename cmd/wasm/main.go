//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
	"github.com/quotebuilder/sketchpad/backend-go/internal/engine"
)

var (
	ed        *engine.Editor
	callbacks struct {
		render js.Value
		save   js.Value
		cancel js.Value
	}
)

func main() {
	// Create the editor API object
	sketchEditor := js.Global().Get("Object").New()

	// --- Lifecycle ---
	sketchEditor.Set("mount", js.FuncOf(mount))

	// --- Commands (host → editor) ---
	sketchEditor.Set("pointerDown", js.FuncOf(pointer(func(p document.Point) error { return ed.PointerDown(p) })))
	sketchEditor.Set("pointerMove", js.FuncOf(pointer(func(p document.Point) error { return ed.PointerMove(p) })))
	sketchEditor.Set("pointerUp", js.FuncOf(pointer(func(p document.Point) error { return ed.PointerUp(p) })))
	sketchEditor.Set("click", js.FuncOf(pointer(func(p document.Point) error { return ed.Click(p) })))
	sketchEditor.Set("doubleClick", js.FuncOf(pointer(func(p document.Point) error { return ed.DoubleClick(p) })))
	sketchEditor.Set("setTool", js.FuncOf(setTool))
	sketchEditor.Set("setStyle", js.FuncOf(setStyle))
	sketchEditor.Set("finishPolyline", js.FuncOf(finishPolyline))
	sketchEditor.Set("setSelection", js.FuncOf(setSelection))
	sketchEditor.Set("deleteSelected", js.FuncOf(deleteSelected))
	sketchEditor.Set("transformSelection", js.FuncOf(transformSelection))
	sketchEditor.Set("setBackground", js.FuncOf(setBackground))
	sketchEditor.Set("clear", js.FuncOf(clearSurface))
	sketchEditor.Set("undo", js.FuncOf(undo))
	sketchEditor.Set("resize", js.FuncOf(resize))
	sketchEditor.Set("save", js.FuncOf(save))
	sketchEditor.Set("cancel", js.FuncOf(cancel))

	// --- Queries (host ← editor) ---
	sketchEditor.Set("render", js.FuncOf(render))
	sketchEditor.Set("hitTest", js.FuncOf(hitTest))
	sketchEditor.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	sketchEditor.Set("getSnapshot", js.FuncOf(getSnapshot))
	sketchEditor.Set("getTool", js.FuncOf(getTool))
	sketchEditor.Set("exportImage", js.FuncOf(exportImage))

	// Register on global scope
	js.Global().Set("sketchEditor", sketchEditor)

	// Signal that WASM is ready
	js.Global().Set("sketchWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func notMounted() interface{} {
	return js.ValueOf(map[string]interface{}{"error": "editor not mounted"})
}

// --- Lifecycle ---

// mount(width, height, onRender, onSave, onCancel). A zero-sized viewport
// returns an error; the host retries after layout.
func mount(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "missing viewport size"})
	}
	if len(args) > 2 {
		callbacks.render = args[2]
	}
	if len(args) > 3 {
		callbacks.save = args[3]
	}
	if len(args) > 4 {
		callbacks.cancel = args[4]
	}

	e, err := engine.NewEditor(args[0].Int(), args[1].Int(), engine.DefaultOptions(), engine.RendererFunc(pushScene))
	if err != nil {
		return errorResult(err)
	}
	e.OnSave = func(image string) {
		if callbacks.save.Type() == js.TypeFunction {
			callbacks.save.Invoke(image)
		}
	}
	e.OnCancel = func() {
		if callbacks.cancel.Type() == js.TypeFunction {
			callbacks.cancel.Invoke()
		}
	}
	ed = e
	ed.Render()
	return okResult()
}

func pushScene(scene engine.Scene) {
	if callbacks.render.Type() != js.TypeFunction {
		return
	}
	out, err := engine.DrawCommandsToJSON(engine.CompileDrawCommands(scene))
	if err != nil {
		return
	}
	callbacks.render.Invoke(out)
}

// --- Command Handlers ---

func pointer(fn func(p document.Point) error) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if ed == nil {
			return notMounted()
		}
		if len(args) < 2 {
			return nil
		}
		if err := fn(document.Pt(args[0].Float(), args[1].Float())); err != nil {
			return errorResult(err)
		}
		return nil
	}
}

func setTool(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	if len(args) < 1 {
		return nil
	}
	tool, err := engine.ParseTool(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	ed.SetTool(tool)
	return okResult()
}

func setStyle(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	if len(args) < 1 {
		return nil
	}
	var style document.Style
	if err := json.Unmarshal([]byte(args[0].String()), &style); err != nil {
		return errorResult(err)
	}
	if err := ed.SetStyle(style); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func finishPolyline(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	closeShape := len(args) > 0 && args[0].Truthy()
	if err := ed.FinishPolyline(closeShape); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	var ids []string
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		arr := args[0]
		length := arr.Length()
		ids = make([]string, length)
		for i := 0; i < length; i++ {
			ids[i] = arr.Index(i).String()
		}
	}
	if err := ed.Select(ids); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	n, err := ed.DeleteSelected()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(n)
}

// transformSelection takes the matrix as a JSON array [a, b, c, d, e, f].
func transformSelection(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	if len(args) < 1 {
		return nil
	}
	var m engine.Matrix2D
	if err := json.Unmarshal([]byte(args[0].String()), &m); err != nil {
		return errorResult(err)
	}
	n, err := ed.Transform(m)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(n)
}

func setBackground(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	if len(args) < 1 {
		return nil
	}
	if err := ed.SetBackground(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func clearSurface(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	if err := ed.Clear(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func undo(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	ok, err := ed.Undo()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(ok)
}

func resize(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	if len(args) < 2 {
		return nil
	}
	ed.Resize(args[0].Int(), args[1].Int())
	return nil
}

func save(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	img, err := ed.Save()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(img)
}

func cancel(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	if err := ed.Cancel(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return js.ValueOf("[]")
	}
	out, _ := engine.DrawCommandsToJSON(engine.CompileDrawCommands(ed.Surface().Scene()))
	return js.ValueOf(out)
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if ed == nil || len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(ed.HitTest(x, y))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(engine.RectToJSON(ed.Surface().SelectionBounds()))
}

func getSnapshot(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return js.ValueOf("null")
	}
	data, err := json.Marshal(ed.Snapshot())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

func getTool(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return js.ValueOf("")
	}
	return js.ValueOf(string(ed.Tool()))
}

func exportImage(this js.Value, args []js.Value) interface{} {
	if ed == nil {
		return notMounted()
	}
	img, err := ed.ExportImage()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(img)
}
