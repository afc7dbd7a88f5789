package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixture is a small screen with known content:
//   - black background, 20x10
//   - red pixels at (3,2) and (12,7)
//   - feature "0|0|00ff00,1|0|00ff00,1|1|0000ff" anchored at (5,5)
//   - a 3x2 colored patch at (14,1), also saved as templates/patch.png
type fixture struct {
	dir       string
	screen    string
	templates string
}

var patchColors = [2][3]color.RGBA{
	{{0x11, 0x22, 0x33, 0xff}, {0x44, 0x55, 0x66, 0xff}, {0x77, 0x88, 0x99, 0xff}},
	{{0xaa, 0xbb, 0xcc, 0xff}, {0xdd, 0xee, 0xff, 0xff}, {0x12, 0x34, 0x56, 0xff}},
}

func writeTestPNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	screen := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			screen.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	red := color.RGBA{255, 0, 0, 255}
	screen.SetRGBA(3, 2, red)
	screen.SetRGBA(12, 7, red)
	screen.SetRGBA(5, 5, color.RGBA{0, 255, 0, 255})
	screen.SetRGBA(6, 5, color.RGBA{0, 255, 0, 255})
	screen.SetRGBA(6, 6, color.RGBA{0, 0, 255, 255})

	patch := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			screen.SetRGBA(14+x, 1+y, patchColors[y][x])
			patch.SetRGBA(x, y, patchColors[y][x])
		}
	}

	f := &fixture{
		dir:       dir,
		screen:    filepath.Join(dir, "screen.png"),
		templates: filepath.Join(dir, "templates"),
	}
	if err := os.Mkdir(f.templates, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	writeTestPNG(t, f.screen, screen)
	writeTestPNG(t, filepath.Join(f.templates, "patch.png"), patch)

	white := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range white.Pix {
		white.Pix[i] = 0xff
	}
	writeTestPNG(t, filepath.Join(f.templates, "white.png"), white)
	return f
}

func (f *fixture) server() *Server {
	return New(Options{TemplateDir: f.templates})
}

// callTool runs a tools/call request and decodes the JSON text content.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()
	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content %v", content)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &out); err != nil {
		t.Fatalf("tool output is not JSON: %v", err)
	}
	return out, nil
}

func mustCall(t *testing.T, s *Server, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	out, mcpErr := callTool(t, s, name, args)
	if mcpErr != nil {
		t.Fatalf("%s failed: %s (%v)", name, mcpErr.Message, mcpErr.Data)
	}
	return out
}

func wantPoint(t *testing.T, out map[string]interface{}, x, y int) {
	t.Helper()
	if out["x"] != float64(x) || out["y"] != float64(y) {
		t.Errorf("point: got (%v,%v), want (%d,%d)", out["x"], out["y"], x, y)
	}
	if out["found"] != (x != -1) {
		t.Errorf("found: got %v", out["found"])
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	f := newFixture(t)
	out := mustCall(t, f.server(), "image_load", map[string]interface{}{"path": f.screen})

	if out["width"] != float64(20) || out["height"] != float64(10) {
		t.Errorf("size: got %vx%v, want 20x10", out["width"], out["height"])
	}
	if out["format"] != "png" {
		t.Errorf("format: got %v, want png", out["format"])
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	f := newFixture(t)
	out := mustCall(t, f.server(), "image_dimensions", map[string]interface{}{"path": f.screen})

	if out["width"] != float64(20) || out["height"] != float64(10) {
		t.Errorf("size: got %vx%v, want 20x10", out["width"], out["height"])
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(Options{})
	_, mcpErr := callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"})
	if mcpErr == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if mcpErr.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", mcpErr.Code)
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	f := newFixture(t)
	s := f.server()

	out := mustCall(t, s, "image_sample_color", map[string]interface{}{"path": f.screen, "x": 3, "y": 2})
	if out["text"] != "ff0000" || out["hex"] != "#ff0000" {
		t.Errorf("got %v", out)
	}

	multi := mustCall(t, s, "image_sample_colors_multi", map[string]interface{}{
		"path": f.screen,
		"points": []map[string]interface{}{
			{"x": 3, "y": 2, "label": "red"},
			{"x": 6, "y": 6},
		},
	})
	samples := multi["samples"].([]interface{})
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	second := samples[1].(map[string]interface{})["color"].(map[string]interface{})
	if second["text"] != "0000ff" {
		t.Errorf("second sample: got %v, want 0000ff", second["text"])
	}
}

func TestHandleToolsCall_GetColor(t *testing.T) {
	f := newFixture(t)
	s := f.server()

	out := mustCall(t, s, "vision_get_color", map[string]interface{}{"path": f.screen, "x": 3, "y": 2})
	if out["color"] != "ff0000" || out["value"] != float64(0xff0000) {
		t.Errorf("got %v", out)
	}

	_, mcpErr := callTool(t, s, "vision_get_color", map[string]interface{}{"path": f.screen, "x": 20, "y": 0})
	if mcpErr == nil {
		t.Error("expected error for coordinates off the image")
	}
}

func TestHandleToolsCall_ColorCount(t *testing.T) {
	f := newFixture(t)
	s := f.server()

	tests := []struct {
		name string
		args map[string]interface{}
		want float64
	}{
		{"text color", map[string]interface{}{"color": "ff0000"}, 2},
		{"integer color", map[string]interface{}{"color": 0xff0000}, 2},
		{"sub-region", map[string]interface{}{"color": "ff0000", "x1": 10}, 1},
		{"explicit full extent", map[string]interface{}{"color": "ff0000", "x1": -1, "y1": -1}, 2},
		{"alternatives", map[string]interface{}{"color": "ff0000|00ff00"}, 4},
		{"loose", map[string]interface{}{"color": "000000", "similarity": 0}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["path"] = f.screen
			out := mustCall(t, s, "vision_get_color_count", tt.args)
			if out["count"] != tt.want {
				t.Errorf("count: got %v, want %v", out["count"], tt.want)
			}
		})
	}
}

func TestHandleToolsCall_IsAndWhichColor(t *testing.T) {
	f := newFixture(t)
	s := f.server()
	args := map[string]interface{}{"path": f.screen, "x": 3, "y": 2, "color": "00ff00|ff0000"}

	if out := mustCall(t, s, "vision_is_color", args); out["match"] != true {
		t.Errorf("is_color: got %v", out)
	}
	if out := mustCall(t, s, "vision_which_color", args); out["index"] != float64(2) {
		t.Errorf("which_color: got %v, want index 2", out)
	}

	args["x"] = 0
	if out := mustCall(t, s, "vision_which_color", args); out["index"] != float64(0) {
		t.Errorf("which_color on background: got %v, want index 0", out)
	}
}

func TestHandleToolsCall_InvertNegated(t *testing.T) {
	f := newFixture(t)
	args := map[string]interface{}{"path": f.screen, "x": 0, "y": 0, "color": "!ff0000"}

	plain := mustCall(t, f.server(), "vision_is_color", args)
	if plain["match"] != false {
		t.Errorf("without inversion a black pixel should not match !ff0000: %v", plain)
	}

	inverted := New(Options{InvertNegated: true})
	if out := mustCall(t, inverted, "vision_is_color", args); out["match"] != true {
		t.Errorf("with inversion a black pixel should match !ff0000: %v", out)
	}
}

func TestHandleToolsCall_InvertNegatedFeature(t *testing.T) {
	f := newFixture(t)
	plain := f.server()
	inverted := New(Options{TemplateDir: f.templates, InvertNegated: true})

	// (3,2) is red
	onRed := map[string]interface{}{"path": f.screen, "x": 3, "y": 2, "feature": "0|0|!ff0000"}
	if out := mustCall(t, plain, "vision_is_feature", onRed); out["match"] != true {
		t.Errorf("without inversion !ff0000 should match red: %v", out)
	}
	colorArgs := map[string]interface{}{"path": f.screen, "x": 3, "y": 2, "color": "!ff0000"}
	colorOut := mustCall(t, inverted, "vision_is_color", colorArgs)
	featureOut := mustCall(t, inverted, "vision_is_feature", onRed)
	if colorOut["match"] != false || featureOut["match"] != false {
		t.Errorf("with inversion !ff0000 should reject red: color %v, feature %v", colorOut, featureOut)
	}

	region := map[string]interface{}{
		"path": f.screen, "feature": "0|0|!000000",
		"x": 3, "y": 2, "x1": 4, "y1": 3,
	}
	wantPoint(t, mustCall(t, plain, "vision_find_feature", region), -1, -1)
	wantPoint(t, mustCall(t, inverted, "vision_find_feature", region), 3, 2)
}

func TestHandleToolsCall_FindColor(t *testing.T) {
	f := newFixture(t)
	s := f.server()

	out := mustCall(t, s, "vision_find_color", map[string]interface{}{"path": f.screen, "color": "ff0000"})
	wantPoint(t, out, 3, 2)

	out = mustCall(t, s, "vision_find_color", map[string]interface{}{"path": f.screen, "color": "ff0000", "order": 3})
	wantPoint(t, out, 12, 7)

	out = mustCall(t, s, "vision_find_color", map[string]interface{}{"path": f.screen, "color": "ff0000", "x": 4, "x1": 12})
	wantPoint(t, out, -1, -1)

	out = mustCall(t, s, "vision_find_color", map[string]interface{}{"path": f.screen, "color": "f00000-100000"})
	wantPoint(t, out, 3, 2)
}

func TestHandleToolsCall_SearchErrors(t *testing.T) {
	f := newFixture(t)
	s := f.server()

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
		want string
	}{
		{"bad order", "vision_find_color", map[string]interface{}{"color": "ff0000", "order": 8}, "order"},
		{"bad similarity", "vision_find_color", map[string]interface{}{"color": "ff0000", "similarity": 1.5}, "similarity"},
		{"bad color text", "vision_is_color", map[string]interface{}{"color": "ff00", "x": 0, "y": 0}, "color"},
		{"color out of range", "vision_is_color", map[string]interface{}{"color": 0x1000000, "x": 0, "y": 0}, "color"},
		{"fractional color", "vision_is_color", map[string]interface{}{"color": 1.5, "x": 0, "y": 0}, "color"},
		{"missing color", "vision_get_color_count", map[string]interface{}{}, "color is required"},
		{"region off image", "vision_get_color_count", map[string]interface{}{"color": "ff0000", "x1": 21}, "off the image"},
		{"bad feature", "vision_find_feature", map[string]interface{}{"feature": "0|0"}, "feature"},
		{"no templates", "vision_find_image", map[string]interface{}{}, "template"},
		{"empty template entry", "vision_find_image", map[string]interface{}{"templates": "patch.png|"}, "empty"},
		{"missing template", "vision_is_image", map[string]interface{}{"templates": []string{"nope.png"}, "x": 0, "y": 0}, "template 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["path"] = f.screen
			_, mcpErr := callTool(t, s, tt.tool, tt.args)
			if mcpErr == nil {
				t.Fatal("expected error")
			}
			if mcpErr.Code != -32000 {
				t.Errorf("code: got %d, want -32000", mcpErr.Code)
			}
			if data, _ := mcpErr.Data.(string); !strings.Contains(data, tt.want) {
				t.Errorf("error %q should mention %q", data, tt.want)
			}
		})
	}
}

func TestHandleToolsCall_Feature(t *testing.T) {
	f := newFixture(t)
	s := f.server()
	feature := "0|0|00ff00,1|0|00ff00,1|1|0000ff"

	out := mustCall(t, s, "vision_is_feature", map[string]interface{}{"path": f.screen, "x": 5, "y": 5, "feature": feature})
	if out["match"] != true || out["distance"] != float64(0) {
		t.Errorf("is_feature at anchor: got %v", out)
	}

	out = mustCall(t, s, "vision_is_feature", map[string]interface{}{"path": f.screen, "x": 19, "y": 9, "feature": feature})
	if out["match"] != false {
		t.Errorf("is_feature at corner: got %v", out)
	}

	out = mustCall(t, s, "vision_find_feature", map[string]interface{}{"path": f.screen, "feature": feature})
	wantPoint(t, out, 5, 5)

	// without an anchor the feature sits at the origin
	out = mustCall(t, s, "vision_is_feature", map[string]interface{}{"path": f.screen, "feature": "0|0|000000,3|2|ff0000"})
	if out["match"] != true || out["distance"] != float64(0) {
		t.Errorf("is_feature at origin: got %v", out)
	}

	// one unit of drift over four points passes at 0.999
	out = mustCall(t, s, "vision_is_feature", map[string]interface{}{
		"path": f.screen, "feature": "0|0|000000,1|0|000000,0|1|000000,1|1|000001", "similarity": 0.999,
	})
	if out["match"] != true || out["budget"] != float64(1) {
		t.Errorf("is_feature at 0.999: got %v", out)
	}

	if _, mcpErr := callTool(t, s, "vision_is_feature", map[string]interface{}{"path": f.screen, "x": 1, "feature": feature}); mcpErr == nil {
		t.Error("x without y should fail")
	}
}

func TestHandleToolsCall_Images(t *testing.T) {
	f := newFixture(t)
	s := f.server()

	out := mustCall(t, s, "vision_find_image", map[string]interface{}{
		"path":      f.screen,
		"templates": []string{"white.png", "patch.png"},
	})
	wantPoint(t, out, 14, 1)
	if out["index"] != float64(2) {
		t.Errorf("index: got %v, want 2", out["index"])
	}

	// '|'-joined list and an absolute name
	out = mustCall(t, s, "vision_find_image", map[string]interface{}{
		"path":      f.screen,
		"templates": "white.png|" + filepath.Join(f.templates, "patch.png"),
	})
	wantPoint(t, out, 14, 1)

	out = mustCall(t, s, "vision_which_image", map[string]interface{}{
		"path": f.screen, "x": 14, "y": 1, "templates": "white.png|patch.png",
	})
	if out["index"] != float64(2) {
		t.Errorf("which_image: got %v, want 2", out)
	}

	out = mustCall(t, s, "vision_is_image", map[string]interface{}{
		"path": f.screen, "x": 0, "y": 0, "templates": "patch.png",
	})
	if out["match"] != false {
		t.Errorf("is_image at origin: got %v", out)
	}

	out = mustCall(t, s, "vision_find_image", map[string]interface{}{
		"path": f.screen, "templates": "white.png",
	})
	wantPoint(t, out, -1, -1)
	if _, ok := out["index"]; ok {
		t.Error("index should be omitted when nothing matched")
	}
}

func TestHandleToolsCall_CloneAndSave(t *testing.T) {
	f := newFixture(t)
	s := f.server()

	out := mustCall(t, s, "image_clone", map[string]interface{}{
		"path": f.screen, "x": 14, "y": 1, "x1": 17, "y1": 3, "name": "button", "preview": true,
	})
	if out["name"] != "button" || out["width"] != float64(3) || out["height"] != float64(2) {
		t.Errorf("clone: got %v", out)
	}
	if preview, ok := out["preview"].(map[string]interface{}); !ok || preview["image_base64"] == "" {
		t.Error("clone preview missing")
	}

	// the clone is usable as a template and as an image
	found := mustCall(t, s, "vision_find_image", map[string]interface{}{"path": f.screen, "templates": "button"})
	wantPoint(t, found, 14, 1)

	c := mustCall(t, s, "vision_get_color", map[string]interface{}{"path": "button", "x": 2, "y": 1})
	if c["color"] != "123456" {
		t.Errorf("clone pixel: got %v, want 123456", c["color"])
	}

	auto := mustCall(t, s, "image_clone", map[string]interface{}{"path": f.screen, "x": 0, "y": 0, "x1": 2, "y1": 2})
	if auto["name"] != "clone:1" {
		t.Errorf("default clone name: got %v", auto["name"])
	}

	output := filepath.Join(f.dir, "button.png")
	saved := mustCall(t, s, "image_save", map[string]interface{}{"path": "button", "output": output})
	if saved["saved"] != true {
		t.Errorf("save: got %v", saved)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("saved file missing: %v", err)
	}

	if _, mcpErr := callTool(t, s, "image_save", map[string]interface{}{"path": "button"}); mcpErr == nil {
		t.Error("save without output should fail")
	}
}

func TestHandleToolsCall_Helpers(t *testing.T) {
	s := New(Options{})

	orders := mustCall(t, s, "vision_find_orders", nil)["orders"].(map[string]interface{})
	if len(orders) != 8 || orders["RIGHT_LEFT_DOWN_UP"] != float64(7) {
		t.Errorf("orders: got %v", orders)
	}

	norm := mustCall(t, s, "vision_normalize_color", map[string]interface{}{"color": "FF0000|!00FF00-0A0A0A"})
	if norm["color"] != "ff0000|!00ff00-0a0a0a" {
		t.Errorf("normalized color: got %v", norm["color"])
	}
	alts := norm["alternatives"].([]interface{})
	if len(alts) != 2 {
		t.Fatalf("got %d alternatives, want 2", len(alts))
	}
	second := alts[1].(map[string]interface{})
	if second["kind"] != "gamut-not" || second["shift"] != "0a0a0a" {
		t.Errorf("second alternative: got %v", second)
	}

	intColor := mustCall(t, s, "vision_normalize_color", map[string]interface{}{"color": 255})
	if intColor["color"] != "0000ff" {
		t.Errorf("integer color: got %v, want 0000ff", intColor["color"])
	}
}

func TestHandleToolsCall_NormalizeFeature(t *testing.T) {
	s := New(Options{})

	out := mustCall(t, s, "vision_normalize_feature", map[string]interface{}{"feature": "0|0|FFFFFF,-3|4|000000-010101"})
	if out["feature"] != "0|0|ffffff,-3|4|000000-010101" || out["points"] != float64(2) {
		t.Errorf("got %v", out)
	}

	if _, mcpErr := callTool(t, s, "vision_normalize_feature", map[string]interface{}{"feature": "0|0|ffffff,"}); mcpErr == nil {
		t.Error("trailing comma should be rejected")
	}
}

func TestHandleToolsCall_Annotate(t *testing.T) {
	f := newFixture(t)
	out := mustCall(t, f.server(), "vision_annotate", map[string]interface{}{
		"path":  f.screen,
		"marks": []map[string]interface{}{{"x": 14, "y": 1, "width": 3, "height": 2}},
		"color": "#00FF00",
	})
	if out["mime_type"] != "image/png" || out["image_base64"] == "" {
		t.Errorf("got %v", out)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	_, mcpErr := callTool(t, New(Options{}), "nonexistent_tool", map[string]interface{}{})
	if mcpErr == nil {
		t.Fatal("Expected error for invalid tool")
	}
	if mcpErr.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", mcpErr.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(Options{})
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json`),
	}

	resp := s.handleRequest(req)
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := New(Options{})
	for _, name := range allToolNames {
		t.Run(name, func(t *testing.T) {
			_, err := s.executeTool(name, json.RawMessage(`{}`))
			if err != nil && strings.Contains(err.Error(), "unknown tool") {
				t.Errorf("tool %s is listed but not dispatched", name)
			}
		})
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(Options{})
	_, err := s.executeTool("vision_find_color", json.RawMessage(`{not json`))
	if err == nil {
		t.Error("Expected error for invalid JSON arguments")
	}
}
