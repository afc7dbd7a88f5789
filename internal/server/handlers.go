package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/lizhizhuanshu/simple-vision/internal/imaging"
	"github.com/lizhizhuanshu/simple-vision/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "vision_find_color").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if s.opts.Debug {
		log.Printf("tool %s finished in %v (err=%v)", params.Name, time.Since(start), err)
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images and templates from the cache as needed
//  4. Calls the appropriate vision/imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Handling
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_sample_colors_multi":
		return s.handleImageSampleColorsMulti(args)
	case "image_clone":
		return s.handleImageClone(args)
	case "image_save":
		return s.handleImageSave(args)

	// Color Search
	case "vision_get_color":
		return s.handleGetColor(args)
	case "vision_get_color_count":
		return s.handleGetColorCount(args)
	case "vision_is_color":
		return s.handleIsColor(args)
	case "vision_which_color":
		return s.handleWhichColor(args)
	case "vision_find_color":
		return s.handleFindColor(args)

	// Feature Search
	case "vision_is_feature":
		return s.handleIsFeature(args)
	case "vision_find_feature":
		return s.handleFindFeature(args)

	// Template Search
	case "vision_is_image":
		return s.handleIsImage(args)
	case "vision_which_image":
		return s.handleWhichImage(args)
	case "vision_find_image":
		return s.handleFindImage(args)

	// Helpers
	case "vision_find_orders":
		return s.handleFindOrders(args)
	case "vision_normalize_color":
		return s.handleNormalizeColor(args)
	case "vision_normalize_feature":
		return s.handleNormalizeFeature(args)
	case "vision_annotate":
		return s.handleAnnotate(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared Arguments ===

// regionArgs is a search rectangle. A missing or -1 far corner extends to
// the image edge.
type regionArgs struct {
	X  int  `json:"x"`
	Y  int  `json:"y"`
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
}

func (r regionArgs) farCorner() (int, int) {
	x1, y1 := -1, -1
	if r.X1 != nil {
		x1 = *r.X1
	}
	if r.Y1 != nil {
		y1 = *r.Y1
	}
	return x1, y1
}

// matchArgs carries the strictness and scan order of a search. Similarity
// defaults to 1 (exact) and order to UP_DOWN_LEFT_RIGHT.
type matchArgs struct {
	Similarity *float64 `json:"similarity"`
	Order      *int     `json:"order"`
}

func (m matchArgs) similarity() float64 {
	if m.Similarity == nil {
		return 1
	}
	return *m.Similarity
}

func (m matchArgs) order() (vision.Order, error) {
	if m.Order == nil {
		return vision.UpDownLeftRight, nil
	}
	return vision.ParseOrder(*m.Order)
}

// matcher builds the color matcher for a search.
func (s *Server) matcher(m matchArgs) (vision.Matcher, error) {
	matcher, err := vision.NewMatcher(m.similarity())
	if err != nil {
		return vision.Matcher{}, err
	}
	matcher.InvertNegated = s.opts.InvertNegated
	return matcher, nil
}

// parseColorArg accepts a color as an integer 0xRRGGBB or as color text.
func parseColorArg(raw json.RawMessage) (vision.Composition, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("color is required")
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		return vision.DecodeColor(text)
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: color must be a string or an integer", vision.ErrInvalidColor)
	}
	if n != math.Trunc(n) || n < 0 || n > float64(vision.MaxColor) {
		return nil, fmt.Errorf("%w: integer color %v outside 0..0xFFFFFF", vision.ErrInvalidColor, n)
	}
	return vision.ExactColor(vision.Color(n))
}

// parseTemplatesArg accepts templates as a JSON array of names or as one
// '|'-separated string.
func parseTemplatesArg(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, vision.ErrEmptyTemplates
	}
	if raw[0] == '"' {
		var list string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return imaging.SplitTemplateList(list)
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("templates must be a string or an array of strings: %w", err)
	}
	return names, nil
}

func (s *Server) loadTemplates(raw json.RawMessage) ([]*vision.Bitmap, error) {
	names, err := parseTemplatesArg(raw)
	if err != nil {
		return nil, err
	}
	return s.templates.LoadAll(names)
}

// === Image Handling Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type pointArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(b, a.X, a.Y)
}

type sampleColorsMultiArgs struct {
	Path   string                 `json:"path"`
	Points []imaging.LabeledPoint `json:"points"`
}

func (s *Server) handleImageSampleColorsMulti(args json.RawMessage) (interface{}, error) {
	var a sampleColorsMultiArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColorsMulti(b, a.Points)
}

type imageCloneArgs struct {
	Path string `json:"path"`
	regionArgs
	Scale   float64 `json:"scale"`
	Name    string  `json:"name"`
	Preview bool    `json:"preview"`
}

type imageCloneResult struct {
	Name    string             `json:"name"`
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Preview *imaging.PNGResult `json:"preview,omitempty"`
}

func (s *Server) handleImageClone(args json.RawMessage) (interface{}, error) {
	var a imageCloneArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	x1, y1 := a.farCorner()
	clone, err := imaging.Clone(b, a.X, a.Y, x1, y1, a.Scale)
	if err != nil {
		return nil, err
	}

	if a.Name == "" {
		s.clones++
		a.Name = fmt.Sprintf("clone:%d", s.clones)
	}
	s.cache.Put(a.Name, clone)

	result := &imageCloneResult{Name: a.Name, Width: clone.Width, Height: clone.Height}
	if a.Preview {
		if result.Preview, err = imaging.EncodePNG(clone); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type imageSaveArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
}

func (s *Server) handleImageSave(args json.RawMessage) (interface{}, error) {
	var a imageSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, errors.New("output path is required")
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(b, a.Output); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"saved":  true,
		"output": a.Output,
		"width":  b.Width,
		"height": b.Height,
	}, nil
}

// === Color Search Handlers ===

func (s *Server) handleGetColor(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	c, err := vision.GetColor(b, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"color": c.String(),
		"value": int(c),
	}, nil
}

type colorCountArgs struct {
	Path string `json:"path"`
	regionArgs
	matchArgs
	Color json.RawMessage `json:"color"`
}

func (s *Server) handleGetColorCount(args json.RawMessage) (interface{}, error) {
	var a colorCountArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	comp, err := parseColorArg(a.Color)
	if err != nil {
		return nil, err
	}
	m, err := s.matcher(a.matchArgs)
	if err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	x1, y1 := a.farCorner()
	n, err := vision.CountColor(b, a.X, a.Y, x1, y1, comp, m)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"count": n}, nil
}

type colorPointArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	matchArgs
	Color json.RawMessage `json:"color"`
}

// whichColor is shared by vision_is_color and vision_which_color.
func (s *Server) whichColor(args json.RawMessage) (int, error) {
	var a colorPointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return 0, err
	}
	comp, err := parseColorArg(a.Color)
	if err != nil {
		return 0, err
	}
	m, err := s.matcher(a.matchArgs)
	if err != nil {
		return 0, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return 0, err
	}
	return vision.WhichColor(b, a.X, a.Y, comp, m)
}

func (s *Server) handleIsColor(args json.RawMessage) (interface{}, error) {
	n, err := s.whichColor(args)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"match": n != 0}, nil
}

func (s *Server) handleWhichColor(args json.RawMessage) (interface{}, error) {
	n, err := s.whichColor(args)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"index": n}, nil
}

// findResult reports the outcome of a find operation. X and Y are -1 when
// nothing was found.
type findResult struct {
	Found bool `json:"found"`
	X     int  `json:"x"`
	Y     int  `json:"y"`
	Index int  `json:"index,omitempty"`
}

func newFindResult(p vision.Point) *findResult {
	return &findResult{Found: p != vision.NotFound, X: p.X, Y: p.Y}
}

func (s *Server) handleFindColor(args json.RawMessage) (interface{}, error) {
	var a colorCountArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	comp, err := parseColorArg(a.Color)
	if err != nil {
		return nil, err
	}
	m, err := s.matcher(a.matchArgs)
	if err != nil {
		return nil, err
	}
	order, err := a.order()
	if err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	x1, y1 := a.farCorner()
	p, err := vision.FindColor(b, a.X, a.Y, x1, y1, comp, m, order)
	if err != nil {
		return nil, err
	}
	return newFindResult(p), nil
}

// === Feature Search Handlers ===

// featureMatcher derives the feature budget from similarity and applies the
// server's "!" inversion setting.
func (s *Server) featureMatcher(m matchArgs, f *vision.Feature) (vision.FeatureMatcher, error) {
	fm, err := vision.NewFeatureMatcher(m.similarity(), f)
	if err != nil {
		return vision.FeatureMatcher{}, err
	}
	fm.InvertNegated = s.opts.InvertNegated
	return fm, nil
}

// isFeatureArgs leaves the anchor optional; without one the feature is
// anchored at the origin.
type isFeatureArgs struct {
	Path string `json:"path"`
	X    *int   `json:"x"`
	Y    *int   `json:"y"`
	matchArgs
	Feature string `json:"feature"`
}

func (s *Server) handleIsFeature(args json.RawMessage) (interface{}, error) {
	var a isFeatureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if (a.X == nil) != (a.Y == nil) {
		return nil, errors.New("x and y must be given together")
	}
	f, err := vision.DecodeFeature(a.Feature)
	if err != nil {
		return nil, err
	}
	fm, err := s.featureMatcher(a.matchArgs, f)
	if err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	x, y := 0, 0
	var ok bool
	if a.X == nil {
		ok = vision.IsFeature(b, f, fm)
	} else {
		x, y = *a.X, *a.Y
		ok = vision.IsFeatureAt(b, x, y, f, fm)
	}
	return map[string]interface{}{
		"match":    ok,
		"distance": fm.Distance(b, x, y, f),
		"budget":   fm.Budget,
	}, nil
}

type featureArgs struct {
	Path string `json:"path"`
	regionArgs
	matchArgs
	Feature string `json:"feature"`
}

func (s *Server) handleFindFeature(args json.RawMessage) (interface{}, error) {
	var a featureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := vision.DecodeFeature(a.Feature)
	if err != nil {
		return nil, err
	}
	fm, err := s.featureMatcher(a.matchArgs, f)
	if err != nil {
		return nil, err
	}
	order, err := a.order()
	if err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	x1, y1 := a.farCorner()
	p, err := vision.FindFeature(b, a.X, a.Y, x1, y1, f, fm, order)
	if err != nil {
		return nil, err
	}
	return newFindResult(p), nil
}

// === Template Search Handlers ===

type imageSearchArgs struct {
	Path string `json:"path"`
	regionArgs
	matchArgs
	Templates json.RawMessage `json:"templates"`
}

// whichImage is shared by vision_is_image and vision_which_image.
func (s *Server) whichImage(args json.RawMessage) (int, error) {
	var a imageSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return 0, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return 0, err
	}
	templates, err := s.loadTemplates(a.Templates)
	if err != nil {
		return 0, err
	}
	return vision.WhichImage(b, a.X, a.Y, templates, a.similarity())
}

func (s *Server) handleIsImage(args json.RawMessage) (interface{}, error) {
	n, err := s.whichImage(args)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"match": n != 0}, nil
}

func (s *Server) handleWhichImage(args json.RawMessage) (interface{}, error) {
	n, err := s.whichImage(args)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"index": n}, nil
}

func (s *Server) handleFindImage(args json.RawMessage) (interface{}, error) {
	var a imageSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	order, err := a.order()
	if err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	templates, err := s.loadTemplates(a.Templates)
	if err != nil {
		return nil, err
	}
	x1, y1 := a.farCorner()
	p, which, err := vision.FindAnyImage(b, a.X, a.Y, x1, y1, templates, a.similarity(), order)
	if err != nil {
		return nil, err
	}
	result := newFindResult(p)
	result.Index = which
	return result, nil
}

// === Helper Handlers ===

func (s *Server) handleFindOrders(json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"orders": vision.Orders()}, nil
}

type normalizeColorArgs struct {
	Color json.RawMessage `json:"color"`
}

type colorAlternative struct {
	Kind  string `json:"kind"`
	Color string `json:"color"`
	Shift string `json:"shift,omitempty"`
}

func (s *Server) handleNormalizeColor(args json.RawMessage) (interface{}, error) {
	var a normalizeColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	comp, err := parseColorArg(a.Color)
	if err != nil {
		return nil, err
	}
	alts := make([]colorAlternative, 0, len(comp))
	for _, spec := range comp {
		alt := colorAlternative{Kind: spec.Kind.String(), Color: spec.Color.String()}
		if spec.Ranged() {
			alt.Shift = spec.Shift.String()
		}
		alts = append(alts, alt)
	}
	return map[string]interface{}{
		"color":        comp.String(),
		"alternatives": alts,
	}, nil
}

type normalizeFeatureArgs struct {
	Feature string `json:"feature"`
}

func (s *Server) handleNormalizeFeature(args json.RawMessage) (interface{}, error) {
	var a normalizeFeatureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := vision.DecodeFeature(a.Feature)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"feature": f.String(),
		"points":  f.Count(),
	}, nil
}

type annotateArgs struct {
	Path            string         `json:"path"`
	Marks           []imaging.Mark `json:"marks"`
	Color           string         `json:"color"`
	GridSpacing     int            `json:"grid_spacing"`
	ShowCoordinates *bool          `json:"show_coordinates"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	b, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	opts := imaging.AnnotateOptions{
		Color:           a.Color,
		GridSpacing:     a.GridSpacing,
		ShowCoordinates: a.ShowCoordinates == nil || *a.ShowCoordinates,
	}
	return imaging.Annotate(b, a.Marks, opts)
}
