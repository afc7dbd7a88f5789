package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Shared property schemas.

func pathProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Image file path, or the name of a clone created with image_clone",
	}
}

func coordProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": desc,
	}
}

func farCornerProp(axis string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Exclusive " + axis + " bound of the search region; -1 means the image edge. Default -1",
		"default":     -1,
	}
}

func colorProp() map[string]interface{} {
	return map[string]interface{}{
		"type": []string{"string", "integer"},
		"description": "Color to match. Either an integer 0xRRGGBB, or color text: RRGGBB (exact), " +
			"RRGGBB-SSSSSS (each channel within SS), !RRGGBB or !RRGGBB-SSSSSS (not-tagged). " +
			"Join alternatives with '|', e.g. \"ff0000|00ff00-101010\"",
	}
}

func similarityProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Match strictness from 0 (anything) to 1 (exact). Default 1.0",
		"default":     1.0,
		"minimum":     0,
		"maximum":     1,
	}
}

func orderProp() map[string]interface{} {
	return map[string]interface{}{
		"type": "integer",
		"description": "Scan order 0-7 (see vision_find_orders): 0 UP_DOWN_LEFT_RIGHT, 1 UP_DOWN_RIGHT_LEFT, " +
			"2 DOWN_UP_LEFT_RIGHT, 3 DOWN_UP_RIGHT_LEFT, 4 LEFT_RIGHT_UP_DOWN, 5 LEFT_RIGHT_DOWN_UP, " +
			"6 RIGHT_LEFT_UP_DOWN, 7 RIGHT_LEFT_DOWN_UP. Default 0",
		"default": 0,
		"minimum": 0,
		"maximum": 7,
	}
}

func featureProp() map[string]interface{} {
	return map[string]interface{}{
		"type": "string",
		"description": "Feature text: comma-separated dx|dy|color entries relative to the anchor, " +
			"e.g. \"0|0|ff0000,4|-1|00ff00|0000ff\"",
	}
}

func templatesProp() map[string]interface{} {
	return map[string]interface{}{
		"type": []string{"string", "array"},
		"items": map[string]interface{}{
			"type": "string",
		},
		"description": "Template images: an array of names, or one string of names separated by '|'. " +
			"Relative names resolve against the template directory",
	}
}

// pointSchema is the schema of a tool addressing a single pixel.
func pointSchema(extra map[string]interface{}, required ...string) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProp(),
		"x":    coordProp("X coordinate (0-based, from left)"),
		"y":    coordProp("Y coordinate (0-based, from top)"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"path", "x", "y"}, required...),
	}
}

// regionSchema is the schema of a tool working on a rectangle.
func regionSchema(extra map[string]interface{}, required ...string) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProp(),
		"x":    coordProp("Left edge of the region (inclusive). Default 0"),
		"y":    coordProp("Top edge of the region (inclusive). Default 0"),
		"x1":   farCornerProp("right"),
		"y1":   farCornerProp("bottom"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"path"}, required...),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Handling
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and memory layout. The image stays cached for subsequent searches.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a pixel as color text, integer, hex, RGB and HSL. Use the text form to build color arguments for searches.",
			InputSchema: pointSchema(nil),
		},
		{
			Name:        "image_sample_colors_multi",
			Description: "Sample colors at multiple points in one call.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Points to sample, each with optional label",
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "image_clone",
			Description: "Copy a region of an image into a new in-memory image, optionally scaled. The copy is registered under a name usable as path or template in other tools.",
			InputSchema: regionSchema(map[string]interface{}{
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
					"default":     1.0,
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name to register the copy under. Default clone:N",
				},
				"preview": map[string]interface{}{
					"type":        "boolean",
					"description": "Also return the copy as base64 PNG. Default false",
					"default":     false,
				},
			}),
		},
		{
			Name:        "image_save",
			Description: "Save an image (typically a clone) as a PNG file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Destination file path",
					},
				},
				"required": []string{"path", "output"},
			},
		},

		// Color Search
		{
			Name:        "vision_get_color",
			Description: "Get the color at a pixel as RRGGBB text and as an integer.",
			InputSchema: pointSchema(nil),
		},
		{
			Name:        "vision_get_color_count",
			Description: "Count the pixels in a region that match a color.",
			InputSchema: regionSchema(map[string]interface{}{
				"color":      colorProp(),
				"similarity": similarityProp(),
			}, "color"),
		},
		{
			Name:        "vision_is_color",
			Description: "Check whether the pixel at (x, y) matches a color.",
			InputSchema: pointSchema(map[string]interface{}{
				"color":      colorProp(),
				"similarity": similarityProp(),
			}, "color"),
		},
		{
			Name:        "vision_which_color",
			Description: "Return the 1-based position of the first color alternative the pixel at (x, y) matches, or 0 if none matches.",
			InputSchema: pointSchema(map[string]interface{}{
				"color":      colorProp(),
				"similarity": similarityProp(),
			}, "color"),
		},
		{
			Name:        "vision_find_color",
			Description: "Find the first pixel in a region, in the given scan order, that matches a color. Returns found=false and (-1,-1) when there is none.",
			InputSchema: regionSchema(map[string]interface{}{
				"color":      colorProp(),
				"similarity": similarityProp(),
				"order":      orderProp(),
			}, "color"),
		},

		// Feature Search
		{
			Name:        "vision_is_feature",
			Description: "Check whether a feature (colored points at offsets from an anchor) matches with its anchor at (x, y), or at (0, 0) when no anchor is given. Points outside the image count as maximally different.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       pathProp(),
					"x":          coordProp("Anchor X coordinate. Give together with y; default 0"),
					"y":          coordProp("Anchor Y coordinate. Give together with x; default 0"),
					"feature":    featureProp(),
					"similarity": similarityProp(),
				},
				"required": []string{"path", "feature"},
			},
		},
		{
			Name:        "vision_find_feature",
			Description: "Find the first anchor in a region, in the given scan order, where a feature matches.",
			InputSchema: regionSchema(map[string]interface{}{
				"feature":    featureProp(),
				"similarity": similarityProp(),
				"order":      orderProp(),
			}, "feature"),
		},

		// Template Search
		{
			Name:        "vision_is_image",
			Description: "Check whether any template image matches with its top-left corner at (x, y).",
			InputSchema: pointSchema(map[string]interface{}{
				"templates":  templatesProp(),
				"similarity": similarityProp(),
			}, "templates"),
		},
		{
			Name:        "vision_which_image",
			Description: "Return the 1-based position of the first template that matches with its top-left corner at (x, y), or 0 if none matches.",
			InputSchema: pointSchema(map[string]interface{}{
				"templates":  templatesProp(),
				"similarity": similarityProp(),
			}, "templates"),
		},
		{
			Name:        "vision_find_image",
			Description: "Find the first top-left corner in a region, in the given scan order, where any template matches. Also returns the 1-based index of the matching template.",
			InputSchema: regionSchema(map[string]interface{}{
				"templates":  templatesProp(),
				"similarity": similarityProp(),
				"order":      orderProp(),
			}, "templates"),
		},

		// Helpers
		{
			Name:        "vision_find_orders",
			Description: "List the scan orders accepted by the find tools, by name.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "vision_normalize_color",
			Description: "Validate color text (or an integer color) and return its canonical lowercase form with each alternative broken out.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": colorProp(),
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "vision_normalize_feature",
			Description: "Validate feature text and return its canonical form and point count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"feature": featureProp(),
				},
				"required": []string{"feature"},
			},
		},
		{
			Name:        "vision_annotate",
			Description: "Draw boxes or crosshairs at given positions (for example search results) over an image and return it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
					"marks": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":      map[string]interface{}{"type": "integer"},
								"y":      map[string]interface{}{"type": "integer"},
								"width":  map[string]interface{}{"type": "integer"},
								"height": map[string]interface{}{"type": "integer"},
								"label":  map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Positions to mark. Width and height draw a box, otherwise a crosshair",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Mark color in hex format (e.g., '#FF0000'). Default red",
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a coordinate grid every N pixels. Default 0 (no grid)",
						"default":     0,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label unlabeled marks with their coordinates. Default true",
						"default":     true,
					},
				},
				"required": []string{"path", "marks"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
