// Package server implements the MCP (Model Context Protocol) server that
// exposes the vision search engine as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Handling:
//   - image_load, image_dimensions: metadata and size
//   - image_sample_color, image_sample_colors_multi: pixel colors
//   - image_clone: copy (and scale) a region into a named in-memory image
//   - image_save: write an image as PNG
//
// Color Search:
//   - vision_get_color, vision_get_color_count
//   - vision_is_color, vision_which_color, vision_find_color
//
// Feature Search:
//   - vision_is_feature, vision_find_feature
//
// Template Search:
//   - vision_is_image, vision_which_image, vision_find_image
//
// Helpers:
//   - vision_find_orders: scan order names
//   - vision_normalize_color, vision_normalize_feature: validate and
//     canonicalize text arguments
//   - vision_annotate: draw search hits over an image
//
// # Arguments
//
// Colors are accepted as integers (0xRRGGBB) or color text, templates as an
// array of names or a single '|'-separated string. Region far corners
// (x1, y1) default to -1, the image edge; similarity defaults to 1 (exact)
// and order to 0 (UP_DOWN_LEFT_RIGHT).
//
// # Image Caching
//
// Loaded images and clones share one in-memory cache for the lifetime of the
// server process. Template names that are not cached resolve against
// Options.TemplateDir.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.Options{TemplateDir: "/srv/templates"})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
