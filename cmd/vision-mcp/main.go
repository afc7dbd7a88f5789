package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/lizhizhuanshu/simple-vision/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("vision-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("vision-mcp - MCP server for tolerance-based color, feature and template search")
			fmt.Println()
			fmt.Println("Usage: vision-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  VISION_MCP_LOG_LEVEL=debug        Enable debug logging")
			fmt.Println("  VISION_MCP_TEMPLATE_DIR=<dir>     Base directory for relative template names")
			fmt.Println("  VISION_MCP_INVERT_NOT=true        Make !-tagged colors match non-matching pixels")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("VISION_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Vision MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	opts := server.Options{
		TemplateDir: os.Getenv("VISION_MCP_TEMPLATE_DIR"),
		Debug:       debug,
		Version:     Version,
	}
	if v := os.Getenv("VISION_MCP_INVERT_NOT"); v != "" {
		invert, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("VISION_MCP_INVERT_NOT: %v", err)
		}
		opts.InvertNegated = invert
	}
	if opts.TemplateDir != "" {
		if st, err := os.Stat(opts.TemplateDir); err != nil || !st.IsDir() {
			log.Fatalf("VISION_MCP_TEMPLATE_DIR %q is not a directory", opts.TemplateDir)
		}
	}

	srv := server.New(opts)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
