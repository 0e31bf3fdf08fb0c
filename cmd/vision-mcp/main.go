package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ironsheep/vision-bridge-mcp/internal/config"
	"github.com/ironsheep/vision-bridge-mcp/internal/server"
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
			fmt.Printf("vision-bridge-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("vision-bridge-mcp - MCP server bridging tool calls to a local vision model")
			fmt.Println()
			fmt.Println("Usage: vision-bridge-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  WORKSPACE_ROOT   Directory images are served from (default: current directory)")
			fmt.Printf("  OLLAMA_HOST      Ollama base URL (default: %s)\n", config.DefaultHost)
			fmt.Printf("  OLLAMA_MODEL     Vision model name (default: %s)\n", config.DefaultModel)
			fmt.Printf("  VISION_MAX_EDGE  Longest image side sent to the model (default: %d)\n", config.DefaultMaxEdge)
			fmt.Printf("  VISION_TIMEOUT_S Model call timeout in seconds (default: %d)\n", int(config.DefaultTimeout.Seconds()))
			fmt.Println()
			fmt.Println("A .env file in the working directory is read before the environment.")
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Values already present in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	log.Printf("vision-bridge-mcp %s: workspace %s, model %s at %s", Version, cfg.WorkspaceRoot, cfg.Model, cfg.Host)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
