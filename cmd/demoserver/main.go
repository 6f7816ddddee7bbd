// Command demoserver runs an in-memory stand-in for the gesture recognition
// backend, for local development of the control panel.
// Usage: go run ./cmd/demoserver [port]
// Default port: 5000
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/gesturepanel/internal/demoserver"
	"github.com/raysh454/gesturepanel/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   Gesture Backend - Demo Server")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Serves the gesture backend API from memory:")
	fmt.Println("  - /api/health, /api/config, /api/config/reset")
	fmt.Println("  - /api/gesture/recognize (never detects a hand)")
	fmt.Println("  - /api/gesture/action")
	fmt.Println("  - /api/upload/{video,ppt}, /api/files/{videos,presentations}")
	fmt.Println()

	server := demoserver.NewDemoServer(cfg, logging.NewStdoutLogger("demoserver"))
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
