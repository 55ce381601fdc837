// ABOUTME: Entry point for the Radio Hyrule player
// ABOUTME: Parses CLI flags, loads configuration, and runs the player with or without the TUI
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/radiohyrule-go/internal/app"
	"github.com/harperreed/radiohyrule-go/internal/config"
	"github.com/harperreed/radiohyrule-go/internal/ui"
	"github.com/harperreed/radiohyrule-go/internal/version"
)

var (
	configPath  = flag.String("config", "", "YAML config file (defaults to built-in Radio Hyrule settings)")
	host        = flag.String("host", "", "Stream host")
	port        = flag.Int("port", 0, "Stream port")
	metadataURL = flag.String("metadata-url", "", "Now-playing JSON URL")
	volume      = flag.Int("volume", -1, "Initial volume (0-100)")
	logFile     = flag.String("log-file", "", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs  = flag.Bool("stream-logs", false, "Alias for -no-tui")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		os.Stdout.WriteString(version.UserAgent() + "\n")
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Determine if we should use TUI or streaming logs
	useTUI := !(*noTUI || *streamLogs)

	// Set up logging
	f, err := os.OpenFile(cfg.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
		log.Printf("TUI disabled - streaming logs")
	}

	player := app.New(cfg, app.Options{})
	if err := player.Start(); err != nil {
		log.Fatalf("Failed to start player: %v", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	tuiDone := make(chan struct{})
	if useTUI {
		prog := ui.Run(player.Consumer(), cfg.TickInterval())
		go func() {
			defer close(tuiDone)
			if _, err := prog.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		defer func() {
			prog.Quit()
			<-tuiDone
		}()
	}

	// Wait for quit from the TUI, the OS, or the metadata source going away
	select {
	case <-tuiDone:
		log.Printf("Received quit from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
	case <-player.Done():
		log.Printf("Player finished")
	}

	player.Stop()
	log.Printf("Player stopped")
}

// loadConfig layers explicitly set flags over the config file or defaults
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Stream.Host = *host
		case "port":
			cfg.Stream.Port = *port
		case "metadata-url":
			cfg.Metadata.URL = *metadataURL
		case "volume":
			cfg.Audio.Volume = *volume
		case "log-file":
			cfg.Logging.File = *logFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
