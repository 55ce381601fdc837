// ABOUTME: YAML configuration parsing and validation
// ABOUTME: Defines stream, metadata, audio, and UI settings with station defaults
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Stream   StreamConfig   `yaml:"stream"`
	Metadata MetadataConfig `yaml:"metadata"`
	Audio    AudioConfig    `yaml:"audio"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type StreamConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Path             string `yaml:"path"`
	SuccessStatus    string `yaml:"success_status"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
}

type MetadataConfig struct {
	URL        string `yaml:"url"`
	ArtBaseURL string `yaml:"art_base_url"`
	PollMs     int    `yaml:"poll_ms"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

type AudioConfig struct {
	Attenuation float64 `yaml:"attenuation"`
	SampleRate  int     `yaml:"sample_rate"`
	Channels    int     `yaml:"channels"`
	Volume      int     `yaml:"volume"`
}

type UIConfig struct {
	TickMs int `yaml:"tick_ms"`
}

type LoggingConfig struct {
	File string `yaml:"file"`
}

// Default returns the Radio Hyrule settings
func Default() *Config {
	return &Config{
		Stream: StreamConfig{
			Host:             "radiohyrule.com",
			Port:             8000,
			Path:             "/listen",
			SuccessStatus:    "HTTP/1.0 200 OK",
			ConnectTimeoutMs: 10000,
		},
		Metadata: MetadataConfig{
			URL:        "https://radiohyrule.com/nowplaying.json",
			ArtBaseURL: "https://radiohyrule.com/albumart/cover320/",
			PollMs:     3000,
			TimeoutMs:  10000,
		},
		Audio: AudioConfig{
			Attenuation: 0.07,
			SampleRate:  44100,
			Channels:    2,
			Volume:      100,
		},
		UI: UIConfig{
			TickMs: 100,
		},
		Logging: LoggingConfig{
			File: "radiohyrule.log",
		},
	}
}

// Load reads path and overlays it onto the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Stream.Host == "" {
		return fmt.Errorf("stream.host is required")
	}
	if c.Stream.Port <= 0 || c.Stream.Port > 65535 {
		return fmt.Errorf("stream.port out of range: %d", c.Stream.Port)
	}
	if c.Stream.Path == "" || c.Stream.Path[0] != '/' {
		return fmt.Errorf("stream.path must start with '/': %q", c.Stream.Path)
	}

	if _, err := url.ParseRequestURI(c.Metadata.URL); err != nil {
		return fmt.Errorf("metadata.url: %w", err)
	}
	if c.Metadata.ArtBaseURL != "" {
		if _, err := url.ParseRequestURI(c.Metadata.ArtBaseURL); err != nil {
			return fmt.Errorf("metadata.art_base_url: %w", err)
		}
	}
	if c.Metadata.PollMs <= 0 {
		return fmt.Errorf("metadata.poll_ms must be positive")
	}

	if c.Audio.Attenuation <= 0 || c.Audio.Attenuation > 1 {
		return fmt.Errorf("audio.attenuation must be in (0, 1]: %v", c.Audio.Attenuation)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive")
	}
	// The decoder always produces interleaved stereo
	if c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels must be 2: %d", c.Audio.Channels)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("audio.volume must be 0-100: %d", c.Audio.Volume)
	}

	return nil
}

// StreamAddr returns host:port for dialing
func (c *Config) StreamAddr() string {
	return net.JoinHostPort(c.Stream.Host, strconv.Itoa(c.Stream.Port))
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Stream.ConnectTimeoutMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Metadata.PollMs) * time.Millisecond
}

func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.Metadata.TimeoutMs) * time.Millisecond
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.UI.TickMs) * time.Millisecond
}
