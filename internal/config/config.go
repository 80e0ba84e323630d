// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/isyarat/internal/gesture"
)

// Config holds every operator-tunable setting.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// Sensitivity is the maximum template distance accepted as a match.
	Sensitivity float64
	// GestureCooldown is the default per-template cooldown.
	GestureCooldown time.Duration
	// FaceCooldown is shared by all facial expression responses.
	FaceCooldown time.Duration
	// SpeechCooldown throttles the response output regardless of source.
	SpeechCooldown time.Duration

	// CameraID selects a local capture device; negative disables local capture.
	CameraID int
	// MotionThreshold is the percentage of changed pixels that wakes the pipeline.
	MotionThreshold float64

	DataDir      string
	PluginDir    string
	WebDir       string
	SpeechPlugin string
	SpeechLang   string
	// Journal is the SQLite DSN of the event journal.
	Journal string

	Debug   bool
	LogFile string
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := ".isyarat"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".isyarat")
	}

	return Config{
		Addr:            ":8080",
		Sensitivity:     gesture.DefaultSensitivity,
		GestureCooldown: gesture.DefaultTemplateCooldown,
		FaceCooldown:    gesture.DefaultFaceCooldown,
		SpeechCooldown:  gesture.DefaultSpeechCooldown,
		CameraID:        -1,
		MotionThreshold: 1.0,
		DataDir:         dataDir,
		PluginDir:       filepath.Join(dataDir, "plugins"),
		SpeechPlugin:    "speech",
		SpeechLang:      "en-US",
		Journal:         "file::memory:?cache=shared",
	}
}

// FromEnv loads a .env file from the working directory, if present, then
// reads ISYARAT_* variables over the defaults. Unparseable values keep the
// default and are logged.
func FromEnv() Config {
	loadDotEnv(".env")

	c := Default()
	c.Addr = getEnv("ISYARAT_ADDR", c.Addr)
	c.Sensitivity = getFloat("ISYARAT_SENSITIVITY", c.Sensitivity)
	c.GestureCooldown = getMillis("ISYARAT_GESTURE_COOLDOWN_MS", c.GestureCooldown)
	c.FaceCooldown = getMillis("ISYARAT_FACE_COOLDOWN_MS", c.FaceCooldown)
	c.SpeechCooldown = getMillis("ISYARAT_SPEECH_COOLDOWN_MS", c.SpeechCooldown)
	c.CameraID = getInt("ISYARAT_CAMERA", c.CameraID)
	c.MotionThreshold = getFloat("ISYARAT_MOTION_THRESHOLD", c.MotionThreshold)

	if dir := getEnv("ISYARAT_DATA_DIR", ""); dir != "" {
		c.DataDir = dir
		c.PluginDir = filepath.Join(dir, "plugins")
	}
	c.PluginDir = getEnv("ISYARAT_PLUGIN_DIR", c.PluginDir)
	c.WebDir = getEnv("ISYARAT_WEB_DIR", c.WebDir)
	c.SpeechPlugin = getEnv("ISYARAT_SPEECH_PLUGIN", c.SpeechPlugin)
	c.SpeechLang = getEnv("ISYARAT_SPEECH_LANG", c.SpeechLang)
	c.Journal = getEnv("ISYARAT_JOURNAL", c.Journal)
	c.Debug = toBool(getEnv("ISYARAT_DEBUG", ""))
	c.LogFile = getEnv("ISYARAT_LOG_FILE", "")

	return c
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Sensitivity <= 0 {
		errs = append(errs, errors.New("sensitivity must be positive"))
	}
	if c.GestureCooldown < 0 || c.FaceCooldown < 0 || c.SpeechCooldown < 0 {
		errs = append(errs, errors.New("cooldowns must not be negative"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	return errors.Join(errs...)
}

// FindWebDir returns the configured web directory, or the first of "web",
// "../web" and <data>/web that exists.
func (c Config) FindWebDir() string {
	candidates := []string{"web", "../web", filepath.Join(c.DataDir, "web")}
	if c.WebDir != "" {
		candidates = []string{c.WebDir}
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func getFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, raw, err)
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, raw, err)
		return fallback
	}
	return v
}

func getMillis(key string, fallback time.Duration) time.Duration {
	ms := getInt(key, -1)
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func toBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// loadDotEnv sets variables from a KEY=VALUE file without overriding ones
// already present in the environment. Missing files are ignored.
func loadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		os.Setenv(key, strings.Trim(strings.TrimSpace(val), `"'`))
	}
}
