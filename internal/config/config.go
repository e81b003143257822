// Package config holds every tunable of a mudra run. Values come from
// defaults, then MUDRA_* environment variables, then command-line flags.
// Nothing is persisted.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
)

// Classifier kinds.
const (
	ClassifierTemplate = "template"
	ClassifierProcess  = "process"
)

// DefaultMinConfidence is the classifier confidence a frame must exceed.
const DefaultMinConfidence = 0.95

// CameraConfig selects the capture device.
type CameraConfig = capture.Config

// MotionConfig controls the optional motion gate in front of detection.
type MotionConfig struct {
	Enabled    bool
	Threshold  float64 // percent of changed pixels
	HoldFrames int
}

// ClassifierConfig selects and tunes the gesture classifier.
type ClassifierConfig struct {
	Kind        string // "template" or "process"
	Script      string // model service script for "process"
	Model       string // model file passed to the script
	Temperature float64
}

// LoopConfig is the frame loop's failure policy.
type LoopConfig struct {
	// SkipFailedFrames logs and skips recoverable acquisition failures
	// instead of stopping.
	SkipFailedFrames bool
	// MaxConsecutiveFailures turns a run of recoverable failures fatal.
	// Zero means unlimited.
	MaxConsecutiveFailures int
	// AcquireTimeout bounds one acquisition. Zero disables the bound.
	AcquireTimeout time.Duration
}

// StoreConfig locates the sqlite database.
type StoreConfig struct {
	Path   string
	Record bool // write sessions and the event log
}

// Config is the full run configuration.
type Config struct {
	LogLevel  string
	LogFormat string

	Camera     CameraConfig
	Motion     MotionConfig
	Detector   detector.Config
	Classifier ClassifierConfig
	Python     string

	MinConfidence float64
	Thresholds    gesture.Thresholds
	Loop          LoopConfig

	DryRun     bool
	ServerAddr string // empty disables the debug server
	MQTT       events.MQTTConfig
	Store      StoreConfig
	Tray       bool
}

// Default returns the defaults.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Camera:    capture.DefaultConfig(),
		Motion: MotionConfig{
			Enabled:    false,
			Threshold:  capture.DefaultMotionThreshold,
			HoldFrames: capture.DefaultHoldFrames,
		},
		Detector: detector.DefaultConfig(),
		Classifier: ClassifierConfig{
			Kind: ClassifierTemplate,
		},
		MinConfidence: DefaultMinConfidence,
		Thresholds:    gesture.DefaultThresholds(),
		Loop: LoopConfig{
			SkipFailedFrames:       true,
			MaxConsecutiveFailures: 30,
		},
		ServerAddr: "127.0.0.1:8420",
		MQTT:       events.DefaultMQTTConfig(),
		Store: StoreConfig{
			Path:   DefaultStorePath(),
			Record: true,
		},
	}
}

// DefaultStorePath returns ~/.mudra/mudra.db, or mudra.db in the working
// directory when the home directory is unknown.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mudra.db"
	}
	return filepath.Join(home, ".mudra", "mudra.db")
}

// ApplyEnv overrides fields from MUDRA_* environment variables. Unset
// variables leave fields alone; malformed ones are reported together.
func (c *Config) ApplyEnv() error {
	e := envReader{}

	e.str("MUDRA_LOG_LEVEL", &c.LogLevel)
	e.str("MUDRA_LOG_FORMAT", &c.LogFormat)

	e.int("MUDRA_CAMERA", &c.Camera.DeviceID)
	e.int("MUDRA_CAMERA_WIDTH", &c.Camera.Width)
	e.int("MUDRA_CAMERA_HEIGHT", &c.Camera.Height)
	e.int("MUDRA_CAMERA_FPS", &c.Camera.FPS)
	e.bool("MUDRA_CAMERA_MIRROR", &c.Camera.Mirror)

	e.bool("MUDRA_MOTION_GATE", &c.Motion.Enabled)
	e.float("MUDRA_MOTION_THRESHOLD", &c.Motion.Threshold)

	e.str("MUDRA_PYTHON", &c.Python)
	e.str("MUDRA_DETECTOR_SCRIPT", &c.Detector.ScriptPath)
	e.float("MUDRA_DETECTOR_MIN_CONFIDENCE", &c.Detector.MinConfidence)

	e.str("MUDRA_CLASSIFIER", &c.Classifier.Kind)
	e.str("MUDRA_CLASSIFIER_SCRIPT", &c.Classifier.Script)
	e.str("MUDRA_MODEL", &c.Classifier.Model)

	e.float("MUDRA_MIN_CONFIDENCE", &c.MinConfidence)
	e.float("MUDRA_PRESS_THRESHOLD", &c.Thresholds.Press)
	e.float("MUDRA_RELEASE_THRESHOLD", &c.Thresholds.Release)
	e.float("MUDRA_MOVEMENT_THRESHOLD", &c.Thresholds.Movement)
	e.float("MUDRA_DEAD_ZONE", &c.Thresholds.DeadZone)
	e.bool("MUDRA_DEAD_ZONE_BOTH_AXES", &c.Thresholds.RequireBothAxes)
	e.bool("MUDRA_ANCHOR_ON_PRESS", &c.Thresholds.AnchorOnPress)

	e.bool("MUDRA_SKIP_FAILED_FRAMES", &c.Loop.SkipFailedFrames)
	e.int("MUDRA_MAX_CONSECUTIVE_FAILURES", &c.Loop.MaxConsecutiveFailures)
	e.duration("MUDRA_ACQUIRE_TIMEOUT", &c.Loop.AcquireTimeout)

	e.bool("MUDRA_DRY_RUN", &c.DryRun)
	e.str("MUDRA_SERVER_ADDR", &c.ServerAddr)
	e.str("MUDRA_MQTT_BROKER", &c.MQTT.Broker)
	e.str("MUDRA_MQTT_TOPIC", &c.MQTT.TopicPrefix)
	e.str("MUDRA_STORE", &c.Store.Path)
	e.bool("MUDRA_RECORD", &c.Store.Record)
	e.bool("MUDRA_TRAY", &c.Tray)

	return errors.Join(e.errs...)
}

// Validate reports every inconsistent field.
func (c Config) Validate() error {
	var errs []error

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min confidence must be within [0, 1], got %v", c.MinConfidence))
	}
	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Classifier.Kind {
	case ClassifierTemplate, ClassifierProcess:
	default:
		errs = append(errs, fmt.Errorf("unknown classifier %q (want %q or %q)", c.Classifier.Kind, ClassifierTemplate, ClassifierProcess))
	}
	if c.Camera.DeviceID < 0 {
		errs = append(errs, fmt.Errorf("camera device must not be negative, got %d", c.Camera.DeviceID))
	}
	if c.Detector.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("detector max hands must be at least 1, got %d", c.Detector.MaxHands))
	}
	if c.Loop.MaxConsecutiveFailures < 0 {
		errs = append(errs, fmt.Errorf("max consecutive failures must not be negative, got %d", c.Loop.MaxConsecutiveFailures))
	}
	if c.Loop.AcquireTimeout < 0 {
		errs = append(errs, fmt.Errorf("acquire timeout must not be negative, got %v", c.Loop.AcquireTimeout))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}
