package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.MinConfidence != 0.95 {
		t.Errorf("MinConfidence = %v, want 0.95", cfg.MinConfidence)
	}
	if cfg.Thresholds.Press != 8 || cfg.Thresholds.Release != 12 || cfg.Thresholds.Movement != 15 {
		t.Errorf("unexpected thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 || cfg.Camera.FPS != 30 || !cfg.Camera.Mirror {
		t.Errorf("unexpected camera defaults: %+v", cfg.Camera)
	}
	if cfg.Detector.MaxHands != 1 || cfg.Detector.MinConfidence != 0.7 {
		t.Errorf("unexpected detector defaults: %+v", cfg.Detector)
	}
	if !cfg.Loop.SkipFailedFrames {
		t.Error("expected failed frames to be skipped by default")
	}
	if cfg.Classifier.Kind != ClassifierTemplate {
		t.Errorf("Classifier.Kind = %q, want template", cfg.Classifier.Kind)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Run("overrides fields", func(t *testing.T) {
		t.Setenv("MUDRA_MIN_CONFIDENCE", "0.9")
		t.Setenv("MUDRA_PRESS_THRESHOLD", "6.5")
		t.Setenv("MUDRA_CAMERA", "2")
		t.Setenv("MUDRA_DRY_RUN", "true")
		t.Setenv("MUDRA_ACQUIRE_TIMEOUT", "250ms")
		t.Setenv("MUDRA_CLASSIFIER", " process ")
		t.Setenv("MUDRA_MQTT_BROKER", "tcp://broker:1883")

		cfg := Default()
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if cfg.MinConfidence != 0.9 {
			t.Errorf("MinConfidence = %v, want 0.9", cfg.MinConfidence)
		}
		if cfg.Thresholds.Press != 6.5 {
			t.Errorf("Press = %v, want 6.5", cfg.Thresholds.Press)
		}
		if cfg.Camera.DeviceID != 2 {
			t.Errorf("Camera.DeviceID = %d, want 2", cfg.Camera.DeviceID)
		}
		if !cfg.DryRun {
			t.Error("expected DryRun from env")
		}
		if cfg.Loop.AcquireTimeout != 250*time.Millisecond {
			t.Errorf("AcquireTimeout = %v, want 250ms", cfg.Loop.AcquireTimeout)
		}
		if cfg.Classifier.Kind != ClassifierProcess {
			t.Errorf("Classifier.Kind = %q, want process", cfg.Classifier.Kind)
		}
		if cfg.MQTT.Broker != "tcp://broker:1883" {
			t.Errorf("MQTT.Broker = %q", cfg.MQTT.Broker)
		}
	})

	t.Run("unset variables keep defaults", func(t *testing.T) {
		cfg := Default()
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.Thresholds.Release != 12 {
			t.Errorf("Release = %v, want 12", cfg.Thresholds.Release)
		}
	})

	t.Run("reports every malformed value", func(t *testing.T) {
		t.Setenv("MUDRA_CAMERA", "front")
		t.Setenv("MUDRA_DRY_RUN", "maybe")

		cfg := Default()
		err := cfg.ApplyEnv()
		if err == nil {
			t.Fatal("expected error for malformed values")
		}
		for _, key := range []string{"MUDRA_CAMERA", "MUDRA_DRY_RUN"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error should mention %s: %v", key, err)
			}
		}
		if cfg.Camera.DeviceID != 0 {
			t.Errorf("malformed value should not change the field, got %d", cfg.Camera.DeviceID)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"confidence above one", func(c *Config) { c.MinConfidence = 1.2 }, "min confidence"},
		{"confidence negative", func(c *Config) { c.MinConfidence = -0.1 }, "min confidence"},
		{"press not below release", func(c *Config) { c.Thresholds.Press = 12 }, "release threshold"},
		{"unknown classifier", func(c *Config) { c.Classifier.Kind = "svm" }, "unknown classifier"},
		{"negative device", func(c *Config) { c.Camera.DeviceID = -1 }, "camera device"},
		{"no hands", func(c *Config) { c.Detector.MaxHands = 0 }, "max hands"},
		{"negative timeout", func(c *Config) { c.Loop.AcquireTimeout = -time.Second }, "acquire timeout"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}
