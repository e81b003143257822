package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// Dry-run screen size, used when no display is consulted.
const (
	dryRunWidth  = 1920
	dryRunHeight = 1080
)

// Runtime is a fully wired App plus the services the command surfaces
// (debug server, tray) read from.
type Runtime struct {
	App     *App
	Hub     *events.Hub
	Store   *store.Store // nil when no store path is configured
	Preview *capture.Preview
	Session *store.Session // nil when recording is off
	// Templates is the live template set, nil for the process classifier.
	Templates *classifier.TemplateClassifier
}

// Build constructs every component from cfg. Background workers (event
// recorder, MQTT bridge) live until ctx ends or the App is closed.
// Component failures come back as *InitializationError.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (rt *Runtime, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	component := func(name string) *slog.Logger { return logger.With("component", name) }

	var cleanup []func()
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				cleanup[i]()
			}
		}
	}()

	rt = &Runtime{}

	if cfg.Store.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, &InitializationError{Component: "store", Err: err}
		}
		st, err := store.New(cfg.Store.Path)
		if err != nil {
			return nil, &InitializationError{Component: "store", Err: err}
		}
		rt.Store = st
		cleanup = append(cleanup, func() { st.Close() })
	}

	cls, err := buildClassifier(cfg, rt.Store, component("classifier"))
	if err != nil {
		return nil, &InitializationError{Component: "classifier", Err: err}
	}
	cleanup = append(cleanup, func() { cls.Close() })
	if tc, ok := cls.(*classifier.TemplateClassifier); ok {
		rt.Templates = tc
	}

	detCfg := cfg.Detector
	if detCfg.PythonPath == "" {
		detCfg.PythonPath = cfg.Python
	}
	det, err := detector.NewMediaPipeDetector(detCfg, component("detector"))
	if err != nil {
		return nil, &InitializationError{Component: "detector", Err: err}
	}
	cleanup = append(cleanup, func() { det.Close() })

	cam := capture.NewCamera(cfg.Camera)
	if err := cam.Open(); err != nil {
		return nil, &InitializationError{Component: "camera", Err: err}
	}
	cleanup = append(cleanup, func() { cam.Close() })

	var gate *capture.MotionGate
	if cfg.Motion.Enabled {
		gate = capture.NewMotionGate(cfg.Motion.Threshold, cfg.Motion.HoldFrames)
		cleanup = append(cleanup, gate.Close)
	}

	var act actuator.Actuator
	if cfg.DryRun {
		act = actuator.NewDryRun(component("actuator"), dryRunWidth, dryRunHeight)
	} else {
		robot, err := actuator.NewRobot()
		if err != nil {
			return nil, &InitializationError{Component: "actuator", Err: err}
		}
		act = robot
	}
	width, height := act.ScreenSize()

	rt.Hub = events.NewHub(events.DefaultBuffer, component("events"))
	rt.Preview = capture.NewPreview()

	source := NewCameraSource(cam, gate, det, cls, component("source"))
	source.SetPreview(rt.Preview)

	machine := gesture.NewMachine(cfg.Thresholds, gesture.Screen{Width: width, Height: height})
	dispatcher := dispatch.New(act, rt.Hub, component("dispatch"))

	rt.App = New(Options{
		MinConfidence:          cfg.MinConfidence,
		SkipFailedFrames:       cfg.Loop.SkipFailedFrames,
		MaxConsecutiveFailures: cfg.Loop.MaxConsecutiveFailures,
		AcquireTimeout:         cfg.Loop.AcquireTimeout,
	}, source, machine, dispatcher, rt.Hub, component("loop"))

	// From here on the App owns every resource.
	cleanup = nil

	if rt.Store != nil {
		st := rt.Store
		rt.App.OnClose(st.Close)
	}
	rt.App.OnClose(func() error { rt.Hub.Close(); return nil })

	if rt.Store != nil && cfg.Store.Record {
		if err := startRecording(ctx, rt, cfg, component("recorder")); err != nil {
			rt.App.Close()
			return nil, &InitializationError{Component: "store", Err: err}
		}
	}

	if cfg.MQTT.Broker != "" {
		startMQTT(ctx, rt, cfg.MQTT, component("mqtt"))
	}

	logger.Info("runtime ready",
		"classifier", cfg.Classifier.Kind,
		"dry_run", cfg.DryRun,
		"screen", fmt.Sprintf("%dx%d", width, height),
		"motion_gate", cfg.Motion.Enabled)

	return rt, nil
}

func buildClassifier(cfg config.Config, st *store.Store, logger *slog.Logger) (classifier.Classifier, error) {
	switch cfg.Classifier.Kind {
	case config.ClassifierProcess:
		return classifier.NewProcessClassifier(cfg.Classifier.Script, cfg.Classifier.Model, cfg.Python, logger)

	case config.ClassifierTemplate:
		tc := classifier.NewTemplateClassifier(cfg.Classifier.Temperature)
		templates := classifier.DefaultTemplates()
		if st != nil {
			loaded, err := LoadTemplates(st)
			if err != nil {
				return nil, err
			}
			templates = loaded
		}
		for _, t := range templates {
			tc.AddTemplate(t)
		}
		logger.Info("templates loaded", "count", tc.Len())
		return tc, nil

	default:
		return nil, fmt.Errorf("unknown classifier %q", cfg.Classifier.Kind)
	}
}

func startRecording(ctx context.Context, rt *Runtime, cfg config.Config, logger *slog.Logger) error {
	sess := &store.Session{Classifier: cfg.Classifier.Kind, DryRun: cfg.DryRun}
	if err := rt.Store.Sessions().Start(sess); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	rt.Session = sess
	logger.Info("recording session", "session", sess.ID)

	rec := NewSessionRecorder(rt.Store, sess.ID, logger)
	ch, cancel := rt.Hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		rec.Run(ctx, ch)
	}()

	rt.App.OnClose(func() error {
		cancel()
		<-done
		stats := rt.App.Stats()
		if err := rt.Store.Sessions().Finish(sess.ID, stats.Frames, stats.Intents, stats.Failures); err != nil {
			return fmt.Errorf("finish session: %w", err)
		}
		logger.Info("session closed", "session", sess.ID, "events", rec.Written())
		return nil
	})
	return nil
}

func startMQTT(ctx context.Context, rt *Runtime, cfg events.MQTTConfig, logger *slog.Logger) {
	bridge, err := events.DialMQTT(cfg, logger)
	if err != nil {
		logger.Warn("mqtt disabled", "error", err)
		return
	}
	logger.Info("publishing to mqtt", "broker", cfg.Broker, "prefix", cfg.TopicPrefix)

	ch, cancel := rt.Hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		bridge.Run(ctx, ch)
	}()

	rt.App.OnClose(func() error {
		cancel()
		<-done
		bridge.Close()
		return nil
	})
}

// NewSessionRecorder returns an event recorder writing into st's event log.
func NewSessionRecorder(st *store.Store, sessionID string, logger *slog.Logger) *events.Recorder {
	return events.NewRecorder(st.Events(), sessionID, logger)
}
