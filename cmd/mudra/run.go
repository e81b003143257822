package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	mlog "github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

func newRunCmd(cfg *config.Config) *cobra.Command {
	var staticDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the camera and translate gestures into pointer input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runEngine(cmd.Context(), *cfg, staticDir)
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Camera.DeviceID, "camera", cfg.Camera.DeviceID, "camera device index")
	f.IntVar(&cfg.Camera.Width, "width", cfg.Camera.Width, "capture width")
	f.IntVar(&cfg.Camera.Height, "height", cfg.Camera.Height, "capture height")
	f.IntVar(&cfg.Camera.FPS, "fps", cfg.Camera.FPS, "capture frame rate")
	f.BoolVar(&cfg.Camera.Mirror, "mirror", cfg.Camera.Mirror, "mirror frames horizontally")
	f.BoolVar(&cfg.Motion.Enabled, "motion-gate", cfg.Motion.Enabled, "skip detection on still frames")
	f.Float64Var(&cfg.Motion.Threshold, "motion-threshold", cfg.Motion.Threshold, "percent of changed pixels that counts as motion")

	f.StringVar(&cfg.Python, "python", cfg.Python, "python interpreter for the detector and classifier services")
	f.StringVar(&cfg.Detector.ScriptPath, "detector-script", cfg.Detector.ScriptPath, "MediaPipe hand landmark service script")
	f.Float64Var(&cfg.Detector.MinConfidence, "detector-min-confidence", cfg.Detector.MinConfidence, "minimum hand detection confidence")
	f.StringVar(&cfg.Classifier.Kind, "classifier", cfg.Classifier.Kind, "classifier: template or process")
	f.StringVar(&cfg.Classifier.Script, "classifier-script", cfg.Classifier.Script, "model service script for the process classifier")
	f.StringVar(&cfg.Classifier.Model, "model", cfg.Classifier.Model, "model file for the process classifier")

	f.Float64Var(&cfg.MinConfidence, "min-confidence", cfg.MinConfidence, "classifier confidence a frame must exceed")
	f.Float64Var(&cfg.Thresholds.Press, "press", cfg.Thresholds.Press, "pinch distance below which the drag engages")
	f.Float64Var(&cfg.Thresholds.Release, "release", cfg.Thresholds.Release, "pinch distance above which the drag releases")
	f.Float64Var(&cfg.Thresholds.Movement, "movement", cfg.Thresholds.Movement, "pinch distance below which drags are tracked")
	f.Float64Var(&cfg.Thresholds.DeadZone, "dead-zone", cfg.Thresholds.DeadZone, "fingertip travel in pixels ignored as tremor")
	f.BoolVar(&cfg.Thresholds.RequireBothAxes, "dead-zone-both-axes", cfg.Thresholds.RequireBothAxes, "move only when both axes leave the dead zone")
	f.BoolVar(&cfg.Thresholds.AnchorOnPress, "anchor-on-press", cfg.Thresholds.AnchorOnPress, "center the pointer when a drag starts")

	f.BoolVar(&cfg.Loop.SkipFailedFrames, "skip-failed-frames", cfg.Loop.SkipFailedFrames, "skip frames that fail to acquire instead of stopping")
	f.IntVar(&cfg.Loop.MaxConsecutiveFailures, "max-failures", cfg.Loop.MaxConsecutiveFailures, "consecutive acquisition failures that stop the loop (0 = unlimited)")
	f.DurationVar(&cfg.Loop.AcquireTimeout, "acquire-timeout", cfg.Loop.AcquireTimeout, "bound on one frame acquisition (0 = none)")

	f.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "log intents instead of moving the pointer")
	f.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "debug server address (empty disables it)")
	f.StringVar(&staticDir, "web", "", "directory of static files served by the debug server")
	f.StringVar(&cfg.MQTT.Broker, "mqtt-broker", cfg.MQTT.Broker, "MQTT broker for event telemetry, e.g. tcp://localhost:1883")
	f.StringVar(&cfg.MQTT.TopicPrefix, "mqtt-topic", cfg.MQTT.TopicPrefix, "MQTT topic prefix")
	f.BoolVar(&cfg.Store.Record, "record", cfg.Store.Record, "record sessions and dispatched intents to the store")
	f.BoolVar(&cfg.Tray, "tray", cfg.Tray, "show the system tray menu")

	return cmd
}

// runEngine builds the runtime and drives it until ctx ends, the loop
// fails or the user quits from the tray or the debug server.
func runEngine(parent context.Context, cfg config.Config, staticDir string) error {
	logger := mlog.L()
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.App.Close(); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	// Runs before wg.Wait so background surfaces see the cancellation.
	defer cancel()

	if cfg.ServerAddr != "" {
		srvCfg := server.Config{
			StaticDir: staticDir,
			App:       rt.App,
			Hub:       rt.Hub,
			Preview:   rt.Preview,
			Store:     rt.Store,
			Stop:      cancel,
			Logger:    mlog.Component("server"),
		}
		if rt.Templates != nil {
			srvCfg.Templates = rt.Templates
		}
		srv := server.New(srvCfg)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx, cfg.ServerAddr); err != nil {
				logger.Error("debug server stopped", "error", err)
			}
		}()
	}

	if !cfg.Tray {
		return rt.App.Run(ctx)
	}

	t := tray.New()
	t.OnToggle(rt.App.Dispatcher().SetEnabled)
	t.OnQuit(cancel)
	if cfg.ServerAddr != "" {
		url := "http://" + browsable(cfg.ServerAddr)
		trayLog := mlog.Component("tray")
		t.OnOpen(func() {
			if err := openBrowser(url); err != nil {
				trayLog.Warn("open browser", "url", url, "error", err)
			}
		})
	}

	ch, unsubscribe := rt.Hub.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.Follow(ctx, ch)
	}()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		errCh <- rt.App.Run(ctx)
		t.Quit()
	}()

	// systray needs the main goroutine.
	t.Run()
	cancel()
	return <-errCh
}

// browsable turns a listen address into one a browser can open.
func browsable(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return strings.Replace(addr, "0.0.0.0", "127.0.0.1", 1)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
