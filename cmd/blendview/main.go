// Blend weight viewer - top-down visualization of distance blend weights.
//
// Usage: go run ./cmd/blendview
// Headless CSV runs: go run ./cmd/blendview -headless -max-ticks 1000 -output-dir out
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/worldblend/blend"
	"github.com/pthm-cable/worldblend/camera"
	"github.com/pthm-cable/worldblend/components"
	"github.com/pthm-cable/worldblend/config"
	"github.com/pthm-cable/worldblend/telemetry"
	"github.com/pthm-cable/worldblend/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited; required for headless)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	engine := blend.New(blend.Options{MinDistance: cfg.Blend.MinDistance})
	w := world.New(world.Config{
		Width:      cfg.World.Width,
		Height:     cfg.World.Height,
		Depth:      cfg.World.Depth,
		DriftSpeed: cfg.World.DriftSpeed,
		DriftScale: cfg.World.DriftScale,
		Seed:       rngSeed,
	}, engine)

	cam := camera.New(cfg.World.Width, cfg.World.Height, cfg.World.Depth)
	cam.EyeOffset = r3.Vec{Z: cfg.Camera.EyeHeight}
	engine.SetTarget(cam)

	// Scatter the initial emitters
	rng := rand.New(rand.NewSource(rngSeed))
	for i := 0; i < cfg.World.Emitters; i++ {
		w.SpawnEmitter(
			rng.Float64()*cfg.World.Width,
			rng.Float64()*cfg.World.Height,
			rng.Float64()*cfg.World.Depth,
			0.5+rng.Float64(),
		)
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
	}

	slog.Info("starting",
		"seed", rngSeed,
		"emitters", cfg.World.Emitters,
		"planar", cfg.Blend.Planar,
		"headless", *headless,
	)

	run := runConfig{
		cfg:      cfg,
		engine:   engine,
		world:    w,
		cam:      cam,
		output:   om,
		logStats: *logStats,
		maxTicks: *maxTicks,
		rng:      rng,
	}

	if *headless {
		if run.maxTicks <= 0 {
			slog.Error("headless mode requires -max-ticks")
			os.Exit(1)
		}
		runHeadless(run)
		return
	}
	runViewer(run)
}

type runConfig struct {
	cfg      *config.Config
	engine   *blend.Engine
	world    *world.World
	cam      *camera.Camera
	output   *telemetry.OutputManager
	logStats bool
	maxTicks int
	rng      *rand.Rand
}

// recordFrame pushes one computed frame into telemetry. Returns the frame
// stats for on-screen display.
func recordFrame(run runConfig, window *telemetry.Window, frame uint64, weights []blend.Weight, valid bool) telemetry.FrameStats {
	fs := telemetry.ComputeFrameStats(frame, weights)

	if valid {
		sample := run.cfg.Telemetry.SampleEvery
		if sample <= 0 || frame%uint64(sample) == 0 {
			rows := make([]telemetry.WeightRow, 0, len(weights))
			run.world.Each(func(_ ecs.Entity, _ components.Position, emt components.Emitter) {
				rows = append(rows, telemetry.WeightRow{
					Frame:        frame,
					SourceID:     emt.ID,
					Dist:         emt.Weight.Dist,
					DistanceBias: emt.Weight.DistanceBias,
					Scalar:       emt.Weight.Scalar,
					Weight:       emt.Weight.Blend,
				})
			})
			if err := run.output.WriteWeights(rows); err != nil {
				slog.Error("failed to write weight rows", "error", err)
			}
		}
	}

	if stats, ready := window.Add(fs); ready {
		if err := run.output.WriteStats(stats); err != nil {
			slog.Error("failed to write window stats", "error", err)
		}
		if run.logStats {
			slog.Info("stats", "window", stats)
		}
	}
	return fs
}

// weightedCentroid returns the blend-weighted center of the emitters, the
// point the camera drifts toward.
func weightedCentroid(weights []blend.Weight) r3.Vec {
	var c r3.Vec
	for _, bw := range weights {
		c = r3.Add(c, r3.Scale(bw.Blend, bw.Source.Position()))
	}
	return c
}

func runHeadless(run runConfig) {
	window := telemetry.NewWindow(run.cfg.Telemetry.StatsWindow)
	var frame uint64

	for tick := 0; tick < run.maxTicks; tick++ {
		run.world.Step()
		frame++

		weights, valid := run.engine.Weights(frame, run.cfg.Blend.Planar)
		recordFrame(run, window, frame, weights, valid)

		if valid {
			run.cam.Follow(weightedCentroid(weights), run.cfg.Camera.FollowRate)
		}
	}

	slog.Info("finished", "ticks", run.maxTicks, "emitters", run.world.EmitterCount())
}

func runViewer(run runConfig) {
	cfg := run.cfg
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "worldblend viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	scale := cfg.Derived.PixelsPerUnit
	window := telemetry.NewWindow(cfg.Telemetry.StatsWindow)

	planar := cfg.Blend.Planar
	followCentroid := false
	var frame uint64
	var lastStats telemetry.FrameStats
	var usingFallback bool

	for !rl.WindowShouldClose() {
		if run.maxTicks > 0 && int(run.world.Tick()) >= run.maxTicks {
			break
		}

		// Input: pan with arrow keys, spawn/remove with the mouse.
		panStep := 2.0
		if rl.IsKeyDown(rl.KeyLeft) {
			run.cam.Pan(-panStep, 0)
		}
		if rl.IsKeyDown(rl.KeyRight) {
			run.cam.Pan(panStep, 0)
		}
		if rl.IsKeyDown(rl.KeyUp) {
			run.cam.Pan(0, -panStep)
		}
		if rl.IsKeyDown(rl.KeyDown) {
			run.cam.Pan(0, panStep)
		}
		mouse := rl.GetMousePosition()
		if mouse.Y < float32(cfg.Screen.Height-60) { // keep the panel clickable
			if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
				run.world.SpawnEmitter(
					float64(mouse.X)/scale,
					float64(mouse.Y)/scale,
					run.rng.Float64()*cfg.World.Depth,
					0.5+run.rng.Float64(),
				)
			}
			if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
				removeNearest(run.world, float64(mouse.X)/scale, float64(mouse.Y)/scale)
			}
		}

		run.world.Step()
		frame++

		weights, valid := run.engine.Weights(frame, planar)
		lastStats = recordFrame(run, window, frame, weights, valid)

		// The fallback snapshot may reference removed emitters, so only
		// its weights are shown, never its source positions.
		usingFallback = false
		if !valid {
			_, usingFallback = run.engine.LastValid()
		}

		if followCentroid && valid {
			run.cam.Follow(weightedCentroid(weights), cfg.Camera.FollowRate)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		drawEmitters(run.world, scale)
		if valid {
			drawWeightRing(weights, run.cam, scale)
		}
		drawCamera(run.cam, scale)

		// HUD
		rl.DrawText(fmt.Sprintf("frame %d  emitters %d", frame, run.world.EmitterCount()), 10, 10, 18, rl.RayWhite)
		rl.DrawText(fmt.Sprintf("dominant %.2f  effective %.1f  entropy %.2f",
			lastStats.Dominant, lastStats.Effective, lastStats.Entropy), 10, 32, 18, rl.RayWhite)
		if usingFallback {
			rl.DrawText("live query invalid - showing last valid weights", 10, 54, 18, rl.Orange)
		}

		// Control panel
		panelY := float32(cfg.Screen.Height - 50)
		planar = gui.CheckBox(rl.Rectangle{X: 10, Y: panelY, Width: 20, Height: 20}, "Planar distance", planar)
		followCentroid = gui.CheckBox(rl.Rectangle{X: 170, Y: panelY, Width: 20, Height: 20}, "Follow centroid", followCentroid)
		if gui.Button(rl.Rectangle{X: 330, Y: panelY, Width: 110, Height: 22}, "Reset camera") {
			run.cam.Reset()
		}

		rl.EndDrawing()
	}

	slog.Info("finished", "ticks", run.world.Tick(), "emitters", run.world.EmitterCount())
}

// removeNearest unregisters the emitter closest to the given world point.
func removeNearest(w *world.World, x, y float64) {
	var nearest ecs.Entity
	found := false
	best := 0.0
	w.Each(func(e ecs.Entity, pos components.Position, _ components.Emitter) {
		dx := pos.X - x
		dy := pos.Y - y
		d := dx*dx + dy*dy
		if !found || d < best {
			nearest = e
			best = d
			found = true
		}
	})
	if found {
		w.RemoveEmitter(nearest)
	}
}

func drawEmitters(w *world.World, scale float64) {
	w.Each(func(_ ecs.Entity, pos components.Position, emt components.Emitter) {
		// Radius follows the written-back blend weight
		radius := 4 + emt.Weight.Blend*30
		cx := float32(pos.X * scale)
		cy := float32(pos.Y * scale)

		rl.DrawCircle(int32(cx), int32(cy), float32(radius), rl.SkyBlue)
		rl.DrawCircleLines(int32(cx), int32(cy), float32(radius), rl.RayWhite)
		rl.DrawText(fmt.Sprintf("%d: %.2f", emt.ID, emt.Weight.Blend),
			int32(cx)+8, int32(cy)-8, 14, rl.LightGray)
	})
}

// drawWeightRing draws lines from the camera to each source, thickness
// following the blend weight.
func drawWeightRing(weights []blend.Weight, cam *camera.Camera, scale float64) {
	color := rl.Green
	eye := cam.ViewPoint()
	for _, bw := range weights {
		pos := bw.Source.Position()
		rl.DrawLineEx(
			rl.Vector2{X: float32(eye.X * scale), Y: float32(eye.Y * scale)},
			rl.Vector2{X: float32(pos.X * scale), Y: float32(pos.Y * scale)},
			float32(1+bw.Blend*4),
			rl.Fade(color, 0.6),
		)
	}
}

func drawCamera(cam *camera.Camera, scale float64) {
	cx := int32(cam.Pos.X * scale)
	cy := int32(cam.Pos.Y * scale)
	rl.DrawLine(cx-8, cy, cx+8, cy, rl.Red)
	rl.DrawLine(cx, cy-8, cx, cy+8, rl.Red)
}
