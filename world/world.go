// Package world hosts the emitter entities that feed the blend engine.
// It owns source registration and lifecycle: spawning an emitter registers
// it with the engine, removing it unregisters it, so the engine's
// "registered sources stay valid" contract holds by construction.
package world

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/worldblend/blend"
	"github.com/pthm-cable/worldblend/components"
)

// Config holds the world dimensions and emitter drift parameters.
type Config struct {
	Width, Height, Depth float64

	// DriftSpeed is the emitter wander speed in world units per tick.
	DriftSpeed float64

	// DriftScale is how far one tick advances through the noise field.
	// Smaller values give smoother wandering.
	DriftScale float64

	Seed int64
}

// World is an ark ECS world of drifting emitters wired into a blend engine.
type World struct {
	cfg Config

	ecs    *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Emitter]
	filter ecs.Filter3[components.Position, components.Velocity, components.Emitter]
	posMap *ecs.Map1[components.Position]
	emtMap *ecs.Map1[components.Emitter]

	engine  *blend.Engine
	drift   *driftField
	sources map[ecs.Entity]*entitySource
	nextID  uint32
	tick    uint64
}

// New creates an empty world attached to the given engine.
func New(cfg Config, engine *blend.Engine) *World {
	w := ecs.NewWorld()
	return &World{
		cfg:     cfg,
		ecs:     w,
		mapper:  ecs.NewMap3[components.Position, components.Velocity, components.Emitter](w),
		filter:  *ecs.NewFilter3[components.Position, components.Velocity, components.Emitter](w),
		posMap:  ecs.NewMap1[components.Position](w),
		emtMap:  ecs.NewMap1[components.Emitter](w),
		engine:  engine,
		drift:   newDriftField(cfg.Seed),
		sources: make(map[ecs.Entity]*entitySource),
	}
}

// Engine returns the attached blend engine.
func (w *World) Engine() *blend.Engine {
	return w.engine
}

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 {
	return w.tick
}

// EmitterCount returns the number of live emitters.
func (w *World) EmitterCount() int {
	return len(w.sources)
}

// SpawnEmitter creates an emitter at the given position and registers it
// with the engine.
func (w *World) SpawnEmitter(x, y, z, scalar float64) ecs.Entity {
	pos := components.Position{X: x, Y: y, Z: z}
	vel := components.Velocity{}
	emt := components.Emitter{ID: w.nextID, Scalar: scalar}
	w.nextID++

	entity := w.mapper.NewEntity(&pos, &vel, &emt)

	src := &entitySource{world: w, entity: entity}
	w.sources[entity] = src
	w.engine.Register(src)
	return entity
}

// RemoveEmitter unregisters an emitter from the engine and deletes the
// entity. No-op for entities that are not emitters.
func (w *World) RemoveEmitter(entity ecs.Entity) {
	src, ok := w.sources[entity]
	if !ok {
		return
	}
	w.engine.Unregister(src)
	delete(w.sources, entity)
	w.ecs.RemoveEntity(entity)
}

// SetScalar updates an emitter's runtime blend multiplier.
func (w *World) SetScalar(entity ecs.Entity, scalar float64) {
	if _, ok := w.sources[entity]; !ok {
		return
	}
	w.emtMap.Get(entity).Scalar = scalar
}

// Step advances the world one tick: every emitter drifts along the noise
// field, clamped to the world bounds.
func (w *World) Step() {
	w.tick++
	t := float64(w.tick) * w.cfg.DriftScale

	query := w.filter.Query()
	for query.Next() {
		pos, vel, emt := query.Get()

		d := w.drift.Drift(emt.ID, t)
		vel.X = d.X * w.cfg.DriftSpeed
		vel.Y = d.Y * w.cfg.DriftSpeed
		vel.Z = d.Z * w.cfg.DriftSpeed

		pos.X = clamp(pos.X+vel.X, 0, w.cfg.Width)
		pos.Y = clamp(pos.Y+vel.Y, 0, w.cfg.Height)
		pos.Z = clamp(pos.Z+vel.Z, 0, w.cfg.Depth)
	}
}

// Each calls fn for every emitter with a snapshot of its components.
func (w *World) Each(fn func(entity ecs.Entity, pos components.Position, emt components.Emitter)) {
	query := w.filter.Query()
	for query.Next() {
		pos, _, emt := query.Get()
		fn(query.Entity(), *pos, *emt)
	}
}

// entitySource adapts one emitter entity to blend.Source. The engine holds
// these for as long as the entity lives; RemoveEmitter unregisters before
// the entity is deleted.
type entitySource struct {
	world  *World
	entity ecs.Entity
}

func (s *entitySource) Position() r3.Vec {
	return s.world.posMap.Get(s.entity).Vec()
}

func (s *entitySource) BlendScalar() float64 {
	return s.world.emtMap.Get(s.entity).Scalar
}

func (s *entitySource) ApplyBlendWeight(bw blend.Weight) {
	s.world.emtMap.Get(s.entity).Weight = bw
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
