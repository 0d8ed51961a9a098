// Package game implements the simulation loop that moves characters and
// runs foot IK on them every tick.
package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stance-ik/internal/config"
	"github.com/Faultbox/stance-ik/internal/engine/character"
	"github.com/Faultbox/stance-ik/internal/game/entity"
	"github.com/Faultbox/stance-ik/internal/game/world"
	"github.com/Faultbox/stance-ik/internal/ik"
	"github.com/Faultbox/stance-ik/internal/network/packets"
)

// Sink receives a frame for every character after every tick. Publish must
// not block the loop.
type Sink interface {
	Publish(f packets.Frame)
}

// Stats summarizes a run.
type Stats struct {
	Ticks           uint64
	ActiveFrames    uint64
	SuspendedFrames uint64
	PhaseChanges    uint64
	ProbeMisses     uint64 // Misses while IK was active
}

// Game is the simulation instance.
type Game struct {
	cfg    *config.Config
	log    *zap.Logger
	world  *world.World
	actors []*Actor
	sinks  []Sink

	rate  int
	dt    float32
	tick  uint64
	stats Stats
}

// New builds the world and characters described by cfg. A nil logger
// discards output.
func New(cfg *config.Config, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	w, err := BuildWorld(cfg.Terrain)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:   cfg,
		log:   log,
		world: w,
		rate:  cfg.Sim.TickRateHz,
		dt:    1 / float32(cfg.Sim.TickRateHz),
	}

	for i, cc := range cfg.Characters {
		tuning := cfg.IK.Tuning(cc)
		solver, err := ik.NewSolver(tuning, log.Named("ik").With(zap.String("character", cc.Name)))
		if err != nil {
			return nil, fmt.Errorf("character %q: %w", cc.Name, err)
		}

		if !w.Ground.Contains(cc.Position[0], cc.Position[1]) {
			return nil, fmt.Errorf("character %q spawns at (%v, %v), outside the terrain",
				cc.Name, cc.Position[0], cc.Position[1])
		}
		c := entity.NewCharacter(uint64(i+1), characterSpec(cc, tuning), w)
		if !character.Settle(c, w) {
			log.Warn("no ground under character",
				zap.String("character", c.Name),
				zap.Float32("x", c.Position.X),
				zap.Float32("y", c.Position.Y))
		}

		g.actors = append(g.actors, &Actor{
			Character: c,
			State:     ik.NewState(tuning),
			solver:    solver,
			script:    cc.Waypoints,
			loop:      cc.Loop,
		})
	}

	log.Info("game initialized",
		zap.Stringer("world", w),
		zap.Int("characters", len(g.actors)),
		zap.Int("tick_rate_hz", g.rate))
	return g, nil
}

// AddSink registers a frame consumer.
func (g *Game) AddSink(s Sink) {
	g.sinks = append(g.sinks, s)
}

// World returns the simulated world.
func (g *Game) World() *world.World {
	return g.world
}

// Actors returns the simulated characters in spawn order.
func (g *Game) Actors() []*Actor {
	return g.actors
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Stats returns counters accumulated so far.
func (g *Game) Stats() Stats {
	return g.stats
}

// Hello describes the run to observers.
func (g *Game) Hello() packets.Hello {
	names := make([]string, len(g.actors))
	for i, a := range g.actors {
		names[i] = a.Character.Name
	}
	var tuning packets.Tuning
	if len(g.actors) > 0 {
		tuning = tuningPacket(g.actors[0].solver.Tuning())
	}
	return packets.Hello{
		Type:       packets.TypeHello,
		Version:    packets.Version,
		World:      g.world.Name,
		TickRateHz: g.rate,
		Characters: names,
		Tuning:     tuning,
	}
}

// Step advances the simulation by one fixed tick. Each character moves
// first, then runs IK against its new position.
func (g *Game) Step() {
	g.tick++
	t := float64(g.tick) / float64(g.rate)

	for _, a := range g.actors {
		a.followScript(g.dt)
		character.UpdateMovement(a.Character, g.dt, g.world)

		prev := a.State.Phase
		a.probes, a.active = a.solver.Advance(&a.State, a.Character, g.dt)
		g.count(a, prev)

		f := a.frame(g.tick, t)
		for _, s := range g.sinks {
			s.Publish(f)
		}
	}
	g.stats.Ticks = g.tick
}

func (g *Game) count(a *Actor, prev ik.Phase) {
	if a.State.Phase != prev {
		g.stats.PhaseChanges++
	}
	if !a.active {
		g.stats.SuspendedFrames++
		return
	}
	g.stats.ActiveFrames++
	if !a.probes.Left.Hit {
		g.stats.ProbeMisses++
	}
	if !a.probes.Right.Hit {
		g.stats.ProbeMisses++
	}
}

// RunTicks steps n ticks as fast as possible. n = 0 runs until ctx is done.
// Cancellation is not an error.
func (g *Game) RunTicks(ctx context.Context, n int) error {
	for i := 0; n == 0 || i < n; i++ {
		if ctx.Err() != nil {
			return nil
		}
		g.Step()
		g.logProgress()
	}
	return nil
}

// Run steps the simulation paced to the wall clock when configured, until
// the configured tick count is reached or ctx is done. Run returns an error
// only for failures, never for cancellation.
func (g *Game) Run(ctx context.Context) error {
	if !g.cfg.Sim.Realtime {
		return g.RunTicks(ctx, g.cfg.Sim.Ticks)
	}

	limit := uint64(g.cfg.Sim.Ticks)
	ticker := time.NewTicker(time.Second / time.Duration(g.rate))
	defer ticker.Stop()

	g.log.Info("starting game loop", zap.Uint64("ticks", limit))
	for limit == 0 || g.tick < limit {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.Step()
			g.logProgress()
		}
	}
	return nil
}

// logProgress logs every actor once per simulated second.
func (g *Game) logProgress() {
	if g.tick%uint64(g.rate) != 0 {
		return
	}
	for _, a := range g.actors {
		g.log.Debug("tick",
			zap.Uint64("tick", g.tick),
			zap.String("character", a.Character.Name),
			zap.Stringer("phase", a.State.Phase),
			zap.Float32("hip", a.State.Hip.Offset),
			zap.Float32("left", a.State.Left.Effector),
			zap.Float32("right", a.State.Right.Effector))
	}
}
