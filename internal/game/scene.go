package game

import (
	"fmt"

	"github.com/Faultbox/stance-ik/internal/config"
	"github.com/Faultbox/stance-ik/internal/engine/picking"
	"github.com/Faultbox/stance-ik/internal/engine/terrain"
	"github.com/Faultbox/stance-ik/internal/game/entity"
	"github.com/Faultbox/stance-ik/internal/game/world"
	"github.com/Faultbox/stance-ik/internal/ik"
	"github.com/Faultbox/stance-ik/pkg/math"
)

// BuildWorld creates the ground and static boxes described by cfg.
func BuildWorld(cfg config.TerrainConfig) (*world.World, error) {
	var (
		ground *terrain.Heightmap
		err    error
	)
	switch cfg.Kind {
	case config.TerrainFlat:
		ground, err = terrain.Flat(cfg.Cells, cfg.CellSize, cfg.Height)
	case config.TerrainSlope:
		ground, err = terrain.Slope(cfg.Cells, cfg.CellSize, cfg.SlopeDeg)
	case config.TerrainHeights:
		origin := math.Vec3{X: cfg.Origin[0], Y: cfg.Origin[1]}
		ground, err = terrain.FromRows(cfg.Rows, cfg.CellSize, origin)
	default:
		return nil, fmt.Errorf("unknown terrain kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s terrain: %w", cfg.Kind, err)
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Kind
	}
	w := world.New(name, ground)
	for i, b := range cfg.Boxes {
		boxName := b.Name
		if boxName == "" {
			boxName = fmt.Sprintf("box%d", i)
		}
		w.AddBox(boxName, picking.NewAABB(vec3(b.Min), vec3(b.Max)), world.NoOwner)
	}
	return w, nil
}

// characterSpec converts a character config into a spawn spec. Missing foot
// sockets get the stock offsets under the names the tuning expects.
func characterSpec(cc config.CharacterConfig, t ik.Tuning) entity.Spec {
	spec := entity.Spec{
		Name:              cc.Name,
		X:                 cc.Position[0],
		Y:                 cc.Position[1],
		Yaw:               cc.Yaw,
		MoveSpeed:         cc.MoveSpeed,
		CapsuleRadius:     cc.CapsuleRadius,
		CapsuleHalfHeight: cc.CapsuleHalfHeight,
		Sockets:           make(map[string]math.Vec3, len(cc.Sockets)+2),
	}
	for name, off := range cc.Sockets {
		spec.Sockets[name] = vec3(off)
	}

	stock := entity.DefaultSockets(cc.CapsuleHalfHeight)
	if _, ok := spec.Sockets[t.LeftSocket]; !ok {
		spec.Sockets[t.LeftSocket] = stock[ik.DefaultLeftSocket]
	}
	if _, ok := spec.Sockets[t.RightSocket]; !ok {
		spec.Sockets[t.RightSocket] = stock[ik.DefaultRightSocket]
	}
	return spec
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
