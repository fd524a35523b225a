package match

import "github.com/yourusername/bgrules/pkg/rules"

// MaxCubeValue is the highest value the cube can reach.
const MaxCubeValue = 64

// Cube is the doubling cube. Owner is NoPlayer while the cube is centered.
type Cube struct {
	Value int          `json:"value"`
	Owner rules.Player `json:"owner"`
}

// NewCube returns a centered cube at 1.
func NewCube() Cube {
	return Cube{Value: 1, Owner: rules.NoPlayer}
}

// Centered reports whether neither player owns the cube.
func (c Cube) Centered() bool {
	return c.Owner == rules.NoPlayer
}

// MayDouble reports whether player holds doubling rights and the cube has
// room to grow.
func (c Cube) MayDouble(player rules.Player) bool {
	return c.Value < MaxCubeValue && (c.Centered() || c.Owner == player)
}

// Take returns the cube after taker accepts a double.
func (c Cube) Take(taker rules.Player) Cube {
	return Cube{Value: c.Value * 2, Owner: taker}
}
