// Package navigation turns navigability scores into drive commands.
package navigation

import (
	"math"

	"github.com/samber/lo"

	"github.com/satinavrobotics/depthnav/navigability"
)

// Defaults of ObstacleAvoidance.
const (
	DefaultMaxLinearSpeed       = 0.25
	DefaultMaxAngularSpeed      = 0.75
	DefaultTraversabilityWeight = 3.0
	DefaultHeadingWeight        = 1.0
	MinTurnStrength             = 0.3
)

// Direction is a candidate heading, from -1 (left) to +1 (right).
type Direction float64

// The three windows scored by the navigability pass.
const (
	Left   Direction = -1
	Center Direction = 0
	Right  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Center:
		return "center"
	default:
		return "unknown"
	}
}

// Command is a differential-drive velocity request. Angular is negative to turn left.
type Command struct {
	Linear  float64
	Angular float64
	Stop    bool
	// Direction is the cheapest window, or Center when stopping.
	Direction Direction
}

// StopCommand halts the robot.
func StopCommand() Command {
	return Command{Stop: true, Direction: Center}
}

// Costs are the per-window costs of a decision. Lower is better.
type Costs struct {
	Left   float64
	Center float64
	Right  float64
}

// ObstacleAvoidance steers towards the window with the fewest obstacle bands, biased towards a
// target heading, and slows down as the robot's own corridor fills up.
type ObstacleAvoidance struct {
	MaxLinearSpeed       float64
	MaxAngularSpeed      float64
	TraversabilityWeight float64
	HeadingWeight        float64
	// Steering disables turning when false; the robot only drives straight or stops.
	Steering bool
}

// NewObstacleAvoidance returns a strategy with the default speeds and weights.
func NewObstacleAvoidance() *ObstacleAvoidance {
	return &ObstacleAvoidance{
		MaxLinearSpeed:       DefaultMaxLinearSpeed,
		MaxAngularSpeed:      DefaultMaxAngularSpeed,
		TraversabilityWeight: DefaultTraversabilityWeight,
		HeadingWeight:        DefaultHeadingWeight,
		Steering:             true,
	}
}

// Command decides how to drive given the latest scores. targetHeading is in [-1, 1], 0 being
// straight ahead. An empty center window, or one with no navigable band, stops the robot.
func (a *ObstacleAvoidance) Command(nav navigability.Result, targetHeading float64) Command {
	if len(nav.Center) == 0 {
		return StopCommand()
	}
	navigable := navigability.NavigableCount(nav.Center)
	if navigable == 0 {
		return StopCommand()
	}

	cmd := Command{
		Linear:    a.linearSpeed(float64(navigable) / float64(len(nav.Center))),
		Direction: Center,
	}
	if !a.Steering || len(nav.Left) == 0 || len(nav.Right) == 0 {
		return cmd
	}

	costs := a.Costs(nav, targetHeading)
	minCost := math.Min(costs.Left, math.Min(costs.Center, costs.Right))
	switch minCost {
	case costs.Left:
		cmd.Direction = Left
		cmd.Angular = -a.MaxAngularSpeed * turnStrength(nav.Left)
	case costs.Right:
		cmd.Direction = Right
		cmd.Angular = a.MaxAngularSpeed * turnStrength(nav.Right)
	}
	return cmd
}

// Costs scores each window as obstacle share × TraversabilityWeight plus
// |direction - targetHeading| × HeadingWeight. An empty window costs +Inf.
func (a *ObstacleAvoidance) Costs(nav navigability.Result, targetHeading float64) Costs {
	return Costs{
		Left:   a.cost(nav.Left, Left, targetHeading),
		Center: a.cost(nav.Center, Center, targetHeading),
		Right:  a.cost(nav.Right, Right, targetHeading),
	}
}

func (a *ObstacleAvoidance) cost(bands []bool, dir Direction, targetHeading float64) float64 {
	if len(bands) == 0 {
		return math.Inf(1)
	}
	blocked := lo.Count(bands, false)
	traversability := float64(blocked) / float64(len(bands)) * a.TraversabilityWeight
	heading := math.Abs(float64(dir)-targetHeading) * a.HeadingWeight
	return traversability + heading
}

func (a *ObstacleAvoidance) linearSpeed(clearRatio float64) float64 {
	switch {
	case clearRatio > 0.8:
		return a.MaxLinearSpeed
	case clearRatio > 0.5:
		return a.MaxLinearSpeed * 0.7
	case clearRatio > 0.2:
		return a.MaxLinearSpeed * 0.4
	default:
		return 0
	}
}

// turnStrength is the clear share of a window, clamped to [MinTurnStrength, 1].
func turnStrength(bands []bool) float64 {
	share := float64(navigability.NavigableCount(bands)) / float64(len(bands))
	return math.Max(MinTurnStrength, math.Min(1, share))
}
