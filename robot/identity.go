package robot

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"agv-simulator/models"
)

// Manufacturer is the fixed manufacturer tag reported by every simulated
// robot.
const Manufacturer = "DummyManufacturer"

// startPositions maps the numeric suffix of a robot id to its starting pose.
var startPositions = map[int]models.Position{
	1: {X: 200.0, Y: 200.0, Theta: 0.0},
	2: {X: 150.0, Y: 150.0, Theta: 90.0},
	3: {X: -150.0, Y: -150.0, Theta: 180.0},
	4: {X: 200.0, Y: -200.0, Theta: 270.0},
	5: {X: -300.0, Y: 300.0, Theta: 45.0},
}

// StartPosition derives the starting pose from the numeric suffix after the
// last underscore of the robot id. Unknown or unparsable suffixes silently
// start at the origin; this is a default, not a failure.
func StartPosition(robotID string) models.Position {
	idx := strings.LastIndex(robotID, "_")
	if idx < 0 {
		return models.Position{}
	}
	number, err := strconv.Atoi(robotID[idx+1:])
	if err != nil {
		return models.Position{}
	}
	return startPositions[number]
}

// NewSerialNumber draws a serial tag from rng. The serial is generated once
// at robot creation and stays stable for the process lifetime.
func NewSerialNumber(rng *rand.Rand) string {
	return fmt.Sprintf("SN%d", 1000+rng.Intn(9000))
}
