package robot

import (
	"math/rand"
	"strings"
	"testing"

	"agv-simulator/models"
)

func TestStartPosition(t *testing.T) {
	tests := []struct {
		robotID string
		want    models.Position
	}{
		{"robot_1", models.Position{X: 200.0, Y: 200.0, Theta: 0.0}},
		{"robot_2", models.Position{X: 150.0, Y: 150.0, Theta: 90.0}},
		{"robot_3", models.Position{X: -150.0, Y: -150.0, Theta: 180.0}},
		{"robot_4", models.Position{X: 200.0, Y: -200.0, Theta: 270.0}},
		{"robot_5", models.Position{X: -300.0, Y: 300.0, Theta: 45.0}},
		// Unmapped suffixes silently default to the origin.
		{"robot_9", models.Position{}},
		{"robot_42", models.Position{}},
		// So do ids without a parsable suffix.
		{"robot", models.Position{}},
		{"robot_x", models.Position{}},
	}

	for _, tt := range tests {
		t.Run(tt.robotID, func(t *testing.T) {
			got := StartPosition(tt.robotID)
			if got != tt.want {
				t.Errorf("StartPosition(%q) = %+v, want %+v", tt.robotID, got, tt.want)
			}
		})
	}
}

func TestNewSerialNumber(t *testing.T) {
	serial := NewSerialNumber(rand.New(rand.NewSource(7)))

	if !strings.HasPrefix(serial, "SN") {
		t.Errorf("serial %q missing SN prefix", serial)
	}
	if len(serial) != 6 {
		t.Errorf("serial %q should be SN followed by four digits", serial)
	}

	// Same seed, same serial: identity construction is deterministic.
	again := NewSerialNumber(rand.New(rand.NewSource(7)))
	if serial != again {
		t.Errorf("expected deterministic serial for fixed seed, got %q and %q", serial, again)
	}
}
