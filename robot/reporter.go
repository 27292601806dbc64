package robot

import (
	"encoding/json"
	"log/slog"

	"agv-simulator/models"
	"agv-simulator/utils"
)

// protocolVersion is the version tag stamped into every state header.
const protocolVersion = "1.0"

// PublishState emits a full state snapshot on the robot's state topic and
// always publishes a visualization message immediately after. The
// stateUpdateId advances by exactly one per call with no gaps or repeats,
// regardless of which task (traversal, heartbeat, error op) triggered the
// publish. Publish failures are logged and swallowed; the counter still
// advances.
func (r *Robot) PublishState() {
	r.mu.Lock()
	r.stateUpdateID++
	msg := r.stateMessageLocked()
	r.mu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("failed to marshal state message", slog.Any("error", err))
		return
	}

	if err := r.transport.Publish(r.stateTopic, payload); err != nil {
		r.logger.Error("state publish failed", "topic", r.stateTopic, slog.Any("error", err))
	}

	if r.cache != nil {
		if err := r.cache.SaveState(r.ID, msg); err != nil {
			r.logger.Warn("state snapshot cache write failed", slog.Any("error", err))
		}
	}

	r.PublishVisualization()
}

// PublishVisualization emits the reduced snapshot on the visualization
// topic. No update counter, no ordering guarantee beyond following the state
// publish that triggered it.
func (r *Robot) PublishVisualization() {
	r.mu.Lock()
	msg := models.VisualizationMessage{
		RobotID:      r.ID,
		Position:     r.position,
		BatteryLevel: r.battery,
		Timestamp:    utils.FormatTimestamp(r.clock()),
	}
	r.mu.Unlock()

	payload, err := json.Marshal(&msg)
	if err != nil {
		r.logger.Error("failed to marshal visualization message", slog.Any("error", err))
		return
	}

	if err := r.transport.Publish(r.visualizationTopic, payload); err != nil {
		r.logger.Error("visualization publish failed", "topic", r.visualizationTopic, slog.Any("error", err))
	}
}

// Snapshot returns the robot's current state as a message without publishing
// anything or advancing the update counter. Used by the control API as a
// live fallback when no cached snapshot exists.
func (r *Robot) Snapshot() *models.StateMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateMessageLocked()
}

func (r *Robot) stateMessageLocked() *models.StateMessage {
	errs := make([]models.ProtocolError, len(r.errors))
	copy(errs, r.errors)

	return &models.StateMessage{
		Header: models.Header{
			Timestamp:     utils.FormatTimestamp(r.clock()),
			Version:       protocolVersion,
			Manufacturer:  r.manufacturer,
			SerialNumber:  r.serialNumber,
			StateUpdateID: r.stateUpdateID,
		},
		State: models.RobotState{
			OrderID:       r.orderID,
			LastNodeID:    r.lastNodeID,
			OperatingMode: r.operatingMode,
			BatteryState:  models.BatteryState{BatteryCharge: r.battery},
			Errors:        errs,
			Position:      r.position,
			Velocity:      r.velocity,
		},
	}
}
