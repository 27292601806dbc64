package models

// State Message Structures

type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

type Velocity struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

type BatteryState struct {
	BatteryCharge float64 `json:"batteryCharge"`
}

// ProtocolError is one entry in the robot's active error list.
type ProtocolError struct {
	ErrorType        string `json:"errorType"`
	ErrorDescription string `json:"errorDescription"`
	ErrorLevel       string `json:"errorLevel"`
}

// Header stamps every state message with the robot identity and a
// monotonically increasing update id.
type Header struct {
	Timestamp     string `json:"timestamp"`
	Version       string `json:"version"`
	Manufacturer  string `json:"manufacturer"`
	SerialNumber  string `json:"serialNumber"`
	StateUpdateID int    `json:"stateUpdateId"`
}

type RobotState struct {
	OrderID       string          `json:"orderId"`
	LastNodeID    string          `json:"lastNodeId"`
	OperatingMode string          `json:"operatingMode"`
	BatteryState  BatteryState    `json:"batteryState"`
	Errors        []ProtocolError `json:"errors"`
	Position      Position        `json:"position"`
	Velocity      Velocity        `json:"velocity"`
}

// StateMessage is the full status report published on the state topic.
type StateMessage struct {
	Header Header     `json:"header"`
	State  RobotState `json:"state"`
}

// VisualizationMessage is the reduced snapshot published on the
// visualization topic. It carries no update counter.
type VisualizationMessage struct {
	RobotID      string   `json:"robotId"`
	Position     Position `json:"position"`
	BatteryLevel float64  `json:"batteryLevel"`
	Timestamp    string   `json:"timestamp"`
}
