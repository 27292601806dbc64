package models

import "encoding/json"

// Order Message Structures

// Node is a single target waypoint within an order. Coordinates missing from
// the payload decode as 0.
type Node struct {
	NodeID string  `json:"nodeId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Order is an inbound transport order: an ordered sequence of nodes for the
// robot to visit. Orders are transient; nothing about them is persisted.
type Order struct {
	OrderID string `json:"orderId"`
	Nodes   []Node `json:"nodes"`
}

// ParseOrder decodes an inbound order payload.
func ParseOrder(payload []byte) (*Order, error) {
	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
