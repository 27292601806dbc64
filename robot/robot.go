package robot

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"agv-simulator/models"
	"agv-simulator/transport"
)

// Clock supplies message timestamps. Injectable so tests can pin time.
type Clock func() time.Time

// StateCache stores the most recent state snapshot for external inspection.
// A nil cache disables snapshotting.
type StateCache interface {
	SaveState(robotID string, state *models.StateMessage) error
}

// Params control simulated motion timing and order scheduling.
type Params struct {
	StepCount    int
	StepDelay    time.Duration
	NodeDelay    time.Duration
	BatteryDrain float64

	// SerializeOrders routes accepted orders through a per-robot queue so
	// they execute one at a time. When false, every order runs in its own
	// task and concurrent traversals race on the shared pose.
	SerializeOrders bool
}

// DefaultParams returns the standard simulation timing: ten interpolation
// steps of 500ms per node, a 2s dwell after each node, 0.1 battery drain per
// step.
func DefaultParams() Params {
	return Params{
		StepCount:    10,
		StepDelay:    500 * time.Millisecond,
		NodeDelay:    2 * time.Second,
		BatteryDrain: 0.1,
	}
}

// Robot is one simulated AGV. All mutable state is guarded by mu; traversal
// sleeps happen outside the lock so the heartbeat and error operations are
// never blocked by a moving robot.
type Robot struct {
	ID           string
	manufacturer string
	serialNumber string

	transport transport.Transport
	cache     StateCache
	logger    *slog.Logger
	clock     Clock
	params    Params

	orderTopic         string
	stateTopic         string
	visualizationTopic string

	mu            sync.Mutex
	position      models.Position
	velocity      models.Velocity
	battery       float64
	operatingMode string
	errors        []models.ProtocolError
	orderID       string
	lastNodeID    string
	orderUpdateID int
	stateUpdateID int

	orderQueue chan models.Order
}

// New creates a robot with its identity, starting pose and topics derived
// from the robot id. The rng seeds the serial number only.
func New(id string, tr transport.Transport, cache StateCache, rng *rand.Rand, params Params, logger *slog.Logger) *Robot {
	r := &Robot{
		ID:           id,
		manufacturer: Manufacturer,
		serialNumber: NewSerialNumber(rng),

		transport: tr,
		cache:     cache,
		logger:    logger.With("component", "robot", "robotId", id),
		clock:     time.Now,
		params:    params,

		orderTopic:         fmt.Sprintf("uagv/%s/order", id),
		stateTopic:         fmt.Sprintf("uagv/%s/state", id),
		visualizationTopic: fmt.Sprintf("uagv/%s/visualization", id),

		position:      StartPosition(id),
		battery:       100,
		operatingMode: "AUTOMATIC",
		errors:        []models.ProtocolError{},
		lastNodeID:    "START",
	}

	if params.SerializeOrders {
		r.orderQueue = make(chan models.Order, 16)
		go r.runOrderQueue()
	}
	return r
}

// SetClock overrides the timestamp source. For tests.
func (r *Robot) SetClock(clock Clock) {
	r.clock = clock
}

// SerialNumber returns the robot's serial tag.
func (r *Robot) SerialNumber() string {
	return r.serialNumber
}

// Start connects the robot's transport session and subscribes to its order
// topic. A connect failure is returned to the caller but leaves the robot
// operational: later publishes are still attempted.
func (r *Robot) Start() error {
	if err := r.transport.Connect(); err != nil {
		return fmt.Errorf("robot %s: connect: %w", r.ID, err)
	}
	if err := r.transport.Subscribe(r.orderTopic, r.onMessage); err != nil {
		return fmt.Errorf("robot %s: subscribe %s: %w", r.ID, r.orderTopic, err)
	}
	r.logger.Info("robot connected", "orderTopic", r.orderTopic)
	return nil
}

// Stop disconnects the transport session. In-flight traversals are not
// cancelled; their publishes after disconnect fail and are dropped.
func (r *Robot) Stop() {
	r.transport.Disconnect()
}

func (r *Robot) onMessage(topic string, payload []byte) {
	order, err := models.ParseOrder(payload)
	if err != nil {
		r.logger.Error("dropping malformed order payload", "topic", topic, slog.Any("error", err))
		return
	}
	r.logger.Info("order message received", "topic", topic, "orderId", order.OrderID)
	r.HandleOrder(order)
}

// HandleOrder accepts a transport order and launches its traversal. There is
// no duplicate detection and no queueing in concurrent mode: an order
// accepted while an earlier one is still executing neither blocks on nor
// cancels it, and both traversals mutate the same pose — the last writer
// wins.
func (r *Robot) HandleOrder(order *models.Order) {
	r.mu.Lock()
	r.orderID = order.OrderID
	r.orderUpdateID++
	r.mu.Unlock()

	r.logger.Info("order accepted", "orderId", order.OrderID, "nodes", len(order.Nodes))

	if r.params.SerializeOrders {
		r.orderQueue <- *order
		return
	}
	go r.executeOrder(*order)
}

func (r *Robot) runOrderQueue() {
	for order := range r.orderQueue {
		r.executeOrder(order)
	}
}

// executeOrder walks the node list in order. Each node is reached via
// interpolated movement, then after the travel dwell the node is marked as
// completed and the final state for that node is published. An order with no
// nodes completes immediately.
func (r *Robot) executeOrder(order models.Order) {
	for _, node := range order.Nodes {
		r.moveToNode(node)
		time.Sleep(r.params.NodeDelay)

		r.mu.Lock()
		r.lastNodeID = node.NodeID
		r.mu.Unlock()

		r.PublishState()
	}
	r.logger.Info("order execution finished", "orderId", order.OrderID)
}

// moveToNode interpolates from the current position to the node target in a
// fixed number of equal steps. Every step moves the robot, drains the
// battery and publishes a state snapshot.
func (r *Robot) moveToNode(node models.Node) {
	r.mu.Lock()
	dx := (node.X - r.position.X) / float64(r.params.StepCount)
	dy := (node.Y - r.position.Y) / float64(r.params.StepCount)
	r.mu.Unlock()

	for i := 0; i < r.params.StepCount; i++ {
		r.mu.Lock()
		r.position.X += dx
		r.position.Y += dy
		r.battery = math.Max(0, r.battery-r.params.BatteryDrain)
		r.mu.Unlock()

		r.PublishState()
		time.Sleep(r.params.StepDelay)
	}
}

// SimulateError injects one WARNING-level error into the robot's active
// error list and reports it. An empty type defaults to TECHNICAL_ERROR.
func (r *Robot) SimulateError(errorType string) {
	if errorType == "" {
		errorType = "TECHNICAL_ERROR"
	}

	r.mu.Lock()
	r.errors = append(r.errors, models.ProtocolError{
		ErrorType:        errorType,
		ErrorDescription: fmt.Sprintf("Simulated %s", errorType),
		ErrorLevel:       "WARNING",
	})
	r.mu.Unlock()

	r.logger.Warn("simulated error injected", "errorType", errorType)
	r.PublishState()
}

// ClearErrors empties the active error list and reports the cleared state.
func (r *Robot) ClearErrors() {
	r.mu.Lock()
	r.errors = []models.ProtocolError{}
	r.mu.Unlock()

	r.logger.Info("errors cleared")
	r.PublishState()
}
