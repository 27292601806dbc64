package fleet

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"agv-simulator/config"
	"agv-simulator/robot"
	"agv-simulator/transport"
)

// TransportFactory builds one message-bus session per robot. Sessions are
// not shared across robots.
type TransportFactory func(robotID string) transport.Transport

// Supervisor owns the fleet of simulated robots and drives the periodic
// heartbeat publish across all of them. It does not track order execution;
// traversal tasks are fire-and-forget inside each robot.
type Supervisor struct {
	robots    []*robot.Robot
	byID      map[string]*robot.Robot
	heartbeat time.Duration
	logger    *slog.Logger
	stopCh    chan struct{}
}

// NewSupervisor creates cfg.RobotCount robots with sequential ids robot_1..robot_N.
func NewSupervisor(cfg *config.Config, factory TransportFactory, cache robot.StateCache, logger *slog.Logger) *Supervisor {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	params := robot.DefaultParams()
	params.StepDelay = cfg.StepDelay
	params.NodeDelay = cfg.NodeDelay
	params.SerializeOrders = cfg.OrderQueueMode == config.OrderQueueSerialize

	s := &Supervisor{
		byID:      make(map[string]*robot.Robot),
		heartbeat: cfg.HeartbeatInterval,
		logger:    logger.With("component", "fleet"),
		stopCh:    make(chan struct{}),
	}

	for i := 1; i <= cfg.RobotCount; i++ {
		id := fmt.Sprintf("robot_%d", i)
		r := robot.New(id, factory(id), cache, rng, params, logger)
		s.robots = append(s.robots, r)
		s.byID[id] = r
	}
	return s
}

// Start connects every robot and begins the heartbeat loop. A robot that
// fails to connect is logged and skipped, not fatal: it stays in the fleet
// and keeps attempting publishes.
func (s *Supervisor) Start() error {
	for _, r := range s.robots {
		if err := r.Start(); err != nil {
			s.logger.Error("robot failed to start", "robotId", r.ID, slog.Any("error", err))
			continue
		}
		s.logger.Info("robot started", "robotId", r.ID)
	}

	go s.heartbeatLoop()
	s.logger.Info("fleet started", "robots", len(s.robots), "heartbeat", s.heartbeat.String())
	return nil
}

// heartbeatLoop publishes every robot's state on a fixed period,
// unconditionally and independent of order activity.
func (s *Supervisor) heartbeatLoop() {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			for _, r := range s.robots {
				r.PublishState()
			}
		}
	}
}

// Stop halts the heartbeat and disconnects every robot's transport session.
// In-flight traversal tasks are not cancelled; publishes they attempt after
// disconnect fail and are dropped. No state survives shutdown.
func (s *Supervisor) Stop() {
	close(s.stopCh)
	for _, r := range s.robots {
		r.Stop()
	}
	s.logger.Info("fleet stopped")
}

// Robot looks up a robot by id.
func (s *Supervisor) Robot(id string) (*robot.Robot, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Robots returns the fleet in creation order.
func (s *Supervisor) Robots() []*robot.Robot {
	return s.robots
}
