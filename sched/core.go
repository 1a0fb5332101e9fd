package sched

import (
	"errors"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/pion/logging"

	"github.com/edgelink/lorasched/driver"
	"github.com/edgelink/lorasched/protocol"
)

// DefaultQueueDepth is the event queue capacity used when Config leaves it
// zero. Steady-state traffic holds at most a couple of in-flight events
// (one per interrupt source plus a re-issued session request).
const DefaultQueueDepth = 8

// ErrMissingCollaborator is returned by New when a required collaborator is
// absent from the configuration.
var ErrMissingCollaborator = errors.New("sched: missing collaborator")

// Config assembles a Core from its collaborators.
type Config struct {
	// Machine is the protocol state machine. Required.
	Machine protocol.Machine

	// Radio, Timer and Clocks are the peripheral capability handles.
	// All required.
	Radio  driver.Radio
	Timer  driver.LowPowerTimer
	Clocks driver.ClockControl

	// QueueDepth bounds the pending-event queue. Defaults to
	// DefaultQueueDepth.
	QueueDepth int

	// OnOverflow runs when an event cannot be queued. A saturated ready
	// queue on a run-to-completion scheduler has no safe partial
	// recovery, so the default panics and leaves the restart to the
	// supervising watchdog.
	OnOverflow func()

	// LoggerFactory creates the scoped loggers. Defaults to
	// logging.NewDefaultLoggerFactory.
	LoggerFactory logging.LoggerFactory
}

// Core drives the protocol state machine from hardware and software events.
// Events are pended onto a bounded FIFO queue and serviced one at a time,
// run to completion, by a single dispatch context; the state machine moves
// out of the shared store for exactly the duration of one event.
type Core struct {
	res   *Resources
	radio driver.Radio

	// queue is single-consumer; producers (interrupt entry points, the
	// responder, the application) serialize on pendMu so FIFO order holds
	// across sources.
	queue  lfq.SPSC[protocol.Event]
	pendMu sync.Mutex

	running    atomix.Uint32
	dropped    atomix.Uint32
	onOverflow func()

	log      logging.LeveledLogger
	respLog  logging.LeveledLogger
	timerLog logging.LeveledLogger
}

// New validates the configuration and builds a Core. The state machine
// starts out present in the store and the queue empty.
func New(cfg Config) (*Core, error) {
	if cfg.Machine == nil || cfg.Radio == nil || cfg.Timer == nil || cfg.Clocks == nil {
		return nil, ErrMissingCollaborator
	}

	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = DefaultQueueDepth
	}

	lf := cfg.LoggerFactory
	if lf == nil {
		lf = logging.NewDefaultLoggerFactory()
	}

	c := &Core{
		res:        NewResources(cfg.Machine, cfg.Timer, cfg.Clocks),
		radio:      cfg.Radio,
		onOverflow: cfg.OnOverflow,
		log:        lf.NewLogger("dispatch"),
		respLog:    lf.NewLogger("respond"),
		timerLog:   lf.NewLogger("timer"),
	}
	c.queue.Init(depth)
	if c.onOverflow == nil {
		c.onOverflow = func() { panic("sched: event queue overflow") }
	}
	return c, nil
}

// Resources exposes the shared store, mainly so harnesses can assert the
// state-presence invariant.
func (c *Core) Resources() *Resources { return c.res }

// Pend queues ev for dispatch. It is safe from any context, including the
// interrupt entry points. A full queue is a dispatch overflow: the reset
// hook runs, because dropping scheduler work silently would starve the
// protocol in ways no later event can repair.
func (c *Core) Pend(ev protocol.Event) {
	c.pendMu.Lock()
	err := c.queue.Enqueue(&ev)
	c.pendMu.Unlock()

	if err != nil {
		c.log.Errorf("event queue overflow on %s", eventName(ev))
		c.onOverflow()
	}
}

// Service drains the pending queue in FIFO order, dispatching each event to
// completion. It returns the number of events serviced. Events pended while
// servicing (re-issued session requests) are serviced in the same call.
func (c *Core) Service() int {
	n := 0
	for {
		ev, err := c.queue.Dequeue()
		if err != nil {
			if !errors.Is(err, iox.ErrWouldBlock) {
				c.log.Errorf("event queue dequeue: %v", err)
			}
			return n
		}
		c.dispatch(ev)
		n++
	}
}

// Start switches the RF path to receive, injects the initial session
// request and launches the service loop. The endpoint then runs
// indefinitely, cycling through session establishment, data exchange and
// timeout-driven retries.
func (c *Core) Start() {
	if !c.running.CompareAndSwap(0, 1) {
		return
	}
	c.radio.SetReceiveMode()
	c.Pend(protocol.NewSessionRequest{})
	go c.serviceLoop()
}

// Stop halts the service loop. Pending events stay queued.
func (c *Core) Stop() {
	c.running.Store(0)
}

func (c *Core) serviceLoop() {
	var bo iox.Backoff
	for c.running.Load() == 1 {
		if c.Service() == 0 {
			bo.Wait()
		} else {
			bo = iox.Backoff{}
		}
	}
}

// SendData queues an application uplink.
func (c *Core) SendData(fport uint8, data []byte, confirmed bool) {
	buf := make([]byte, len(data))
	copy(buf, data)
	c.Pend(protocol.SendDataRequest{FPort: fport, Data: buf, Confirmed: confirmed})
}

// DroppedEvents returns how many events were dropped because the state
// machine was checked out when they arrived.
func (c *Core) DroppedEvents() uint32 { return c.dropped.Load() }

// dispatch feeds one event to the state machine. The machine leaves the
// store for the duration of the call and is put back unconditionally —
// state is never discarded on an error path.
func (c *Core) dispatch(ev protocol.Event) {
	// The machine may need randomness at any point of the transition.
	c.res.WithClocks(func(cc driver.ClockControl) { cc.EnableEntropyClock() })

	m, ok := c.res.TakeState()
	if !ok {
		// A previous holder still has the machine. Dropping here is the
		// policy: the condition is transient and the next event resolves
		// it, whereas queueing would reorder against the holder's outcome.
		c.dropped.Add(1)
		c.log.Warnf("state unavailable, dropping %s", eventName(ev))
		return
	}

	c.logEvent(ev)
	resp, err := m.HandleEvent(ev)
	c.res.ReplaceState(m)

	c.respond(resp, err)
}

func (c *Core) logEvent(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.NewSessionRequest:
		c.log.Info("new session request")
	case protocol.TimeoutFired:
		c.log.Info("timeout fired")
	case protocol.SendDataRequest:
		c.log.Infof("send data request (fport=%d len=%d confirmed=%t)", e.FPort, len(e.Data), e.Confirmed)
	case protocol.RadioEvent:
		switch p := e.Payload.(type) {
		case protocol.TxRequest:
			c.log.Infof("radio tx request (%d bytes)", len(p.Data))
		case protocol.RxRequest:
			c.log.Info("radio rx request")
		case protocol.CancelRx:
			c.log.Info("radio cancel rx")
		case protocol.PhyEvent:
			c.log.Infof("radio interrupt (status=0x%02x flags=0x%04x)", p.Status, p.Flags)
		}
	}
}

func eventName(ev protocol.Event) string {
	switch e := ev.(type) {
	case protocol.NewSessionRequest:
		return "NewSessionRequest"
	case protocol.TimeoutFired:
		return "TimeoutFired"
	case protocol.SendDataRequest:
		return "SendDataRequest"
	case protocol.RadioEvent:
		switch e.Payload.(type) {
		case protocol.TxRequest:
			return "RadioEvent(TxRequest)"
		case protocol.RxRequest:
			return "RadioEvent(RxRequest)"
		case protocol.CancelRx:
			return "RadioEvent(CancelRx)"
		case protocol.PhyEvent:
			return "RadioEvent(PhyEvent)"
		}
	}
	return "Unknown"
}
