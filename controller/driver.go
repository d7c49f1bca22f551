package controller

import (
	"sync"
	"time"

	"github.com/netrack/ofcontroller/of"
	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/policy"
	"github.com/netrack/ofcontroller/topology"
)

// UpdateMode selects which updater an app-returned policy is pushed
// through (§6: "update_mode ∈ {BestEffort, PerPacketConsistent}").
type UpdateMode int

const (
	BestEffort UpdateMode = iota
	PerPacketConsistent
)

// Config holds everything a Driver needs before it can listen, in the
// spirit of the teacher's Server{Addr, Handler, ReadTimeout,
// WriteTimeout} struct.
type Config struct {
	// Addr is the southbound listen address. Empty uses ":6633".
	Addr string
	// AcceptBacklog bounds concurrently served switch connections. Zero
	// uses of.DefaultAcceptBacklog.
	AcceptBacklog int
	// BarrierTimeout overrides the package default of 15s when nonzero.
	BarrierTimeout time.Duration
	// Mode selects the updater a returned policy is pushed through.
	Mode UpdateMode
}

// DefaultConfig returns the southbound defaults named in §6.
func DefaultConfig() Config {
	return Config{
		Addr:           ":6633",
		AcceptBacklog:  of.DefaultAcceptBacklog,
		BarrierTimeout: 15 * time.Second,
		Mode:           BestEffort,
	}
}

// Writer is the northbound write handle an app uses to emit packet-outs
// outside of the policy-evaluation path (§6: "a write handle for
// packet-outs: (SwitchId, (payload, Option<PortId>, action_list))").
type Writer interface {
	WritePacketOut(sw topology.SwitchId, payload []byte, inPort *topology.PortId, actions []policy.Action) error
}

// HandlerFunc is the per-event handler an App produces: given one network
// event, it returns a new Policy to install, or ok=false to leave the
// current policy in place.
type HandlerFunc func(Event) (policy.Policy, bool)

// App is the northbound entry point's function shape (§6): given the
// topology view and write handle, and whether this is the app's first
// construction (always true here; independent apps never see init=false
// either, since the driver is only ever started once), it returns the
// handler that will receive every subsequent event.
type App func(topo topology.View, w Writer, init bool) HandlerFunc

// IndependentApp is the start_independent entry point's function shape:
// an app with no need of the topology view or write handle.
type IndependentApp func(init bool) HandlerFunc

// Driver owns the event pipe, the per-switch sessions, and the outbound
// packet-out writer, and dispatches events to a single app handler
// (§4.7).
type Driver struct {
	cfg       Config
	compiler  policy.Compiler
	evaluator policy.Evaluator
	defaultP  policy.Policy

	topo     *topology.Graph
	sessions *sessionTable
	reg      *barrierRegistry
	trans    *translator
	best     *bestEffortUpdaterComponent
	updater  *ConsistentUpdater

	log *logger

	events   chan Event
	outbound chan outboundMsg

	handler HandlerFunc
}

// bestEffortUpdaterComponent wraps the package-level bestEffortUpdate
// function in a named type purely so it gets its own component logger,
// matching the way every other long-lived piece is tagged (§1A).
type bestEffortUpdaterComponent struct {
	log *logger
}

func newDriver(cfg Config, compiler policy.Compiler, evaluator policy.Evaluator, defaultPolicy policy.Policy) *Driver {
	if cfg.Addr == "" {
		cfg.Addr = ":6633"
	}
	if cfg.AcceptBacklog <= 0 {
		cfg.AcceptBacklog = of.DefaultAcceptBacklog
	}
	if cfg.BarrierTimeout > 0 {
		barrierTimeout = cfg.BarrierTimeout
	}

	log := newLogger()
	reg := newBarrierRegistry()

	return &Driver{
		cfg:       cfg,
		compiler:  compiler,
		evaluator: evaluator,
		defaultP:  defaultPolicy,
		topo:      topology.NewGraph(),
		sessions:  newSessionTable(),
		reg:       reg,
		trans:     newTranslator(log),
		best:      &bestEffortUpdaterComponent{log: component(log, "best-effort-update")},
		updater:   newConsistentUpdater(reg, log),
		log:       component(log, "driver"),
		events:    make(chan Event, 256),
		outbound:  make(chan outboundMsg, 256),
	}
}

// outboundMsg is one packet-out queued for the single outbound writer.
type outboundMsg struct {
	sw topology.SwitchId
	po *ofp10.PacketOut
}

// driverWriter implements Writer against a Driver's outbound channel.
type driverWriter struct{ d *Driver }

func (w *driverWriter) WritePacketOut(sw topology.SwitchId, payload []byte, inPort *topology.PortId, actions []policy.Action) error {
	po := &ofp10.PacketOut{
		BufferID: ofp10.NoBuffer,
		Actions:  actionsFromPolicy(actions),
		Data:     payload,
	}
	if inPort != nil {
		po.InPort = ofp10.PortNo(*inPort)
	} else {
		po.InPort = ofp10.PortNone
	}

	select {
	case w.d.outbound <- outboundMsg{sw: sw, po: po}:
		return nil
	default:
		return newError(SendDropped, "write_packet_out", errOutboundFull)
	}
}

// Start wires app through a fresh Driver and blocks serving the
// southbound listener, per §6's start(app, port?, update_mode?).
func Start(app App, cfg Config, compiler policy.Compiler, evaluator policy.Evaluator, defaultPolicy policy.Policy) error {
	d := newDriver(cfg, compiler, evaluator, defaultPolicy)
	d.handler = app(d.topo, &driverWriter{d: d}, true)
	return d.listenAndServe()
}

// StartIndependent wires an app with no topology/writer access through a
// fresh Driver, per §6's start_independent(independent_app, port?,
// update_mode?).
func StartIndependent(app IndependentApp, cfg Config, compiler policy.Compiler, evaluator policy.Evaluator, defaultPolicy policy.Policy) error {
	d := newDriver(cfg, compiler, evaluator, defaultPolicy)
	d.handler = app(true)
	return d.listenAndServe()
}

// listenAndServe runs the southbound listener through of.Server, which
// owns accept-loop bounding (cfg.AcceptBacklog, per §6's "maximum pending
// accept queue: 64") and per-connection goroutine dispatch the same way
// it would for any of-based request/response service. The controller core
// needs a connection for its entire lifetime rather than per request, so
// serveFirst immediately hijacks each connection out of of.Server's
// per-message dispatch loop and hands it to handleSwitch.
func (d *Driver) listenAndServe() error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); d.runEventLoop() }()
	go func() { defer wg.Done(); d.runOutbound() }()
	defer func() {
		close(d.events)
		close(d.outbound)
		wg.Wait()
	}()

	srv := &of.Server{
		Addr:          d.cfg.Addr,
		Handler:       of.HandlerFunc(d.serveFirst),
		AcceptBacklog: d.cfg.AcceptBacklog,
	}
	return srv.ListenAndServe()
}

// serveFirst is the of.Server Handler invoked with the first message
// received on every new switch connection (§9: "Hijacker ... used by the
// controller driver to keep a long-lived handle to a switch past the
// initial handshake"). It takes raw ownership of the connection via
// Hijack, the same way an HTTP handler hijacks a connection to take over
// framing itself, then hands the already-received first request plus the
// hijacked connection to handleSwitch.
func (d *Driver) serveFirst(rw of.ResponseWriter, req *of.Request) {
	rwc, buf, err := rw.Hijack()
	if err != nil {
		d.log.Err().Err(err).Log("failed to hijack new switch connection")
		return
	}
	d.handleSwitch(of.NewConnFromHijack(rwc, buf), req)
}

// handleSwitch owns one switch connection end to end: the handshake (the
// switch's first message is expected to be a FeaturesReply; no
// Hello/EchoRequest exchange is performed), session bookkeeping, and the
// per-connection read loop
// that feeds the shared event pipe (§5A: "one goroutine per switch
// connection translating of.Request into controller events"). req is the
// first message of the connection, already received by of.Server before
// serveFirst hijacked it away.
func (d *Driver) handleSwitch(conn of.Conn, req *of.Request) {
	defer conn.Close()

	if req.Header.Type != ofp10.TypeFeaturesReply {
		d.log.Err().Str("type", req.Header.Type.String()).
			Log("switch's first message was not a features reply")
		return
	}

	var feats ofp10.FeaturesReply
	if _, err := feats.ReadFrom(req.Body); err != nil {
		d.log.Err().Err(err).Log("failed to decode features reply")
		return
	}
	sw := topology.SwitchId(feats.DatapathID)

	s := d.sessions.create(sw, newWireConn(conn, d.reg))
	for i := range feats.Ports {
		p := &feats.Ports[i]
		if p.Usable() {
			d.topo.AddPort(sw, topology.PortId(p.PortNo))
		}
	}

	for _, ev := range d.trans.onConnect(sw, &feats) {
		d.events <- ev
	}

	defer func() {
		d.sessions.remove(sw)
		d.reg.abandonSwitch(sw)
		for _, ev := range d.trans.onDisconnect(sw, d.topo) {
			d.events <- ev
		}
		d.topo.RemoveSwitch(sw)
	}()

	for {
		req, err := conn.Receive()
		if err != nil {
			return
		}
		d.handleMessage(s, req)
	}
}

func (d *Driver) handleMessage(s *session, req *of.Request) {
	switch req.Header.Type {
	case ofp10.TypePacketIn:
		var pi ofp10.PacketIn
		if _, err := pi.ReadFrom(req.Body); err != nil {
			d.log.Err().Err(err).Log("failed to decode packet-in")
			return
		}
		result, err := evaluatePacketIn(d.evaluator, s.id, s.compiledLocal, &pi, d.log)
		if err != nil {
			d.log.Err().Err(err).Log("packet-in evaluation failed")
			return
		}
		for _, po := range result.outbound {
			select {
			case d.outbound <- outboundMsg{sw: s.id, po: po}:
			default:
				d.log.Err().Log("outbound queue full, dropping packet-out")
			}
		}
		for _, ev := range result.events {
			d.events <- ev
		}

	case ofp10.TypePortStatus:
		var ps ofp10.PortStatus
		if _, err := ps.ReadFrom(req.Body); err != nil {
			d.log.Err().Err(err).Log("failed to decode port status")
			return
		}
		switch ps.Reason {
		case ofp10.PortDelete:
			d.topo.RemovePort(s.id, topology.PortId(ps.Desc.PortNo))
		default:
			if ps.Desc.Usable() {
				d.topo.AddPort(s.id, topology.PortId(ps.Desc.PortNo))
			} else {
				d.topo.RemovePort(s.id, topology.PortId(ps.Desc.PortNo))
			}
		}
		for _, ev := range d.trans.onPortStatus(s.id, &ps) {
			d.events <- ev
		}

	case ofp10.TypeBarrierReply:
		d.trans.onBarrierReply(d.reg, req.Header.XID)

	default:
		d.trans.onOther(req.Header.Type)
	}
}

// runOutbound is the single consumer loop serialising packet-outs to
// their switch (§4.7: "a single outbound writer serialises packet-outs;
// its consumer loop sends them to the correct switch, logging any
// per-send failure without aborting").
func (d *Driver) runOutbound() {
	for msg := range d.outbound {
		s, ok := d.sessions.get(msg.sw)
		if !ok {
			continue
		}
		if err := s.conn.sendPacketOut(msg.po); err != nil {
			d.log.Err().Uint64("dpid", uint64(msg.sw)).Err(err).Log("packet-out send failed")
		}
	}
}

// runEventLoop is the single, non-reentrant event handler loop (§4.7,
// §5: "the event handler is not re-entered: a new event is dequeued only
// after the previous handler's returned completion resolves").
func (d *Driver) runEventLoop() {
	for ev := range d.events {
		d.dispatch(ev)
	}
}

func (d *Driver) dispatch(ev Event) {
	p, ok := d.handler(ev)
	if !ok {
		if ev.Kind == SwitchUp {
			d.installDefault(ev.Switch)
		}
		return
	}
	d.applyUpdate(p)
}

// installDefault best-effort installs the configured default policy on a
// single freshly connected switch (§4.7: "if no policy is returned but
// the event is SwitchUp, the updater installs the default policy on that
// single switch").
func (d *Driver) installDefault(sw topology.SwitchId) {
	s, ok := d.sessions.get(sw)
	if !ok {
		return
	}
	table, err := d.compiler.Compile(sw, d.defaultP)
	if err != nil {
		d.best.log.Err().Err(err).Log("default policy compile failed")
		return
	}
	if err := bestEffortUpdate(s.conn, table); err != nil {
		d.best.log.Err().Uint64("dpid", uint64(sw)).Err(err).Log("default policy install failed")
		return
	}
	s.compiledLocal = d.defaultP
}

// applyUpdate pushes p to every currently connected switch through the
// configured updater (§4.7: "if a policy is returned, the configured
// updater is invoked across all currently connected switches").
func (d *Driver) applyUpdate(p policy.Policy) {
	sessions := d.sessions.all()

	switch d.cfg.Mode {
	case PerPacketConsistent:
		d.updater.Update(sessions, d.topo, d.compiler, p)
	default:
		for _, s := range sessions {
			table, err := d.compiler.Compile(s.id, p)
			if err != nil {
				d.best.log.Err().Err(err).Log("policy compile failed")
				continue
			}
			if err := bestEffortUpdate(s.conn, table); err != nil {
				d.best.log.Err().Uint64("dpid", uint64(s.id)).Err(err).Log("best-effort update failed")
				continue
			}
		}
	}

	for _, s := range sessions {
		s.compiledLocal = p
	}
}
