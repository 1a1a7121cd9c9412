// Package driver is the top-level façade of spec.md §6: Open/RegisterWatcher/
// SetValue/GetValue/RefreshValue/EnablePolling/WriteConfig/Close, wiring
// together the transport, frame codec, transmit engine, send queue, node
// table, command-class registry, notification bus and the polling/timer/DNS
// auxiliary threads described in §5. Grounded on the teacher's
// cs104.NewClient/Client.Start/Client.run lifecycle shape: one constructor
// taking the collaborators, one Open that starts every owned goroutine, one
// Close that tears them all down idempotently.
package driver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-zwave/zwave/ccreg"
	"github.com/go-zwave/zwave/ccreg/classes"
	"github.com/go-zwave/zwave/clog"
	"github.com/go-zwave/zwave/dnslookup"
	"github.com/go-zwave/zwave/engine"
	"github.com/go-zwave/zwave/frame"
	"github.com/go-zwave/zwave/msg"
	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/notify"
	"github.com/go-zwave/zwave/persistence"
	"github.com/go-zwave/zwave/poll"
	"github.com/go-zwave/zwave/queue"
	"github.com/go-zwave/zwave/timer"
	"github.com/go-zwave/zwave/transport"
	"github.com/go-zwave/zwave/value"

	"github.com/google/uuid"
)

// Config holds everything Open needs beyond the transport URI, per
// spec.md §6's open(transport_uri, config_path, user_path).
type Config struct {
	ConfigPath string
	UserPath   string
	PollPeriod time.Duration
}

// DefaultConfig returns a Config with a conservative poll period and no
// persistence paths set.
func DefaultConfig() Config {
	return Config{PollPeriod: 5 * time.Second}
}

// Valid reports whether c can be used to Open a Driver.
func (c Config) Valid() error {
	if c.PollPeriod <= 0 {
		return fmt.Errorf("driver: PollPeriod must be positive")
	}
	return nil
}

// Driver is the top-level façade.
type Driver struct {
	clog.Clog

	cfg    Config
	homeID uint32
	ownID  uint8

	transport transport.Transport
	q         *queue.Queue
	eng       *engine.Engine
	classes   *ccreg.Registry
	bus       *notify.Bus
	pollT     *poll.Thread
	timerT    *timer.Thread
	dnsT      *dnslookup.Thread

	mu    sync.RWMutex
	nodes map[uint8]*node.Node

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns an unopened Driver. cfg is validated by Open.
func New(cfg Config) *Driver {
	reg := ccreg.NewRegistry()
	reg.Register(classes.SwitchBinary{})
	reg.Register(classes.SwitchMultilevel{})
	reg.Register(classes.SensorMultilevel{})
	reg.Register(classes.WakeUp{})
	reg.Register(classes.Configuration{})
	reg.Register(classes.ManufacturerSpecific{})
	reg.Register(classes.Version{})

	return &Driver{
		Clog:    clog.NewLogger("driver => "),
		cfg:     cfg,
		classes: reg,
		nodes:   make(map[uint8]*node.Node),
	}
}

// Open parses transportURI ("serial:/dev/ttyUSB0" or "tcp:host:port"),
// starts the transmit engine and auxiliary threads, and loads the
// persisted snapshot at cfg.ConfigPath, if one is set and exists
// (spec.md §4.10). The snapshot is loaded before the controller reports
// its HomeId, and its HomeId is not checked against the controller's.
func (d *Driver) Open(ctx context.Context, transportURI string) error {
	if err := d.cfg.Valid(); err != nil {
		return err
	}
	if d.transport != nil {
		return ErrAlreadyOpen
	}

	t, err := parseTransportURI(transportURI)
	if err != nil {
		return err
	}
	if err := t.Open(ctx); err != nil {
		return fmt.Errorf("driver: open transport: %w", err)
	}
	d.transport = t

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.bus = notify.NewBus(128)
	d.q = queue.New(d.isAsleep)
	d.eng = engine.New(t, d.q, d.handleReport)
	d.eng.Start(d.ctx)

	d.timerT = timer.New()
	d.dnsT = dnslookup.New(d.handleDNSResult)

	pollT, err := poll.New(d.cfg.PollPeriod, d.handlePollRequest, d.allNodesComplete)
	if err != nil {
		return fmt.Errorf("driver: start poll thread: %w", err)
	}
	d.pollT = pollT
	d.pollT.Start()

	if d.cfg.ConfigPath != "" {
		if err := d.loadSnapshot(); err != nil {
			d.Warn("failed to load persisted snapshot: %v", err)
		}
	}

	d.sendGetInitData()

	d.bus.Post(notify.Notification{Kind: notify.DriverReady, HomeID: d.homeID})
	return nil
}

// sendGetInitData asks the controller which nodes it currently knows about
// and what HomeId it's running. The reply is correlated by function id in
// handleReport rather than through the engine's WaitingForReply phase,
// the same way an unsolicited ApplicationCommandHandler or WakeUp
// notification is recognized — there is no per-node callback to match.
func (d *Driver) sendGetInitData() {
	f := frame.Frame{Type: frame.TypeRequest, Payload: buildGetInitData()}
	m := msg.New(0, msg.PriorityImmediate, f, 3)
	d.q.Push(m)
}

func (d *Driver) isAsleep(nodeID uint8) bool {
	d.mu.RLock()
	n, ok := d.nodes[nodeID]
	d.mu.RUnlock()
	if !ok {
		return false
	}
	return n.IsAsleep()
}

func parseTransportURI(uri string) (transport.Transport, error) {
	switch {
	case strings.HasPrefix(uri, "serial:"):
		return transport.NewSerial(strings.TrimPrefix(uri, "serial:")), nil
	case strings.HasPrefix(uri, "tcp:"):
		return transport.NewTCP(strings.TrimPrefix(uri, "tcp:")), nil
	case strings.HasPrefix(uri, "noise+tcp:"):
		return transport.NewEncryptedTCP(strings.TrimPrefix(uri, "noise+tcp:")), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadTransport, uri)
	}
}

// RegisterWatcher registers fn to receive every Notification posted after
// this call, returning a token for Unregister.
func (d *Driver) RegisterWatcher(fn notify.Watcher) uuid.UUID {
	return d.bus.Register(fn)
}

// UnregisterWatcher removes a watcher previously registered via
// RegisterWatcher.
func (d *Driver) UnregisterWatcher(token uuid.UUID) {
	d.bus.Unregister(token)
}

// AddNode registers a freshly discovered node and starts driving its
// discovery pipeline. homeID is learned once and applied to every node;
// calling AddNode before any node is known is how it gets set.
func (d *Driver) AddNode(homeID uint32, nodeID uint8) *node.Node {
	d.mu.Lock()
	if d.homeID == 0 {
		d.homeID = homeID
	}
	n, exists := d.nodes[nodeID]
	if !exists {
		n = node.New(homeID, nodeID, d.makeWatcher(nodeID))
		d.nodes[nodeID] = n
	}
	d.mu.Unlock()

	if !exists {
		d.bus.Post(notify.Notification{Kind: notify.NodeAdded, HomeID: homeID, NodeID: nodeID})
		go d.runDiscovery(n)
	}
	return n
}

func (d *Driver) makeWatcher(nodeID uint8) value.WatchFunc {
	return func(id value.ID, v *value.Value) {
		d.bus.Post(notify.Notification{Kind: notify.ValueChanged, HomeID: id.HomeID(), NodeID: nodeID, ValueID: id})
	}
}

// GetValue returns the current committed reading for id, if any.
func (d *Driver) GetValue(id value.ID) (any, bool) {
	n, ok := d.nodeFor(id)
	if !ok {
		return nil, false
	}
	v, ok := n.Values.Get(id)
	if !ok {
		return nil, false
	}
	return v.Current()
}

func (d *Driver) nodeFor(id value.ID) (*node.Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id.NodeID()]
	return n, ok
}

// SetValue enqueues a Set for id and returns immediately; the device's
// confirming report is what ultimately commits the change (spec.md §9).
func (d *Driver) SetValue(id value.ID, newValue any) error {
	n, ok := d.nodeFor(id)
	if !ok {
		return ErrUnknownNode
	}
	class, ok := d.classes.Lookup(id.CommandClass())
	if !ok {
		return ErrUnknownClass
	}
	support, _ := n.Class(id.CommandClass())
	ccPayload, err := class.BuildSet(support.Version, id.Instance(), newValue)
	if err != nil {
		return err
	}
	if v, ok := n.Values.Get(id); ok {
		v.RequestSet(newValue)
	}
	return d.sendToNode(n.NodeID, msg.PriorityCommand, ccPayload, true)
}

// RefreshValue issues a Get for id's command class/instance.
func (d *Driver) RefreshValue(id value.ID) error {
	n, ok := d.nodeFor(id)
	if !ok {
		return ErrUnknownNode
	}
	class, ok := d.classes.Lookup(id.CommandClass())
	if !ok {
		return ErrUnknownClass
	}
	support, _ := n.Class(id.CommandClass())
	ccPayload := class.BuildGet(support.Version, id.Instance())
	return d.sendToNode(n.NodeID, msg.PriorityCommand, ccPayload, true)
}

// EnablePolling registers id for periodic refresh at the given intensity
// (spec.md §4.7, §8 scenario 6).
func (d *Driver) EnablePolling(id value.ID, intensity uint32) {
	d.pollT.Enable(poll.Target{
		NodeID: id.NodeID(), ClassID: id.CommandClass(), Instance: id.Instance(), Index: id.Index(),
		Intensity: intensity,
	})
	d.bus.Post(notify.Notification{Kind: notify.PollingEnabled, HomeID: id.HomeID(), NodeID: id.NodeID(), ValueID: id})
}

// WriteConfig serialises every known node and value to cfg.ConfigPath
// (spec.md §4.10).
func (d *Driver) WriteConfig() error {
	if d.cfg.ConfigPath == "" {
		return fmt.Errorf("driver: no ConfigPath configured")
	}
	d.mu.RLock()
	nodes := make([]*node.Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		nodes = append(nodes, n)
	}
	homeID := d.homeID
	d.mu.RUnlock()

	snapshot := persistence.FromNodes(homeID, nodes)
	return persistence.WriteFile(d.cfg.ConfigPath, snapshot)
}

func (d *Driver) loadSnapshot() error {
	snapshot, err := persistence.ReadFile(d.cfg.ConfigPath)
	if err != nil || snapshot == nil {
		return err
	}
	if snapshot.HomeID != "" {
		homeID, err := persistence.ParseHomeID(snapshot.HomeID)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.homeID = homeID
		d.mu.Unlock()
	}
	for _, pn := range snapshot.Nodes {
		n := d.AddNode(d.homeID, pn.ID)
		persistence.ApplyCacheLoad(n, pn)
		n.SetStage(nodeStageAfterCacheLoad)
	}
	return nil
}

// Close stops every owned thread and closes the transport. Idempotent.
func (d *Driver) Close() error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.eng != nil {
		d.eng.Stop()
	}
	if d.pollT != nil {
		_ = d.pollT.Stop(context.Background())
	}
	if d.timerT != nil {
		d.timerT.Stop()
	}
	if d.dnsT != nil {
		d.dnsT.Stop()
	}
	if d.bus != nil {
		d.bus.Close()
	}
	if d.transport != nil {
		return d.transport.Close()
	}
	return nil
}

func (d *Driver) sendToNode(nodeID uint8, priority msg.Priority, ccPayload []byte, expectAck bool) error {
	cbID := nextCallbackID()
	payload := buildSendData(nodeID, ccPayload, cbID)
	f := frame.Frame{Type: frame.TypeRequest, Payload: payload}
	m := msg.New(nodeID, priority, f, 3)
	m.WithCallback(cbID)
	errCh := make(chan error, 1)
	m.Callback = func(err error) { errCh <- err }
	d.q.Push(m)

	select {
	case err := <-errCh:
		return err
	case <-d.ctx.Done():
		return d.ctx.Err()
	}
}

func (d *Driver) handlePollRequest(t poll.Target) error {
	n, ok := d.nodeFor(value.NewID(d.homeID, t.NodeID, 0, t.ClassID, t.Instance, t.Index, 0))
	if !ok {
		return ErrUnknownNode
	}
	class, ok := d.classes.Lookup(t.ClassID)
	if !ok {
		return ErrUnknownClass
	}
	support, _ := n.Class(t.ClassID)
	return d.sendToNodeAsync(n.NodeID, msg.PriorityPoll, class.BuildGet(support.Version, t.Instance))
}

func (d *Driver) sendToNodeAsync(nodeID uint8, priority msg.Priority, ccPayload []byte) error {
	cbID := nextCallbackID()
	payload := buildSendData(nodeID, ccPayload, cbID)
	f := frame.Frame{Type: frame.TypeRequest, Payload: payload}
	m := msg.New(nodeID, priority, f, 3)
	m.WithCallback(cbID)
	d.q.Push(m)
	return nil
}

func (d *Driver) allNodesComplete() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, n := range d.nodes {
		if n.Stage() != node.StageComplete {
			return false
		}
	}
	return true
}

func (d *Driver) handleDNSResult(l dnslookup.Lookup) {
	d.bus.Post(notify.Notification{Kind: notify.DnsResult, NodeID: l.NodeID, Detail: l.Result})
}

// handleReport is the engine's ReportHandler: every unsolicited data frame
// not consumed as an in-flight message's ACK/callback/reply lands here.
func (d *Driver) handleReport(f frame.Frame) {
	if f.FunctionID() == funcSerialAPIGetInitData {
		d.handleInitDataResponse(f.Payload)
		return
	}

	nodeID, ccPayload, err := parseApplicationCommand(f.Payload)
	if err != nil {
		return
	}
	if len(ccPayload) < 1 {
		return
	}
	classID := ccPayload[0]
	class, ok := d.classes.Lookup(classID)
	if !ok {
		return
	}
	n, ok := d.nodeFor(value.NewID(d.homeID, nodeID, 0, classID, 0, 0, 0))
	if !ok {
		return
	}
	support, _ := n.Class(classID)

	if wakeUp, ok := class.(classes.WakeUp); ok && wakeUp.IsNotification(ccPayload[1:]) {
		n.SetAwake(true)
		d.q.Release(nodeID)
		d.bus.Post(notify.Notification{Kind: notify.Group, HomeID: d.homeID, NodeID: nodeID, Detail: "WakeUp"})
		// Give the messages Release just queued a grace period to actually
		// go out (they outrank PriorityWakeUp, so they will, but a node
		// that's still mid radio-wakeup benefits from not being hit with
		// NoMoreInformation the instant it announces itself) before telling
		// it to go back to sleep — the timer thread's wake-up scheduling.
		d.timerT.After(wakeUpNoMoreInfoDelay, func() {
			_ = d.sendToNodeAsync(nodeID, msg.PriorityWakeUp, classes.WakeUp{}.BuildNoMoreInformation())
		})
		return
	}

	refresh, err := class.HandleReport(n, support.Version, 1, ccPayload[1:])
	if err != nil {
		d.Warn("dispatch failed for node=%d class=0x%02x: %v", nodeID, classID, err)
		return
	}
	if refresh {
		_ = d.sendToNodeAsync(nodeID, msg.PriorityCommand, class.BuildGet(support.Version, 1))
	}

	if _, ok := class.(classes.ManufacturerSpecific); ok {
		d.lookupProductConfig(n)
	}
}

// lookupProductConfig submits a DNS TXT lookup for the product config file
// matching a node's manufacturer/product id triple, the one consumer of
// the DNS auxiliary thread in this driver (spec.md §4.9): once
// ManufacturerSpecific's report has landed, the ids it stored resolve the
// query the same way the original implementation indexed its product
// database.
func (d *Driver) lookupProductConfig(n *node.Node) {
	var ms classes.ManufacturerSpecific
	manufacturerID, ok := n.Values.Get(ms.ManufacturerIDValue(n))
	if !ok {
		return
	}
	productType, ok := n.Values.Get(ms.ProductTypeValue(n))
	if !ok {
		return
	}
	productID, ok := n.Values.Get(ms.ProductIDValue(n))
	if !ok {
		return
	}
	mID, _ := manufacturerID.Current()
	pType, _ := productType.Current()
	pID, _ := productID.Current()
	query := fmt.Sprintf("%04x.%04x.%04x.products.zwave.me", mID, pType, pID)
	d.dnsT.SendRequest(n.NodeID, query)
}

// handleInitDataResponse learns the network's HomeId from the controller's
// first SerialApiGetInitData reply and registers every node id it lists,
// driving each through discovery (spec.md §8 scenario 5). The controller
// itself (always node id 1 in this reply) is registered like any other
// node, and its discovery pipeline sends the same stage queries.
func (d *Driver) handleInitDataResponse(payload []byte) {
	homeID, nodeIDs, err := parseInitDataResponse(payload)
	if err != nil {
		d.Warn("failed to parse SerialApiGetInitData reply: %v", err)
		return
	}

	d.mu.Lock()
	if d.homeID == 0 {
		d.homeID = homeID
	}
	d.mu.Unlock()

	for _, nodeID := range nodeIDs {
		d.AddNode(homeID, nodeID)
	}
}

// wakeUpNoMoreInfoDelay is how long the timer thread waits after a node's
// WakeUp notification before sending NoMoreInformation, giving its
// released queue traffic a chance to actually transmit first.
const wakeUpNoMoreInfoDelay = 100 * time.Millisecond

// nodeStageAfterCacheLoad is the stage a restored node resumes from: the
// pipeline still runs Associations onward fresh, since group membership
// and neighbor tables are not captured by the snapshot schema.
const nodeStageAfterCacheLoad = node.StageCacheLoad
