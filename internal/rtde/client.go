package rtde

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"firestige.xyz/rtde/internal/log"
	"firestige.xyz/rtde/internal/metrics"
)

// ConnectionState is the session lifecycle position. Transitions only move
// forward (connect → negotiate → setup → start) except the streaming/paused
// toggle; any state drops back to StateDisconnected on Disconnect or an
// unrecoverable error.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnected
	StateNegotiated
	StateRecipesSet
	StateStreaming
	StatePaused
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateNegotiated:
		return "negotiated"
	case StateRecipesSet:
		return "recipes_set"
	case StateStreaming:
		return "streaming"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

// UnknownPackagePolicy decides what happens when a frame with an
// unrecognized command byte arrives while streaming.
type UnknownPackagePolicy int

const (
	// UnknownFail treats an unrecognized command as a protocol violation
	// and kills the session. The default.
	UnknownFail UnknownPackagePolicy = iota
	// UnknownSkip logs and drops the frame.
	UnknownSkip
)

// DefaultOutputFrequency is the data package rate requested with an output
// recipe when the caller does not override it.
const DefaultOutputFrequency = 125.0

// receiveChunkSize is how much the engine asks the transport for per read.
const receiveChunkSize = 4096

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the stock TCP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithUnknownPackagePolicy sets the handling of unrecognized stream frames.
func WithUnknownPackagePolicy(p UnknownPackagePolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithOutputFrequency sets the data package rate requested at output setup.
func WithOutputFrequency(hz float64) Option {
	return func(c *Client) { c.frequency = hz }
}

// Client drives one RTDE session against a controller. It is synchronous
// and single-threaded by contract: at most one request is outstanding on
// the transport at a time, and concurrent use requires external
// serialization by the caller.
type Client struct {
	addr      string
	transport Transport
	policy    UnknownPackagePolicy
	frequency float64
	log       log.Logger

	state           ConnectionState
	protocolVersion uint16

	outputRecipe *Recipe
	outputID     uint8
	inputRecipe  *Recipe
	inputID      uint8

	// rbuf collects raw transport bytes until a whole frame is available.
	rbuf []byte
}

// NewClient returns a disconnected client for the controller at addr
// (host:port).
func NewClient(addr string, opts ...Option) *Client {
	c := &Client{
		addr:      addr,
		transport: NewTCPTransport(),
		frequency: DefaultOutputFrequency,
		state:     StateDisconnected,
		log:       log.GetLogger().WithField("component", "rtde"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current session state.
func (c *Client) State() ConnectionState { return c.state }

// ProtocolVersion returns the negotiated version, zero before negotiation.
func (c *Client) ProtocolVersion() uint16 { return c.protocolVersion }

func (c *Client) setState(s ConnectionState) {
	c.state = s
	metrics.SessionState.Set(float64(s))
}

func (c *Client) guard(op string, allowed ...ConnectionState) error {
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not allowed in state %s", ErrProtocol, op, c.state)
}

// fail marks the session unusable: the transport is closed, session state
// is dropped and the triggering error is passed through.
func (c *Client) fail(err error) error {
	c.log.WithError(err).Error("session unusable, disconnecting")
	metrics.SessionFailuresTotal.Inc()
	c.transport.Close()
	c.reset()
	return err
}

func (c *Client) reset() {
	c.setState(StateDisconnected)
	c.protocolVersion = 0
	c.outputRecipe, c.inputRecipe = nil, nil
	c.outputID, c.inputID = 0, 0
	c.rbuf = nil
}

// Connect opens the transport. Valid only when disconnected.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.guard("connect", StateDisconnected); err != nil {
		return err
	}
	if err := c.transport.Open(ctx, c.addr); err != nil {
		return err
	}
	c.rbuf = nil
	c.setState(StateConnected)
	c.log.WithField("addr", c.addr).Info("connected to controller")
	return nil
}

// Disconnect releases the transport unconditionally and drops all session
// state. Idempotent; safe to call from any state including after errors.
func (c *Client) Disconnect() error {
	err := c.transport.Close()
	if c.state != StateDisconnected {
		c.log.Info("disconnected")
	}
	c.reset()
	return err
}

// Negotiate requests the given protocol version. A refusal is a protocol
// error that leaves the session connected so the caller may retry with a
// different version.
func (c *Client) Negotiate(ctx context.Context, version uint16) error {
	if err := c.guard("negotiate", StateConnected); err != nil {
		return err
	}

	payload := binary.BigEndian.AppendUint16(nil, version)
	reply, err := c.request(ctx, CmdRequestProtocolVersion, payload)
	if err != nil {
		return err
	}
	accepted, err := decodeAccepted(reply)
	if err != nil {
		return c.fail(err)
	}
	if !accepted {
		return fmt.Errorf("%w: controller refused protocol version %d", ErrProtocol, version)
	}

	c.protocolVersion = version
	c.setState(StateNegotiated)
	c.log.WithField("version", version).Info("protocol version negotiated")
	return nil
}

// ControllerVersion queries the controller's software version.
// Informational; does not change state. Valid in any connected state.
func (c *Client) ControllerVersion(ctx context.Context) (ControllerVersion, error) {
	if c.state == StateDisconnected {
		return ControllerVersion{}, fmt.Errorf("%w: controller version query while disconnected", ErrProtocol)
	}

	reply, err := c.request(ctx, CmdGetControllerVersion, nil)
	if err != nil {
		return ControllerVersion{}, err
	}
	v, err := decodeControllerVersion(reply)
	if err != nil {
		return ControllerVersion{}, c.fail(err)
	}
	if v.before(minimumControllerVersion) {
		c.log.Warnf("controller %s is older than supported minimum %s", v, minimumControllerVersion)
	}
	c.log.WithField("controller", v.String()).Info("controller version")
	return v, nil
}

// SetupOutputs registers the controller→client recipe. The request carries
// the desired output frequency and the comma-joined field names; the reply
// assigns the recipe id and echoes the controller-side type per field,
// which must match the recipe's declared types. A rejected field is a
// protocol error that leaves the session state unchanged.
func (c *Client) SetupOutputs(ctx context.Context, r *Recipe) error {
	if err := c.guard("output setup", StateNegotiated, StateRecipesSet); err != nil {
		return err
	}
	if r.Direction() != DirectionOutput {
		return fmt.Errorf("%w: %s recipe passed to output setup", ErrConfig, r.Direction())
	}

	payload := binary.BigEndian.AppendUint64(nil, math.Float64bits(c.frequency))
	payload = append(payload, strings.Join(r.Names(), ",")...)

	id, err := c.setupRecipe(ctx, CmdSetupOutputs, payload, r)
	if err != nil {
		return err
	}
	c.outputRecipe, c.outputID = r, id
	c.setState(StateRecipesSet)
	c.log.WithFields(map[string]interface{}{"recipe": id, "fields": len(r.Fields())}).Info("output recipe registered")
	return nil
}

// SetupInputs registers the client→controller recipe. Same contract as
// SetupOutputs, minus the frequency.
func (c *Client) SetupInputs(ctx context.Context, r *Recipe) error {
	if err := c.guard("input setup", StateNegotiated, StateRecipesSet); err != nil {
		return err
	}
	if r.Direction() != DirectionInput {
		return fmt.Errorf("%w: %s recipe passed to input setup", ErrConfig, r.Direction())
	}

	id, err := c.setupRecipe(ctx, CmdSetupInputs, []byte(strings.Join(r.Names(), ",")), r)
	if err != nil {
		return err
	}
	c.inputRecipe, c.inputID = r, id
	c.setState(StateRecipesSet)
	c.log.WithFields(map[string]interface{}{"recipe": id, "fields": len(r.Fields())}).Info("input recipe registered")
	return nil
}

func (c *Client) setupRecipe(ctx context.Context, cmd byte, payload []byte, r *Recipe) (uint8, error) {
	replyBytes, err := c.request(ctx, cmd, payload)
	if err != nil {
		return 0, err
	}
	reply, err := decodeSetupReply(replyBytes)
	if err != nil {
		return 0, c.fail(err)
	}
	if len(reply.types) != len(r.fields) {
		return 0, c.fail(fmt.Errorf("%w: setup reply lists %d types for %d fields", ErrProtocol, len(reply.types), len(r.fields)))
	}
	if bad := reply.rejected(); len(bad) > 0 {
		names := make([]string, len(bad))
		for i, idx := range bad {
			names[i] = fmt.Sprintf("%s (%s)", r.fields[idx].Name, reply.types[idx])
		}
		return 0, fmt.Errorf("%w: controller rejected fields: %s", ErrProtocol, strings.Join(names, ", "))
	}
	for i, f := range r.fields {
		if reply.types[i] != f.Type.String() {
			return 0, fmt.Errorf("%w: field %q declared %s but controller reports %s",
				ErrProtocol, f.Name, f.Type, reply.types[i])
		}
	}
	return reply.id, nil
}

// Start begins streaming. Valid only once at least one recipe is
// registered; a refusal leaves the session state unchanged.
func (c *Client) Start(ctx context.Context) error {
	if err := c.guard("start", StateRecipesSet); err != nil {
		return err
	}
	if err := c.control(ctx, CmdStart); err != nil {
		return err
	}
	c.setState(StateStreaming)
	c.log.Info("synchronization started")
	return nil
}

// Pause suspends streaming.
func (c *Client) Pause(ctx context.Context) error {
	if err := c.guard("pause", StateStreaming); err != nil {
		return err
	}
	if err := c.control(ctx, CmdPause); err != nil {
		return err
	}
	c.setState(StatePaused)
	c.log.Info("synchronization paused")
	return nil
}

// Resume restarts streaming after Pause.
func (c *Client) Resume(ctx context.Context) error {
	if err := c.guard("resume", StatePaused); err != nil {
		return err
	}
	if err := c.control(ctx, CmdStart); err != nil {
		return err
	}
	c.setState(StateStreaming)
	c.log.Info("synchronization resumed")
	return nil
}

func (c *Client) control(ctx context.Context, cmd byte) error {
	reply, err := c.request(ctx, cmd, nil)
	if err != nil {
		return err
	}
	accepted, err := decodeAccepted(reply)
	if err != nil {
		return c.fail(err)
	}
	if !accepted {
		return fmt.Errorf("%w: controller refused %s", ErrProtocol, commandName(cmd))
	}
	return nil
}

// ReceiveData reads the next data package and decodes it with the active
// output recipe. Text messages arriving first are consumed and logged.
// The context deadline bounds the wait; expiry returns ErrTimeout with the
// session state unchanged.
func (c *Client) ReceiveData(ctx context.Context) (map[string]any, error) {
	if err := c.guard("receive", StateStreaming, StatePaused); err != nil {
		return nil, err
	}
	if c.outputRecipe == nil {
		return nil, fmt.Errorf("%w: no output recipe registered for incoming data", ErrProtocol)
	}

	for {
		hdr, payload, err := c.readFrame(ctx)
		if err != nil {
			return nil, err
		}

		switch hdr.Command {
		case CmdDataPackage:
			if len(payload) < 1 {
				return nil, c.fail(fmt.Errorf("%w: data package without recipe id", ErrProtocol))
			}
			if payload[0] != c.outputID {
				return nil, c.fail(fmt.Errorf("%w: data package for recipe %d, active output recipe is %d",
					ErrProtocol, payload[0], c.outputID))
			}
			values, err := DecodeFields(c.outputRecipe, payload[1:])
			if err != nil {
				return nil, c.fail(err)
			}
			metrics.DataPackagesReceivedTotal.Inc()
			return values, nil

		case CmdTextMessage:
			c.consumeTextMessage(payload)

		default:
			if c.policy == UnknownSkip {
				c.log.WithField("command", commandName(hdr.Command)).Warn("skipping unexpected frame")
				metrics.FramesSkippedTotal.WithLabelValues(commandName(hdr.Command)).Inc()
				continue
			}
			return nil, c.fail(fmt.Errorf("%w: unexpected %s frame while streaming", ErrProtocol, commandName(hdr.Command)))
		}
	}
}

// SendInput encodes values with the active input recipe and writes one
// data package. The recipe and every recipe field must be present.
func (c *Client) SendInput(values map[string]any) error {
	if err := c.guard("send input", StateStreaming, StatePaused); err != nil {
		return err
	}
	if c.inputRecipe == nil {
		return fmt.Errorf("%w: no input recipe registered", ErrSerialization)
	}

	body, err := EncodeFields(c.inputRecipe, values)
	if err != nil {
		return err
	}
	payload := append([]byte{c.inputID}, body...)
	pkt, err := EncodePacket(CmdDataPackage, payload)
	if err != nil {
		return err
	}
	if err := c.transport.Send(pkt); err != nil {
		return c.fail(err)
	}
	metrics.DataPackagesSentTotal.Inc()
	return nil
}

// SendMessage writes a text message to the controller. Valid in any
// connected state.
func (c *Client) SendMessage(message, source string, level uint8) error {
	if c.state == StateDisconnected {
		return fmt.Errorf("%w: send message while disconnected", ErrProtocol)
	}
	payload, err := encodeTextMessage(TextMessage{Level: level, Message: message, Source: source})
	if err != nil {
		return err
	}
	pkt, err := EncodePacket(CmdTextMessage, payload)
	if err != nil {
		return err
	}
	if err := c.transport.Send(pkt); err != nil {
		return c.fail(err)
	}
	return nil
}

// request sends one packet and waits for the matching reply type.
// Text messages are consumed transparently; stale data packages still in
// flight from an active stream are drained.
func (c *Client) request(ctx context.Context, cmd byte, payload []byte) ([]byte, error) {
	pkt, err := EncodePacket(cmd, payload)
	if err != nil {
		return nil, err
	}
	if err := c.transport.Send(pkt); err != nil {
		return nil, c.fail(err)
	}

	for {
		hdr, body, err := c.readFrame(ctx)
		if err != nil {
			return nil, err
		}

		switch {
		case hdr.Command == cmd:
			return body, nil

		case hdr.Command == CmdTextMessage:
			c.consumeTextMessage(body)

		case hdr.Command == CmdDataPackage && (c.state == StateStreaming || c.state == StatePaused):
			// In-flight stream data racing a control request.
			c.log.Debug("draining data package while awaiting control reply")
			metrics.FramesSkippedTotal.WithLabelValues(commandName(hdr.Command)).Inc()

		default:
			if c.policy == UnknownSkip {
				c.log.WithField("command", commandName(hdr.Command)).Warn("skipping unexpected frame")
				metrics.FramesSkippedTotal.WithLabelValues(commandName(hdr.Command)).Inc()
				continue
			}
			return nil, c.fail(fmt.Errorf("%w: expected %s reply, got %s",
				ErrProtocol, commandName(cmd), commandName(hdr.Command)))
		}
	}
}

func (c *Client) consumeTextMessage(payload []byte) {
	m, err := decodeTextMessage(payload)
	if err != nil {
		c.log.WithError(err).Warn("discarding malformed text message")
		return
	}
	entry := c.log.WithField("source", m.Source)
	switch m.Level {
	case MessageException, MessageError:
		metrics.ControllerMessagesTotal.WithLabelValues("error").Inc()
		entry.Error(m.Message)
	case MessageWarning:
		metrics.ControllerMessagesTotal.WithLabelValues("warning").Inc()
		entry.Warn(m.Message)
	default:
		metrics.ControllerMessagesTotal.WithLabelValues("info").Inc()
		entry.Info(m.Message)
	}
}

// readFrame returns the next whole frame, coalescing partial transport
// reads. Timeouts leave the session intact; malformed frames and transport
// failures kill it.
func (c *Client) readFrame(ctx context.Context) (PacketHeader, []byte, error) {
	deadline, _ := ctx.Deadline()

	for {
		if len(c.rbuf) >= HeaderSize {
			hdr, err := DecodePacketHeader(c.rbuf)
			if err != nil {
				return PacketHeader{}, nil, c.fail(err)
			}
			if len(c.rbuf) >= hdr.TotalSize {
				payload := append([]byte(nil), c.rbuf[HeaderSize:hdr.TotalSize]...)
				c.rbuf = append(c.rbuf[:0], c.rbuf[hdr.TotalSize:]...)
				return hdr, payload, nil
			}
		}

		if err := ctx.Err(); err != nil {
			return PacketHeader{}, nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}

		chunk := make([]byte, receiveChunkSize)
		n, err := c.transport.Receive(chunk, deadline)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				return PacketHeader{}, nil, err
			}
			return PacketHeader{}, nil, c.fail(err)
		}
		c.rbuf = append(c.rbuf, chunk[:n]...)
	}
}
