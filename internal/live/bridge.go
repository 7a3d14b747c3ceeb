package live

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/mrac/internal/control"
)

const readBuffer = 2048

// Sender writes datagrams to a fixed peer. A Sender with no address drops
// everything.
type Sender struct {
	conn net.Conn
}

func NewSender(addr string) (*Sender, error) {
	if addr == "" {
		return &Sender{}, nil
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", addr)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return &Sender{conn: conn}, nil
}

func (s *Sender) Send(payload []byte) error {
	if s == nil || s.conn == nil {
		return nil
	}
	_, err := s.conn.Write(payload)
	return err
}

func (s *Sender) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Options configures a Bridge.
type Options struct {
	Wrench    *Sender
	Reference *Sender
	Clock     clock.Clock
	// StaleAfter triggers a warning when no state arrives for that long;
	// zero disables the watchdog.
	StaleAfter time.Duration
	Logger     *zap.SugaredLogger
}

// Bridge feeds datagrams into a controller. Both listeners share the one
// controller, whose lock serializes the callbacks.
type Bridge struct {
	ctrl   *control.Controller
	opts   Options
	logger *zap.SugaredLogger

	mu        sync.Mutex
	lastState time.Time
	ticks     uint64
	rejected  uint64
}

func NewBridge(ctrl *control.Controller, opts Options) *Bridge {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Bridge{ctrl: ctrl, opts: opts, logger: opts.Logger, lastState: opts.Clock.Now()}
}

// HandleState runs one control tick for a state datagram and sends the
// resulting wrench.
func (b *Bridge) HandleState(payload []byte) (control.Output, error) {
	now := b.opts.Clock.Now()
	vs, err := ParseState(payload, now)
	if err != nil {
		b.reject()
		return control.Output{}, err
	}
	out, err := b.ctrl.OnVehicleState(vs)
	if err != nil {
		b.reject()
		return out, err
	}

	b.mu.Lock()
	b.lastState = now
	b.ticks++
	b.mu.Unlock()

	err = b.opts.Wrench.Send(FormatWrench(out.Stamp, out.Wrench))
	if out.Active {
		err = multierr.Append(err, b.opts.Reference.Send(FormatReference(out.Stamp, out.Reference)))
	}
	return out, err
}

// HandleWaypoint applies a waypoint datagram.
func (b *Bridge) HandleWaypoint(payload []byte) error {
	cmd, err := ParseWaypoint(payload)
	if err != nil {
		b.reject()
		return err
	}
	b.ctrl.OnWaypoint(cmd)
	return nil
}

func (b *Bridge) reject() {
	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
}

// Stats returns the number of completed ticks and rejected datagrams.
func (b *Bridge) Stats() (ticks, rejected uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ticks, b.rejected
}

// Serve reads both sockets until ctx is done, then closes them.
func (b *Bridge) Serve(ctx context.Context, states, waypoints net.PacketConn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.readLoop(ctx, states, "state", func(p []byte) error {
			_, err := b.HandleState(p)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		b.readLoop(ctx, waypoints, "waypoint", b.HandleWaypoint)
	}()

	if b.opts.StaleAfter > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.watchdog(ctx)
		}()
	}

	<-ctx.Done()
	err := multierr.Combine(states.Close(), waypoints.Close())
	wg.Wait()
	return err
}

func (b *Bridge) readLoop(ctx context.Context, conn net.PacketConn, kind string, handle func([]byte) error) {
	buf := make([]byte, readBuffer)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Debugw("read failed", "kind", kind, "error", err)
			continue
		}
		if err := handle(buf[:n]); err != nil {
			b.logger.Warnw("datagram rejected", "kind", kind, "error", err)
		}
	}
}

func (b *Bridge) watchdog(ctx context.Context) {
	ticker := b.opts.Clock.Ticker(b.opts.StaleAfter)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.mu.Lock()
			silent := now.Sub(b.lastState)
			b.mu.Unlock()
			if silent >= b.opts.StaleAfter {
				b.logger.Warnw("no vehicle state received", "silent", silent)
			}
		}
	}
}

// Listen opens the state and waypoint sockets and serves until ctx is done.
func (b *Bridge) Listen(ctx context.Context, stateAddr, waypointAddr string) error {
	states, err := net.ListenPacket("udp", stateAddr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", stateAddr)
	}
	waypoints, err := net.ListenPacket("udp", waypointAddr)
	if err != nil {
		return multierr.Append(errors.Wrapf(err, "listen %s", waypointAddr), states.Close())
	}
	b.logger.Infow("bridge listening", "state", states.LocalAddr().String(), "waypoint", waypoints.LocalAddr().String())
	return b.Serve(ctx, states, waypoints)
}
