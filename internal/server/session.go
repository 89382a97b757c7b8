package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OpenTraceLab/relaymatrix/internal/logging"
	"github.com/OpenTraceLab/relaymatrix/pkg/board"
	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
	"github.com/OpenTraceLab/relaymatrix/pkg/matrix"
	"github.com/OpenTraceLab/relaymatrix/pkg/metrics"
)

var (
	// ErrNotInitialized is returned before the first successful Init.
	ErrNotInitialized = errors.New("server: matrix not initialized")

	// ErrAlreadyInitialized is returned by Init for a different adapter
	// than the one already bound.
	ErrAlreadyInitialized = errors.New("server: matrix already initialized")
)

// Opener returns the bus for an adapter locator.
type Opener func(usbpath string) (expander.BusCloser, error)

// Session owns the single router of an agent process. All methods are
// serialized.
type Session struct {
	board      *board.Board
	open       Opener
	log        *slog.Logger
	metrics    *metrics.Registry
	routerOpts []matrix.Option

	mu      sync.Mutex
	usbpath string
	bus     expander.BusCloser
	router  *matrix.Router
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for the session and its router.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithMetrics records router activity in m and serves it on /metrics.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Session) { s.metrics = m }
}

// WithRouterOptions passes extra options to the router built by Init.
func WithRouterOptions(opts ...matrix.Option) Option {
	return func(s *Session) { s.routerOpts = append(s.routerOpts, opts...) }
}

// NewSession creates an uninitialized session for b. Buses come from open.
func NewSession(b *board.Board, open Opener, opts ...Option) *Session {
	s := &Session{
		board: b,
		open:  open,
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init binds the session to the adapter at usbpath and initializes the
// expanders. Repeating Init with the same usbpath is a no-op.
func (s *Session) Init(usbpath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router != nil {
		if usbpath == s.usbpath {
			return nil
		}
		return fmt.Errorf("%w on %q", ErrAlreadyInitialized, s.usbpath)
	}

	bus, err := s.open(usbpath)
	if err != nil {
		return err
	}

	opts := append([]matrix.Option{
		matrix.WithLogger(s.log.With("usbpath", usbpath)),
		matrix.WithMetrics(s.metrics),
	}, s.routerOpts...)
	router, err := s.board.NewRouter(bus, opts...)
	if err != nil {
		bus.Close()
		return err
	}

	s.usbpath = usbpath
	s.bus = bus
	s.router = router
	s.log.Info("matrix initialized", "usbpath", usbpath, "board", s.board.Name)
	return nil
}

// Link applies a connection spec.
func (s *Session) Link(spec string, ignoreExclusive bool) error {
	return s.withRouter(func(r *matrix.Router) error {
		return r.Link(spec, ignoreExclusive)
	})
}

// SetIndicator switches indicator idx.
func (s *Session) SetIndicator(idx int, on bool) error {
	return s.withRouter(func(r *matrix.Router) error {
		return r.SetIndicator(idx, on)
	})
}

// Reset re-initializes the expanders.
func (s *Session) Reset() error {
	return s.withRouter(func(r *matrix.Router) error {
		return r.Reset()
	})
}

// State is a snapshot of the session.
type State struct {
	Initialized bool     `json:"initialized"`
	USBPath     string   `json:"usbpath,omitempty"`
	Bitmask     string   `json:"bitmask,omitempty"`
	Switches    []string `json:"switches"`
	Indicators  []bool   `json:"indicators"`
	Uncertain   bool     `json:"uncertain"`
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Switches: []string{}, Indicators: []bool{}}
	if s.router == nil {
		return st
	}

	active := s.router.Active()
	st.Initialized = true
	st.USBPath = s.usbpath
	st.Bitmask = active.Hex(s.router.Devices())
	st.Uncertain = s.router.Uncertain()
	for _, l := range s.router.Switches().Lines() {
		st.Switches = append(st.Switches, l.String())
	}
	for i := 0; i < s.router.Indicators(); i++ {
		on, _ := s.router.Indicator(i)
		st.Indicators = append(st.Indicators, on)
	}
	return st
}

// Close disconnects all switches and releases the bus. The session can be
// initialized again afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router == nil {
		return nil
	}

	var errs []error
	if err := s.router.Link("", false); err != nil {
		s.log.Error("disconnecting on close failed", "error", err)
		errs = append(errs, err)
	}
	if err := s.bus.Close(); err != nil {
		errs = append(errs, err)
	}

	s.router = nil
	s.bus = nil
	s.usbpath = ""
	return errors.Join(errs...)
}

func (s *Session) withRouter(fn func(*matrix.Router) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router == nil {
		return ErrNotInitialized
	}
	return fn(s.router)
}
