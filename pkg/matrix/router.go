package matrix

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OpenTraceLab/relaymatrix/internal/logging"
	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
	"github.com/OpenTraceLab/relaymatrix/pkg/metrics"
)

// DefaultSettle is how long relays get to release or engage after a write.
const DefaultSettle = 100 * time.Millisecond

// IndicatorBase is the bitmask bit of indicator 0.
const IndicatorBase = SwitchBits

// Router drives a switch matrix through a bank of port expanders. It keeps
// the only copy of the output state, so exactly one Router must own a bank.
//
// Router is not safe for concurrent use; callers serialize Link, SetSwitches
// and indicator updates.
type Router struct {
	bank      *expander.Bank
	table     *Table
	exclusive []ExclusionSet

	settle      time.Duration
	sleep       func(time.Duration)
	indicatorLo bool
	log         *slog.Logger
	metrics     *metrics.Registry

	active    Bitmask
	switches  SwitchSet
	uncertain bool
}

// Option configures a Router.
type Option func(*Router)

// WithExclusive declares mutually exclusive control lines.
func WithExclusive(sets ...ExclusionSet) Option {
	return func(r *Router) { r.exclusive = append(r.exclusive, sets...) }
}

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(r *Router) { r.settle = d }
}

// WithSleep replaces time.Sleep, for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Router) { r.sleep = sleep }
}

// WithIndicatorsActiveLow marks indicator outputs as lit when driven low.
func WithIndicatorsActiveLow(activeLow bool) Option {
	return func(r *Router) { r.indicatorLo = activeLow }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) { r.log = log }
}

// WithMetrics records hardware activity in m.
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Router) { r.metrics = m }
}

// New initializes every expander (outputs low, then pins to output mode)
// and returns a router whose state is all zero.
func New(bank *expander.Bank, table *Table, opts ...Option) (*Router, error) {
	if bank == nil {
		return nil, fmt.Errorf("matrix: bank is nil")
	}
	if table == nil {
		return nil, fmt.Errorf("matrix: table is nil")
	}
	if hi := table.MaxBit(); hi >= bank.Bits() {
		return nil, fmt.Errorf("matrix: control line D%d needs more than %d expander bits", hi, bank.Bits())
	}

	r := &Router{
		bank:   bank,
		table:  table,
		settle: DefaultSettle,
		sleep:  time.Sleep,
		log:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, ex := range r.exclusive {
		for _, l := range ex {
			if !l.valid() {
				return nil, fmt.Errorf("%w %s in exclusion set", ErrUnknownSwitch, l)
			}
		}
	}

	if err := r.Reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset re-initializes all expanders and clears the state, including the
// uncertain flag left by a failed write.
func (r *Router) Reset() error {
	r.uncertain = true
	if err := r.bank.Init(); err != nil {
		r.log.Error("expander init failed", "error", err)
		return err
	}
	r.active = 0
	r.switches = nil
	r.uncertain = false
	r.metrics.SetActiveSwitches(0)
	r.log.Info("expanders initialized", "devices", r.bank.Len())
	return nil
}

// Link validates spec and applies it. An empty spec disconnects everything.
// Exclusion sets are skipped when ignoreExclusive is set.
func (r *Router) Link(spec string, ignoreExclusive bool) error {
	err := r.link(spec, ignoreExclusive)
	r.metrics.RecordLink(linkResult(err))
	return err
}

func (r *Router) link(spec string, ignoreExclusive bool) error {
	if r.uncertain {
		return ErrUncertainState
	}

	set, err := r.table.Compile(spec)
	if err != nil {
		return err
	}

	if err := CheckExclusive(set, r.exclusive); err != nil {
		if !ignoreExclusive {
			return err
		}
		r.log.Warn("applying exclusive outputs", "error", err)
	}

	return r.SetSwitches(set)
}

// Check compiles spec and applies the exclusion sets without touching
// hardware.
func (r *Router) Check(spec string, ignoreExclusive bool) (SwitchSet, error) {
	set, err := r.table.Compile(spec)
	if err != nil {
		return nil, err
	}
	if !ignoreExclusive {
		if err := CheckExclusive(set, r.exclusive); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// SetSwitches makes set the active switch combination using a
// break-before-make cycle: all switches are released and allowed to settle
// before the new combination is applied. Indicator bits are preserved.
// Nothing is written when set is already active.
func (r *Router) SetSwitches(set SwitchSet) error {
	if r.uncertain {
		return ErrUncertainState
	}
	for l := range set {
		if !l.valid() {
			return fmt.Errorf("%w %s", ErrUnknownSwitch, l)
		}
	}
	if c := set.conflicts(); len(c) > 0 {
		return fmt.Errorf("%w: %s", ErrConflictingLevels, joinLines(c))
	}

	off := r.active &^ SwitchMask
	final := off
	for l := range set {
		final = final.With(l.Bit, l.ActiveHigh)
	}

	if final == r.active {
		r.log.Debug("leaving switches as-is")
		r.switches = NewSwitchSet(set.Lines()...)
		return nil
	}

	r.log.Debug("breaking all connections")
	r.metrics.RecordBreakCycle()
	if err := r.apply(off); err != nil {
		return err
	}

	r.log.Debug("setting connections", "switches", set.String())
	if err := r.apply(final); err != nil {
		return err
	}
	r.switches = NewSwitchSet(set.Lines()...)
	return nil
}

// SetSwitchIdentifiers is SetSwitches for textual control lines.
func (r *Router) SetSwitchIdentifiers(idents ...string) error {
	set := make(SwitchSet, len(idents))
	for _, s := range idents {
		l, err := ParseControlLine(s)
		if err != nil {
			return err
		}
		set.Add(l)
	}
	return r.SetSwitches(set)
}

// SetIndicator turns indicator idx on or off. Switches are not touched.
func (r *Router) SetIndicator(idx int, on bool) error {
	if r.uncertain {
		return ErrUncertainState
	}
	bit, err := r.indicatorBit(idx)
	if err != nil {
		return err
	}
	return r.apply(r.active.With(bit, on != r.indicatorLo))
}

// ClearIndicator turns indicator idx off.
func (r *Router) ClearIndicator(idx int) error {
	return r.SetIndicator(idx, false)
}

// Indicator reports whether indicator idx is on.
func (r *Router) Indicator(idx int) (bool, error) {
	bit, err := r.indicatorBit(idx)
	if err != nil {
		return false, err
	}
	return r.active.Bit(bit) != r.indicatorLo, nil
}

// Indicators returns the number of indicator outputs the bank provides.
func (r *Router) Indicators() int {
	if n := r.bank.Bits() - IndicatorBase; n > 0 {
		return n
	}
	return 0
}

func (r *Router) indicatorBit(idx int) (int, error) {
	if idx < 0 || idx >= r.Indicators() {
		return 0, fmt.Errorf("%w %d", ErrUnknownIndicator, idx)
	}
	return IndicatorBase + idx, nil
}

// Switches returns the control lines of the last applied combination,
// including inverted lines whose bit reads as zero.
func (r *Router) Switches() SwitchSet {
	return NewSwitchSet(r.switches.Lines()...)
}

// Active returns the state last written to hardware.
func (r *Router) Active() Bitmask {
	return r.active
}

// Uncertain reports whether a failed write left the hardware state unknown.
func (r *Router) Uncertain() bool {
	return r.uncertain
}

// Devices returns the number of expanders in the bank.
func (r *Router) Devices() int {
	return r.bank.Len()
}

// Table returns the connection table.
func (r *Router) Table() *Table {
	return r.table
}

// apply writes the output register of every device whose byte differs from
// the active state, waits for the relays once, and records bm as active.
func (r *Router) apply(bm Bitmask) error {
	changes := bm ^ r.active
	if changes == 0 {
		return nil
	}

	start := time.Now()
	for i := 0; i < r.bank.Len(); i++ {
		if changes.Byte(i) == 0 {
			continue
		}
		if err := r.bank.WriteOutput(i, bm.Byte(i)); err != nil {
			r.uncertain = true
			r.log.Error("expander write failed", "device", fmt.Sprintf("0x%02x", r.bank.Addr(i)), "error", err)
			return err
		}
		r.metrics.RecordRegisterWrite(r.bank.Addr(i))
	}

	r.sleep(r.settle)

	r.active = bm
	r.metrics.RecordApply(time.Since(start), r.settle)
	r.metrics.SetActiveSwitches(bm.Switches())
	r.log.Info("applied", "bitmask", bm.Hex(r.bank.Len()))
	return nil
}

func linkResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case isValidation(err):
		return metrics.ResultInvalid
	case isExclusive(err):
		return metrics.ResultExclusive
	default:
		return metrics.ResultHardware
	}
}
