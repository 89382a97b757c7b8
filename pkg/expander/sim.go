package expander

import "sync"

// Write captures one register write for inspection within tests.
type Write struct {
	Addr  uint16
	Reg   uint8
	Value uint8
}

// WriteHook lets tests inject transport failures. Returning an error aborts
// the write before the register state changes.
type WriteHook func(w Write) error

// SimBus is an in-memory bus useful for unit tests and for running the
// tools without hardware. It records every write and keeps the last value
// of each register.
type SimBus struct {
	OnWrite WriteHook

	mu     sync.Mutex
	writes []Write
	regs   map[uint16]map[uint8]uint8
}

// NewSimBus constructs an empty simulator.
func NewSimBus() *SimBus {
	return &SimBus{regs: make(map[uint16]map[uint8]uint8)}
}

func (s *SimBus) WriteRegister(addr uint16, reg, value uint8) error {
	w := Write{Addr: addr, Reg: reg, Value: value}
	if s.OnWrite != nil {
		if err := s.OnWrite(w); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, w)
	dev, ok := s.regs[addr]
	if !ok {
		dev = make(map[uint8]uint8)
		s.regs[addr] = dev
	}
	dev[reg] = value
	return nil
}

// Writes returns a copy of all writes seen so far.
func (s *SimBus) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.writes...)
}

// WriteCount reports how many writes have been issued.
func (s *SimBus) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

// ClearWrites forgets the write log but keeps register state.
func (s *SimBus) ClearWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = nil
}

// Register returns the last value written to reg on addr.
func (s *SimBus) Register(addr uint16, reg uint8) (uint8, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.regs[addr][reg]
	return v, ok
}

// Close is a no-op.
func (s *SimBus) Close() error {
	return nil
}
