// Package board describes a concrete switch matrix: its expanders, its
// connection table and the timing and polarity details that differ between
// boards.
package board

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
	"github.com/OpenTraceLab/relaymatrix/pkg/matrix"
)

//go:embed default.yaml
var defaultBoard []byte

// ErrInvalidBoard is wrapped by every validation failure.
var ErrInvalidBoard = errors.New("board: invalid board description")

var validate = validator.New()

// Board is the decoded form of a board file.
type Board struct {
	Name        string        `yaml:"name" validate:"required"`
	Expanders   Expanders     `yaml:"expanders"`
	Settle      time.Duration `yaml:"settle" validate:"gte=0"`
	Buses       []string      `yaml:"buses" validate:"required,min=1,dive,required"`
	Connections []Connection  `yaml:"connections" validate:"required,min=1,dive"`
	Exclusive   [][]string    `yaml:"exclusive" validate:"omitempty,dive,min=2,dive,required"`
	Indicators  Indicators    `yaml:"indicators"`
}

// Expanders lists the port expander addresses in bit order.
type Expanders struct {
	Addresses      []uint16 `yaml:"addresses" validate:"required,min=1,max=8,unique,dive,max=127"`
	OutputRegister *uint8   `yaml:"output_register"`
	ConfigRegister *uint8   `yaml:"config_register"`
}

// Connection is one "[A, B, line]" entry of the connection list.
type Connection struct {
	A    string `validate:"required"`
	B    string `validate:"required,nefield=A"`
	Line string `validate:"required"`
}

// UnmarshalYAML decodes the three element sequence form.
func (c *Connection) UnmarshalYAML(value *yaml.Node) error {
	var parts []string
	if err := value.Decode(&parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("line %d: connection needs [node, node, line], got %d elements", value.Line, len(parts))
	}
	c.A, c.B, c.Line = parts[0], parts[1], parts[2]
	return nil
}

// MarshalYAML encodes the connection as a flow sequence.
func (c Connection) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range []string{c.A, c.B, c.Line} {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: s})
	}
	return n, nil
}

// Indicators describes the outputs above the switch bits.
type Indicators struct {
	ActiveLow bool `yaml:"active_low"`
}

// Default returns the built-in LXA TAC EET board.
func Default() *Board {
	b, err := Parse(defaultBoard)
	if err != nil {
		panic(err)
	}
	return b
}

// Load reads and validates a board file.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return b, nil
}

// Parse decodes and validates a board description.
func Parse(data []byte) (*Board, error) {
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the struct constraints and that the connection table,
// exclusion sets and expander count fit together.
func (b *Board) Validate() error {
	if err := validate.Struct(b); err != nil {
		return formatValidationError(err)
	}

	table, err := b.Table()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	if bits := 8 * len(b.Expanders.Addresses); table.MaxBit() >= bits {
		return fmt.Errorf("%w: D%d does not fit in %d expanders", ErrInvalidBoard, table.MaxBit(), len(b.Expanders.Addresses))
	}
	if _, err := b.ExclusionSets(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	return nil
}

// Table builds the connection table.
func (b *Board) Table() (*matrix.Table, error) {
	conns := make([]matrix.Connection, len(b.Connections))
	for i, c := range b.Connections {
		line, err := matrix.ParseControlLine(c.Line)
		if err != nil {
			return nil, fmt.Errorf("connection %s-%s: %w", c.A, c.B, err)
		}
		conns[i] = matrix.Connection{A: c.A, B: c.B, Line: line}
	}
	return matrix.NewTable(b.Buses, conns)
}

// ExclusionSets parses the exclusive lists.
func (b *Board) ExclusionSets() ([]matrix.ExclusionSet, error) {
	sets := make([]matrix.ExclusionSet, 0, len(b.Exclusive))
	for _, idents := range b.Exclusive {
		set := make(matrix.ExclusionSet, 0, len(idents))
		for _, s := range idents {
			line, err := matrix.ParseControlLine(s)
			if err != nil {
				return nil, fmt.Errorf("exclusion set: %w", err)
			}
			set = append(set, line)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Bank binds the board's expanders to bus.
func (b *Board) Bank(bus expander.Bus) (*expander.Bank, error) {
	out, cfg := expander.PCA9554OutputReg, expander.PCA9554ConfigReg
	if b.Expanders.OutputRegister != nil {
		out = *b.Expanders.OutputRegister
	}
	if b.Expanders.ConfigRegister != nil {
		cfg = *b.Expanders.ConfigRegister
	}
	return expander.NewBankWithRegisters(bus, b.Expanders.Addresses, out, cfg)
}

// RouterOptions returns the options carrying the board's settle time,
// indicator polarity and exclusion sets.
func (b *Board) RouterOptions() ([]matrix.Option, error) {
	sets, err := b.ExclusionSets()
	if err != nil {
		return nil, err
	}
	settle := b.Settle
	if settle == 0 {
		settle = matrix.DefaultSettle
	}
	return []matrix.Option{
		matrix.WithSettle(settle),
		matrix.WithIndicatorsActiveLow(b.Indicators.ActiveLow),
		matrix.WithExclusive(sets...),
	}, nil
}

// NewRouter initializes the board's expanders on bus and returns a router
// for them. opts are applied after the board's own options.
func (b *Board) NewRouter(bus expander.Bus, opts ...matrix.Option) (*matrix.Router, error) {
	bank, err := b.Bank(bus)
	if err != nil {
		return nil, err
	}
	table, err := b.Table()
	if err != nil {
		return nil, err
	}
	boardOpts, err := b.RouterOptions()
	if err != nil {
		return nil, err
	}
	return matrix.New(bank, table, append(boardOpts, opts...)...)
}

// formatValidationError reports the first failed constraint.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidBoard, e.Namespace())
	case "min", "max":
		return fmt.Errorf("%w: %s must have %s %s", ErrInvalidBoard, e.Namespace(), e.Tag(), e.Param())
	case "unique":
		return fmt.Errorf("%w: %s contains duplicates", ErrInvalidBoard, e.Namespace())
	case "nefield":
		return fmt.Errorf("%w: %s connects a node to itself", ErrInvalidBoard, e.Namespace())
	default:
		return fmt.Errorf("%w: %s failed %s", ErrInvalidBoard, e.Namespace(), e.Tag())
	}
}
