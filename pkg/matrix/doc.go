// Package matrix routes symbolic connection specs onto the relays of a
// switch matrix.
//
// A caller describes the electrical paths it wants, hop by hop:
//
//	PWR_OUT -> BUS2 -> CURR -> SHUNT_10R, USB1_IN -> USB1_OUT
//
// The router validates each path against a static connection Table,
// compiles the spec into a SwitchSet of control lines, rejects combinations
// forbidden by ExclusionSets and writes the result to a bank of 8-bit port
// expanders.
//
// # Nodes
//
// Every node is either a Leaf (a port, shunt or supply rail) or a Bus (an
// internal junction). A path starts and ends at a leaf and passes only
// through buses. A node may not appear twice in one path.
//
// # Bitmask layout
//
// Bit n of the Bitmask is control line Dn. Device i of the bank holds bits
// [8*i, 8*i+8). The low SwitchBits bits are relay switches; the bits above
// drive indicator outputs such as locator LEDs.
//
// # Break-before-make
//
// Changing the switch combination first releases every switch, waits for
// the relays to settle and only then closes the new combination, so two
// sources are never connected to a bus at the same time. Indicator bits are
// carried through the cycle unchanged. Only expanders whose output byte
// changes are written.
//
// # Failures
//
// Validation and exclusion errors are returned before any hardware write.
// A failed register write leaves the hardware in an unknown state: the
// Router refuses further requests with ErrUncertainState until Reset
// re-initializes the bank.
package matrix
