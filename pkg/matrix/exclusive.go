package matrix

// ExclusionSet lists control lines of which at most one may be active.
type ExclusionSet []ControlLine

// ExclusiveError names the lines of one exclusion set that a request would
// activate together.
type ExclusiveError struct {
	Lines []ControlLine
}

func (e *ExclusiveError) Error() string {
	return ErrExclusive.Error() + ": " + joinLines(e.Lines)
}

func (e *ExclusiveError) Unwrap() error {
	return ErrExclusive
}

// CheckExclusive rejects set if it holds more than one member of any
// exclusion set.
func CheckExclusive(set SwitchSet, exclusive []ExclusionSet) error {
	for _, ex := range exclusive {
		hit := make(SwitchSet)
		for _, l := range ex {
			if set.Contains(l) {
				hit.Add(l)
			}
		}
		if len(hit) > 1 {
			return &ExclusiveError{Lines: hit.Lines()}
		}
	}
	return nil
}
