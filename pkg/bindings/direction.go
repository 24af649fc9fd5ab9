package bindings

import (
	"encoding/json"
	"fmt"
)

// Direction describes how data flows through a binding.
// The zero value is In.
type Direction int

const (
	In Direction = iota
	InOut
	Out
)

var directionTokens = [...]string{
	In:    "in",
	InOut: "inout",
	Out:   "out",
}

func (d Direction) String() string {
	if d < In || d > Out {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionTokens[d]
}

// ParseDirection maps "in", "inout" or "out" to a Direction.
func ParseDirection(s string) (Direction, error) {
	for d, tok := range directionTokens {
		if tok == s {
			return Direction(d), nil
		}
	}
	return In, fmt.Errorf("invalid direction %q, must be \"in\", \"inout\" or \"out\"", s)
}

// MarshalJSON implements json.Marshaler for Direction.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d < In || d > Out {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return json.Marshal(directionTokens[d])
}

// UnmarshalJSON implements json.Unmarshaler for Direction.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
