// Package dcf implements the Distributed Comparison Function: the Function
// Secret Sharing scheme for f_{α,β,dir}(x) = β if dir-predicate(x, α) holds,
// else 0, additively shared over the prime-field group.
package dcf

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"dcf-retrieval/bitvec"
	"dcf-retrieval/group"
)

// Direction selects which side of α carries β. It is a two-variant tag,
// not a subclass hierarchy.
type Direction uint8

const (
	// LessThan outputs β on inputs strictly below α, zero at and above.
	LessThan Direction = iota
	// GreaterThan outputs β on inputs strictly above α, zero at and below.
	GreaterThan
)

func (d Direction) String() string {
	switch d {
	case LessThan:
		return "LessThan"
	case GreaterThan:
		return "GreaterThan"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Point is the non-zero point of a point function: the threshold α and the
// payload β it carries.
type Point struct {
	Alpha bitvec.Bits
	Beta  group.Element
}

// CmpFunc is a Point together with a Direction, fully specifying the
// comparison function f_{α,β,dir}.
type CmpFunc struct {
	Point Point
	Dir   Direction
}

// CorrectionWord is one per-level dealer-emitted correction: it steers both
// parties' tree walks into agreement off the α path and controlled
// disagreement on it.
type CorrectionWord struct {
	Seed  []byte
	TL    byte
	TR    byte
	Value group.Element
}

// Key is one party's share of a DCF key pair. It is produced by Gen, owned
// by exactly one party, and read-only across any number of Eval calls.
type Key struct {
	Party   uint8
	Seed    []byte
	Width   int
	Dir     Direction
	CWs     []CorrectionWord
	CWFinal group.Element
}

// Serialize encodes k for storage or transmission using gob, this module's
// own convenience encoding.
func (k *Key) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(k); err != nil {
		return nil, fmt.Errorf("dcf: serialize key: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a Key previously produced by Serialize.
func (k *Key) Deserialize(data []byte) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(k); err != nil {
		return fmt.Errorf("dcf: deserialize key: %w", err)
	}
	return nil
}

// Equal reports whether k and other hold identical field values.
func (k *Key) Equal(other *Key) bool {
	return cmp.Equal(k, other)
}
