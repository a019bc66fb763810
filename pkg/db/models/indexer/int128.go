package indexer

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
)

var (
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	lowMask   = new(big.Int).SetUint64(^uint64(0))
)

// ErrInt128Range is returned when a value does not fit in 128 signed bits.
var ErrInt128Range = errors.New("value out of int128 range")

// Int128 is a signed 128-bit integer in two's complement form: value = Hi*2^64 + Lo.
//
// It encodes to JSON as a bare integer literal with every digit preserved, so
// consumers with arbitrary precision number support get the exact value back.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Int128FromInt64 widens v.
func Int128FromInt64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

// Int128FromBig converts b, failing with ErrInt128Range when b needs more than 128 bits.
func Int128FromBig(b *big.Int) (Int128, error) {
	if b == nil {
		return Int128{}, nil
	}
	if b.Cmp(maxInt128) > 0 || b.Cmp(minInt128) < 0 {
		return Int128{}, ErrInt128Range
	}
	// big.Int And and Rsh follow two's complement semantics for negative values.
	lo := new(big.Int).And(b, lowMask).Uint64()
	hi := new(big.Int).Rsh(b, 64).Int64()
	return Int128{Hi: hi, Lo: lo}, nil
}

// Big returns the value as a new big.Int.
func (i Int128) Big() *big.Int {
	v := big.NewInt(i.Hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(i.Lo))
}

func (i Int128) String() string {
	return i.Big().String()
}

// MarshalJSON implements json.Marshaler.
func (i Int128) MarshalJSON() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. Only bare integer literals are accepted.
func (i *Int128) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	v, ok := new(big.Int).SetString(string(data), 10)
	if !ok {
		return fmt.Errorf("invalid int128 literal %q", data)
	}
	out, err := Int128FromBig(v)
	if err != nil {
		return fmt.Errorf("decode %q: %w", data, err)
	}
	*i = out
	return nil
}
