package transform

import (
	"errors"
	"math/big"

	"github.com/canopy-network/accountsx/pkg/db/models/indexer"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrNumericNull      = errors.New("numeric is null")
	ErrNumericNotFinite = errors.New("numeric is not finite")
	ErrNumericFraction  = errors.New("numeric has a fractional part")
	ErrNumericOverflow  = errors.New("numeric does not fit int128")
)

// int128 holds at most 39 decimal digits; anything scaled further cannot fit.
const maxInt128Digits = 39

var bigTen = big.NewInt(10)

// ToInt128 converts a NUMERIC value to an Int128 without losing precision.
// The numeric value is n.Int * 10^n.Exp.
func ToInt128(n pgtype.Numeric) (indexer.Int128, error) {
	if !n.Valid {
		return indexer.Int128{}, ErrNumericNull
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return indexer.Int128{}, ErrNumericNotFinite
	}
	if n.Int == nil || n.Int.Sign() == 0 {
		return indexer.Int128{}, nil
	}

	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		if n.Exp > maxInt128Digits {
			return indexer.Int128{}, ErrNumericOverflow
		}
		v.Mul(v, new(big.Int).Exp(bigTen, big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		// Trailing zeros after the decimal point ("100.00") are still integral.
		scale := new(big.Int).Exp(bigTen, big.NewInt(-int64(n.Exp)), nil)
		rem := new(big.Int)
		v.QuoRem(v, scale, rem)
		if rem.Sign() != 0 {
			return indexer.Int128{}, ErrNumericFraction
		}
	}

	out, err := indexer.Int128FromBig(v)
	if err != nil {
		return indexer.Int128{}, ErrNumericOverflow
	}
	return out, nil
}

// NumericToInt128 is the nullable form of ToInt128: null, non-finite,
// fractional and out-of-range inputs all yield nil so one odd column never
// fails a whole result set.
func NumericToInt128(n pgtype.Numeric) *indexer.Int128 {
	v, err := ToInt128(n)
	if err != nil {
		return nil
	}
	return &v
}
