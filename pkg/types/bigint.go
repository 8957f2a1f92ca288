package types

import (
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/sigerrors"
)

// BigInt is an arbitrary-precision token amount. Its wire form is a CBOR byte
// string: empty for zero, otherwise a sign byte (0 positive, 1 negative)
// followed by the big-endian magnitude.
type BigInt struct {
	*big.Int
}

// NewInt builds a BigInt from an int64.
func NewInt(i int64) BigInt {
	return BigInt{big.NewInt(i)}
}

// BigFromString parses a base-10 amount.
func BigFromString(s string) (BigInt, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return BigInt{}, errors.Wrapf(sigerrors.ErrMalformedInput, "could not parse amount %q", s)
	}
	return BigInt{v}, nil
}

// Nil reports whether the value is unset.
func (b BigInt) Nil() bool { return b.Int == nil }

func (b BigInt) String() string {
	if b.Int == nil {
		return "0"
	}
	return b.Int.String()
}

// MarshalCBOR encodes the sign-prefixed magnitude byte string.
func (b BigInt) MarshalCBOR() ([]byte, error) {
	if b.Int == nil || b.Sign() == 0 {
		return cbor.Marshal([]byte{})
	}
	sign := byte(0)
	if b.Sign() < 0 {
		sign = 1
	}
	return cbor.Marshal(append([]byte{sign}, b.Int.Bytes()...))
}

// UnmarshalCBOR decodes the sign-prefixed magnitude byte string.
func (b *BigInt) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	if len(raw) == 0 {
		b.Int = big.NewInt(0)
		return nil
	}
	v := new(big.Int).SetBytes(raw[1:])
	switch raw[0] {
	case 0:
	case 1:
		v.Neg(v)
	default:
		return errors.Wrap(sigerrors.ErrMalformedInput, "invalid big int sign byte")
	}
	b.Int = v
	return nil
}
