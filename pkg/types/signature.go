package types

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/sigerrors"
)

// SigType tags which signature scheme produced a signature.
type SigType byte

const (
	SigTypeSecp256k1 SigType = 1
	SigTypeBLS       SigType = 2
)

const (
	// SignatureBytesSecp256k1 is R‖S‖recovery-id.
	SignatureBytesSecp256k1 = 65
	// SignatureBytesBLS is a compressed G2 point.
	SignatureBytesBLS = 96
)

// Signature is a scheme tag plus the raw signature bytes. The wire form is a
// CBOR byte string with the tag as its first byte.
type Signature struct {
	Type SigType
	Data []byte
}

// NewSecp256k1Signature wraps 65 recovery-format signature bytes.
func NewSecp256k1Signature(data []byte) (Signature, error) {
	if len(data) != SignatureBytesSecp256k1 {
		return Signature{}, errors.Wrapf(sigerrors.ErrInvalidLength,
			"secp256k1 signature must be %d bytes, got %d", SignatureBytesSecp256k1, len(data))
	}
	return Signature{Type: SigTypeSecp256k1, Data: data}, nil
}

// NewBLSSignature wraps 96 compressed G2 signature bytes.
func NewBLSSignature(data []byte) (Signature, error) {
	if len(data) != SignatureBytesBLS {
		return Signature{}, errors.Wrapf(sigerrors.ErrInvalidLength,
			"bls signature must be %d bytes, got %d", SignatureBytesBLS, len(data))
	}
	return Signature{Type: SigTypeBLS, Data: data}, nil
}

// MarshalCBOR encodes type byte + data as one byte string.
func (s Signature) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(append([]byte{byte(s.Type)}, s.Data...))
}

// UnmarshalCBOR decodes the tagged byte string.
func (s *Signature) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	if len(raw) == 0 {
		return errors.Wrap(sigerrors.ErrInvalidLength, "empty signature")
	}
	switch SigType(raw[0]) {
	case SigTypeSecp256k1, SigTypeBLS:
		s.Type = SigType(raw[0])
	default:
		return errors.Wrapf(sigerrors.ErrUnsupportedProtocol, "signature type %d", raw[0])
	}
	s.Data = make([]byte, len(raw)-1)
	copy(s.Data, raw[1:])
	return nil
}
