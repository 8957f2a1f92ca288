// Package address implements the Filecoin wallet address format: a network
// tag, a protocol tag and a payload, with the canonical textual form
// (network prefix, protocol digit, base32 payload with blake2b checksum) and
// the binary form used inside CBOR-encoded messages.
package address

import (
	"bytes"
	"encoding/base32"
	"encoding/binary"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/filwallet/filsigner/pkg/sigerrors"
)

// Network selects the prefix of the textual address form. It is never part of
// the binary form: two addresses that differ only by network encode to the
// same bytes on the wire.
type Network byte

const (
	Mainnet Network = iota
	Testnet
)

// Prefix returns the single-character network prefix.
func (n Network) Prefix() string {
	if n == Testnet {
		return TestnetPrefix
	}
	return MainnetPrefix
}

// Protocol identifies how the payload commits to the owner of the address.
type Protocol byte

const (
	// ID is a chain-assigned actor id (uvarint payload).
	ID Protocol = iota
	// SECP256K1 payloads are the blake2b-160 hash of an uncompressed public key.
	SECP256K1
	// Actor payloads are hashes of actor creation data.
	Actor
	// BLS payloads are the full 48-byte compressed G1 public key. Verification
	// relies on this: there is no recovery step for BLS signatures.
	BLS
)

const (
	MainnetPrefix = "f"
	TestnetPrefix = "t"

	// PayloadHashLength is the size of hashed payloads (secp256k1, actor).
	PayloadHashLength = 20
	// ChecksumHashLength is the size of the checksum appended to the text form.
	ChecksumHashLength = 4
	// BlsPublicKeyBytes is the compressed G1 public key size.
	BlsPublicKeyBytes = 48
	// UncompressedPublicKeyBytes is the secp256k1 uncompressed point size.
	UncompressedPublicKeyBytes = 65

	encodeStd = "abcdefghijklmnopqrstuvwxyz234567"
)

var addressEncoding = base32.NewEncoding(encodeStd).WithPadding(base32.NoPadding)

// Address is a value type; the zero value is invalid.
type Address struct {
	network  Network
	protocol Protocol
	payload  []byte
}

// NewSecp256k1 builds an address from an uncompressed secp256k1 public key.
func NewSecp256k1(pubkey []byte) (Address, error) {
	if len(pubkey) != UncompressedPublicKeyBytes {
		return Address{}, errors.Wrapf(sigerrors.ErrInvalidLength,
			"secp256k1 public key must be %d bytes, got %d", UncompressedPublicKeyBytes, len(pubkey))
	}
	return Address{protocol: SECP256K1, payload: hashPayload(pubkey)}, nil
}

// NewBLS builds an address whose payload is the compressed public key itself.
func NewBLS(pubkey []byte) (Address, error) {
	if len(pubkey) != BlsPublicKeyBytes {
		return Address{}, errors.Wrapf(sigerrors.ErrInvalidLength,
			"bls public key must be %d bytes, got %d", BlsPublicKeyBytes, len(pubkey))
	}
	payload := make([]byte, BlsPublicKeyBytes)
	copy(payload, pubkey)
	return Address{protocol: BLS, payload: payload}, nil
}

// NewID builds an id-protocol address.
func NewID(id uint64) Address {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, id)
	return Address{protocol: ID, payload: buf[:n]}
}

// Protocol returns the protocol tag.
func (a Address) Protocol() Protocol { return a.protocol }

// Network returns the network tag.
func (a Address) Network() Network { return a.network }

// Payload returns the raw payload bytes.
func (a Address) Payload() []byte { return a.payload }

// Empty reports whether the address is the zero value.
func (a Address) Empty() bool { return len(a.payload) == 0 }

// SetNetwork retags the address. The derivation and decoding steps never set
// the network themselves; callers must do it explicitly.
func (a *Address) SetNetwork(n Network) { a.network = n }

// Equal compares protocol and payload. The network tag is presentation only
// and deliberately excluded.
func (a Address) Equal(b Address) bool {
	return a.protocol == b.protocol && bytes.Equal(a.payload, b.payload)
}

// Bytes returns the binary form: protocol byte followed by the payload.
func (a Address) Bytes() []byte {
	return append([]byte{byte(a.protocol)}, a.payload...)
}

// String returns the canonical textual form.
func (a Address) String() string {
	prefix := a.network.Prefix() + strconv.FormatUint(uint64(a.protocol), 10)
	switch a.protocol {
	case ID:
		id, _ := binary.Uvarint(a.payload)
		return prefix + strconv.FormatUint(id, 10)
	default:
		cksum := checksum(append([]byte{byte(a.protocol)}, a.payload...))
		return prefix + addressEncoding.EncodeToString(append(a.payload, cksum...))
	}
}

// FromString parses the canonical textual form and validates its checksum.
func FromString(s string) (Address, error) {
	if len(s) < 3 {
		return Address{}, errors.Wrap(sigerrors.ErrInvalidLength, "address string too short")
	}

	var network Network
	switch s[:1] {
	case MainnetPrefix:
		network = Mainnet
	case TestnetPrefix:
		network = Testnet
	default:
		return Address{}, errors.Wrapf(sigerrors.ErrMalformedInput, "unknown network prefix %q", s[:1])
	}

	var protocol Protocol
	switch s[1] {
	case '0':
		protocol = ID
	case '1':
		protocol = SECP256K1
	case '2':
		protocol = Actor
	case '3':
		protocol = BLS
	default:
		return Address{}, errors.Wrapf(sigerrors.ErrMalformedInput, "unknown protocol digit %q", s[1])
	}

	raw := s[2:]
	if protocol == ID {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Address{}, errors.Wrap(sigerrors.ErrMalformedInput, "invalid actor id")
		}
		addr := NewID(id)
		addr.network = network
		return addr, nil
	}

	decoded, err := addressEncoding.DecodeString(raw)
	if err != nil {
		return Address{}, errors.Wrap(sigerrors.ErrMalformedInput, "invalid base32 payload")
	}
	if len(decoded) < ChecksumHashLength {
		return Address{}, errors.Wrap(sigerrors.ErrInvalidLength, "payload shorter than checksum")
	}
	payload := decoded[:len(decoded)-ChecksumHashLength]
	cksum := decoded[len(decoded)-ChecksumHashLength:]

	if err := validatePayloadLength(protocol, payload); err != nil {
		return Address{}, err
	}
	if !bytes.Equal(cksum, checksum(append([]byte{byte(protocol)}, payload...))) {
		return Address{}, errors.Wrap(sigerrors.ErrMalformedInput, "address checksum mismatch")
	}

	return Address{network: network, protocol: protocol, payload: payload}, nil
}

// FromBytes parses the binary form. The result carries the mainnet tag; wire
// bytes do not encode a network.
func FromBytes(b []byte) (Address, error) {
	if len(b) < 2 {
		return Address{}, errors.Wrap(sigerrors.ErrInvalidLength, "address bytes too short")
	}
	protocol := Protocol(b[0])
	payload := make([]byte, len(b)-1)
	copy(payload, b[1:])

	switch protocol {
	case ID:
		id, n := binary.Uvarint(payload)
		if n <= 0 || n != len(payload) {
			return Address{}, errors.Wrap(sigerrors.ErrMalformedInput, "invalid uvarint id payload")
		}
		addr := NewID(id)
		return addr, nil
	case SECP256K1, Actor, BLS:
		if err := validatePayloadLength(protocol, payload); err != nil {
			return Address{}, err
		}
		return Address{protocol: protocol, payload: payload}, nil
	default:
		return Address{}, errors.Wrapf(sigerrors.ErrMalformedInput, "unknown protocol %d", protocol)
	}
}

// MarshalCBOR encodes the address as a CBOR byte string of its binary form.
func (a Address) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(a.Bytes())
}

// UnmarshalCBOR decodes a CBOR byte string into an address.
func (a *Address) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	parsed, err := FromBytes(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func validatePayloadLength(protocol Protocol, payload []byte) error {
	want := PayloadHashLength
	if protocol == BLS {
		want = BlsPublicKeyBytes
	}
	if len(payload) != want {
		return errors.Wrapf(sigerrors.ErrInvalidLength,
			"protocol %d payload must be %d bytes, got %d", protocol, want, len(payload))
	}
	return nil
}

func hashPayload(data []byte) []byte {
	h, _ := blake2b.New(PayloadHashLength, nil)
	h.Write(data)
	return h.Sum(nil)
}

func checksum(data []byte) []byte {
	h, _ := blake2b.New(ChecksumHashLength, nil)
	h.Write(data)
	return h.Sum(nil)
}
