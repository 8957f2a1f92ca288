// Package types holds the message and signature value types and their
// canonical CBOR forms. Everything here is a plain value; nothing is retained
// between calls.
package types

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/sigerrors"
)

// messageFields is the arity of the unsigned message tuple; signedFields of
// the signed wrapper. Parse uses them to tell the two shapes apart.
const (
	messageFields = 10
	signedFields  = 2
)

// Message is an unsigned transaction. Field order is the wire tuple order and
// must not change.
type Message struct {
	_ struct{} `cbor:",toarray"`

	Version    uint64
	To         address.Address
	From       address.Address
	Nonce      uint64
	Value      BigInt
	GasLimit   int64
	GasFeeCap  BigInt
	GasPremium BigInt
	Method     uint64
	Params     []byte
}

// SignedMessage is a message plus the signature over its signing bytes.
type SignedMessage struct {
	_ struct{} `cbor:",toarray"`

	Message   Message
	Signature Signature
}

// Serialize returns the canonical CBOR tuple encoding.
func (m *Message) Serialize() ([]byte, error) {
	norm := *m
	if norm.Params == nil {
		norm.Params = []byte{}
	}
	out, err := cbor.Marshal(&norm)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	return out, nil
}

// Cid computes the content identifier: blake2b-256 multihash over the CBOR
// encoding, dag-cbor codec, CIDv1.
func (m *Message) Cid() (cid.Cid, error) {
	raw, err := m.Serialize()
	if err != nil {
		return cid.Undef, err
	}
	return sumCid(raw)
}

// SigningBytes is the canonical byte sequence signatures commit to: the CID
// bytes of the message. The secp256k1 path hashes these again with
// blake2b-256; the BLS path signs them directly.
func (m *Message) SigningBytes() ([]byte, error) {
	c, err := m.Cid()
	if err != nil {
		return nil, err
	}
	return c.Bytes(), nil
}

// Serialize returns the canonical CBOR encoding of the signed pair.
func (sm *SignedMessage) Serialize() ([]byte, error) {
	norm := *sm
	if norm.Message.Params == nil {
		norm.Message.Params = []byte{}
	}
	out, err := cbor.Marshal(&norm)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal signed message")
	}
	return out, nil
}

// Cid of a signed message. BLS-signed messages are identified by their inner
// message CID since the aggregate may replace individual signatures; secp
// messages hash the full signed encoding.
func (sm *SignedMessage) Cid() (cid.Cid, error) {
	if sm.Signature.Type == SigTypeBLS {
		return sm.Message.Cid()
	}
	raw, err := sm.Serialize()
	if err != nil {
		return cid.Undef, err
	}
	return sumCid(raw)
}

// Tx is the result of parsing an encoded transaction: always a message,
// plus the signature when the encoding was a signed message.
type Tx struct {
	Message   Message
	Signature *Signature
}

// Signed reports whether the parsed transaction carried a signature.
func (t *Tx) Signed() bool { return t.Signature != nil }

// Cid returns the identifier of whichever shape was parsed.
func (t *Tx) Cid() (cid.Cid, error) {
	if t.Signature != nil {
		sm := SignedMessage{Message: t.Message, Signature: *t.Signature}
		return sm.Cid()
	}
	return t.Message.Cid()
}

// Parse decodes a CBOR transaction, signed or unsigned, telling the shapes
// apart by tuple arity. The network tag is a call parameter: it is applied to
// the sender and recipient addresses after decoding, never read off the wire.
func Parse(raw []byte, testnet bool) (*Tx, error) {
	var top []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &top); err != nil {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}

	tx := new(Tx)
	switch len(top) {
	case messageFields:
		if err := cbor.Unmarshal(raw, &tx.Message); err != nil {
			return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
		}
	case signedFields:
		var sm SignedMessage
		if err := cbor.Unmarshal(raw, &sm); err != nil {
			return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
		}
		tx.Message = sm.Message
		tx.Signature = &sm.Signature
	default:
		return nil, errors.Wrapf(sigerrors.ErrMalformedInput,
			"transaction tuple has %d fields, want %d or %d", len(top), messageFields, signedFields)
	}

	network := address.Mainnet
	if testnet {
		network = address.Testnet
	}
	tx.Message.To.SetNetwork(network)
	tx.Message.From.SetNetwork(network)

	return tx, nil
}

func sumCid(raw []byte) (cid.Cid, error) {
	builder := cid.V1Builder{Codec: cid.DagCBOR, MhType: multihash.BLAKE2B_MIN + 31, MhLength: 32}
	c, err := builder.Sum(raw)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "failed to compute cid")
	}
	return c, nil
}
