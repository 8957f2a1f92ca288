package types

import (
	"encoding/hex"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/sigerrors"
)

func testMessage(t *testing.T) Message {
	t.Helper()
	pub := make([]byte, address.UncompressedPublicKeyBytes)
	pub[0] = 0x04
	pub[1] = 0x33
	from, err := address.NewSecp256k1(pub)
	require.NoError(t, err)

	return Message{
		To:         address.NewID(8021),
		From:       from,
		Nonce:      7,
		Value:      NewInt(100000),
		GasLimit:   2500000,
		GasFeeCap:  NewInt(1),
		GasPremium: NewInt(1),
		Method:     0,
	}
}

func Test_BigIntCBOR(t *testing.T) {
	tests := []struct {
		name  string
		value BigInt
		want  []byte
	}{
		{name: "unset", value: BigInt{}, want: []byte{0x40}},
		{name: "zero", value: NewInt(0), want: []byte{0x40}},
		{name: "one", value: NewInt(1), want: []byte{0x42, 0x00, 0x01}},
		{name: "minus one", value: NewInt(-1), want: []byte{0x42, 0x01, 0x01}},
		{name: "256", value: NewInt(256), want: []byte{0x43, 0x00, 0x01, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := cbor.Marshal(tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, raw)

			var back BigInt
			require.NoError(t, cbor.Unmarshal(raw, &back))
			if tt.value.Nil() {
				require.Zero(t, back.Sign())
			} else {
				require.Zero(t, back.Cmp(tt.value.Int))
			}
		})
	}
}

func Test_BigIntCBOR_BadSignByte(t *testing.T) {
	raw, err := cbor.Marshal([]byte{2, 1})
	require.NoError(t, err)

	var b BigInt
	require.ErrorIs(t, b.UnmarshalCBOR(raw), sigerrors.ErrMalformedInput)
}

func Test_BigFromString(t *testing.T) {
	v, err := BigFromString("100000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "100000000000000000000", v.String())

	_, err = BigFromString("ten")
	require.ErrorIs(t, err, sigerrors.ErrMalformedInput)
}

func Test_SignatureRoundTrip(t *testing.T) {
	sig, err := NewSecp256k1Signature(make([]byte, SignatureBytesSecp256k1))
	require.NoError(t, err)

	raw, err := sig.MarshalCBOR()
	require.NoError(t, err)

	var back Signature
	require.NoError(t, back.UnmarshalCBOR(raw))
	require.Equal(t, SigTypeSecp256k1, back.Type)
	require.Equal(t, sig.Data, back.Data)
}

func Test_Signature_Errors(t *testing.T) {
	_, err := NewSecp256k1Signature(make([]byte, 64))
	require.ErrorIs(t, err, sigerrors.ErrInvalidLength)

	_, err = NewBLSSignature(make([]byte, 95))
	require.ErrorIs(t, err, sigerrors.ErrInvalidLength)

	unknownType, err := cbor.Marshal([]byte{9, 1, 2, 3})
	require.NoError(t, err)
	var s Signature
	require.ErrorIs(t, s.UnmarshalCBOR(unknownType), sigerrors.ErrUnsupportedProtocol)

	empty, err := cbor.Marshal([]byte{})
	require.NoError(t, err)
	require.ErrorIs(t, s.UnmarshalCBOR(empty), sigerrors.ErrInvalidLength)
}

func Test_MessageSerialize_WireBytes(t *testing.T) {
	// Fixed reference encoding. Every element is pinned: tuple arity, the
	// protocol-prefixed address byte strings, the sign-prefixed amounts, the
	// shortest-form gas limit and the empty params byte string. The encoding
	// is consumed by other chain clients, so these bytes must never move.
	msg := Message{
		To:         address.NewID(1),
		From:       address.NewID(2),
		Nonce:      1,
		Value:      NewInt(100000),
		GasLimit:   2500000,
		GasFeeCap:  NewInt(1),
		GasPremium: NewInt(1),
	}

	raw, err := msg.Serialize()
	require.NoError(t, err)

	want, err := hex.DecodeString("8a004200014200020144000186a01a002625a04200014200010040")
	require.NoError(t, err)
	require.Equal(t, want, raw)

	// The signed wrapper prepends nothing and appends only the signature.
	sig, err := NewSecp256k1Signature(make([]byte, SignatureBytesSecp256k1))
	require.NoError(t, err)
	sm := SignedMessage{Message: msg, Signature: sig}
	signedRaw, err := sm.Serialize()
	require.NoError(t, err)
	require.Equal(t, byte(0x82), signedRaw[0])
	require.Equal(t, want, signedRaw[1:1+len(want)])
}

func Test_MessageRoundTrip(t *testing.T) {
	msg := testMessage(t)

	raw, err := msg.Serialize()
	require.NoError(t, err)

	tx, err := Parse(raw, false)
	require.NoError(t, err)
	require.False(t, tx.Signed())

	require.True(t, tx.Message.To.Equal(msg.To))
	require.True(t, tx.Message.From.Equal(msg.From))
	require.Equal(t, msg.Nonce, tx.Message.Nonce)
	require.Zero(t, tx.Message.Value.Cmp(msg.Value.Int))
	require.Equal(t, msg.GasLimit, tx.Message.GasLimit)
	require.Equal(t, msg.Method, tx.Message.Method)
}

func Test_SignedMessageRoundTrip(t *testing.T) {
	sig, err := NewSecp256k1Signature(make([]byte, SignatureBytesSecp256k1))
	require.NoError(t, err)
	sm := SignedMessage{Message: testMessage(t), Signature: sig}

	raw, err := sm.Serialize()
	require.NoError(t, err)

	tx, err := Parse(raw, false)
	require.NoError(t, err)
	require.True(t, tx.Signed())
	require.Equal(t, SigTypeSecp256k1, tx.Signature.Type)
	require.True(t, tx.Message.From.Equal(sm.Message.From))
}

func Test_Parse_NetworkTag(t *testing.T) {
	msg := testMessage(t)
	raw, err := msg.Serialize()
	require.NoError(t, err)

	mainnet, err := Parse(raw, false)
	require.NoError(t, err)
	require.Equal(t, "f", mainnet.Message.From.String()[:1])

	testnet, err := Parse(raw, true)
	require.NoError(t, err)
	require.Equal(t, "t", testnet.Message.From.String()[:1])

	// The tag never changes the wire bytes.
	reRaw, err := testnet.Message.Serialize()
	require.NoError(t, err)
	require.Equal(t, raw, reRaw)
}

func Test_Parse_Errors(t *testing.T) {
	badArity, err := cbor.Marshal([]int{1, 2, 3})
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "not cbor", raw: []byte{0xff, 0xff}},
		{name: "not a tuple", raw: []byte{0x01}},
		{name: "wrong arity", raw: badArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw, false)
			require.ErrorIs(t, err, sigerrors.ErrMalformedInput)
		})
	}
}

func Test_MessageCid(t *testing.T) {
	msg := testMessage(t)

	c1, err := msg.Cid()
	require.NoError(t, err)
	c2, err := msg.Cid()
	require.NoError(t, err)
	require.Equal(t, c1, c2)
	require.Equal(t, "bafy", c1.String()[:4])

	msg.Nonce++
	c3, err := msg.Cid()
	require.NoError(t, err)
	require.NotEqual(t, c1, c3)
}

func Test_SignedMessageCid(t *testing.T) {
	msg := testMessage(t)
	msgCid, err := msg.Cid()
	require.NoError(t, err)

	blsSig, err := NewBLSSignature(make([]byte, SignatureBytesBLS))
	require.NoError(t, err)
	secpSig, err := NewSecp256k1Signature(make([]byte, SignatureBytesSecp256k1))
	require.NoError(t, err)

	// BLS-signed messages are identified by the inner message.
	blsSigned := SignedMessage{Message: msg, Signature: blsSig}
	c, err := blsSigned.Cid()
	require.NoError(t, err)
	require.Equal(t, msgCid, c)

	secpSigned := SignedMessage{Message: msg, Signature: secpSig}
	c, err = secpSigned.Cid()
	require.NoError(t, err)
	require.NotEqual(t, msgCid, c)
}

func Test_SigningBytes(t *testing.T) {
	msg := testMessage(t)

	sb, err := msg.SigningBytes()
	require.NoError(t, err)

	c, err := msg.Cid()
	require.NoError(t, err)
	require.Equal(t, c.Bytes(), sb)
}
