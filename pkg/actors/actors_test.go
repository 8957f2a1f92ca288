package actors

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/paych"
	"github.com/filwallet/filsigner/pkg/sigerrors"
	"github.com/filwallet/filsigner/pkg/types"
)

func encodeParams(t *testing.T, params MessageParams) string {
	t.Helper()
	raw, err := SerializeParams(params)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func testCid(t *testing.T) cid.Cid {
	t.Helper()
	msg := types.Message{To: address.NewID(1), From: address.NewID(2)}
	c, err := msg.Cid()
	require.NoError(t, err)
	return c
}

func Test_DeserializeParams(t *testing.T) {
	addr1 := address.NewID(101)
	addr2 := address.NewID(102)

	tests := []struct {
		name   string
		actor  string
		method uint64
		params MessageParams
	}{
		{
			name:   "init exec",
			actor:  ActorInit,
			method: MethodInitExec,
			params: ExecParams{CodeCid: CborCid(testCid(t)), ConstructorParams: []byte{0x80}},
		},
		{
			name:   "multisig propose",
			actor:  ActorMultisig,
			method: MethodMultisigPropose,
			params: ProposeParams{To: addr1, Value: types.NewInt(1000), Method: 0, Params: []byte{}},
		},
		{
			name:   "multisig approve",
			actor:  ActorMultisig,
			method: MethodMultisigApprove,
			params: TxnIDParams{ID: 3, ProposalHash: make([]byte, 32)},
		},
		{
			name:   "multisig cancel",
			actor:  ActorMultisig,
			method: MethodMultisigCancel,
			params: TxnIDParams{ID: 4, ProposalHash: make([]byte, 32)},
		},
		{
			name:   "multisig add signer",
			actor:  ActorMultisig,
			method: MethodMultisigAddSigner,
			params: AddSignerParams{Signer: addr1, Increase: true},
		},
		{
			name:   "multisig remove signer",
			actor:  ActorMultisig,
			method: MethodMultisigRemoveSigner,
			params: RemoveSignerParams{Signer: addr1, Decrease: false},
		},
		{
			name:   "multisig swap signer",
			actor:  ActorMultisig,
			method: MethodMultisigSwapSigner,
			params: SwapSignerParams{From: addr1, To: addr2},
		},
		{
			name:   "multisig change threshold",
			actor:  ActorMultisig,
			method: MethodMultisigChangeNumApprovalsThreshold,
			params: ChangeNumApprovalsThresholdParams{NewThreshold: 2},
		},
		{
			name:   "multisig lock balance",
			actor:  ActorMultisig,
			method: MethodMultisigLockBalance,
			params: LockBalanceParams{StartEpoch: 100, UnlockDuration: 200, Amount: types.NewInt(300)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeserializeParams(encodeParams(t, tt.params), tt.actor, tt.method)
			require.NoError(t, err)
			require.IsType(t, tt.params, got)
		})
	}
}

func Test_DeserializeParams_FieldFidelity(t *testing.T) {
	in := ProposeParams{
		To:     address.NewID(2048),
		Value:  types.NewInt(5000),
		Method: 7,
		Params: []byte{0x01, 0x02},
	}
	got, err := DeserializeParams(encodeParams(t, in), ActorMultisig, MethodMultisigPropose)
	require.NoError(t, err)

	out, ok := got.(ProposeParams)
	require.True(t, ok)
	require.True(t, out.To.Equal(in.To))
	require.Zero(t, out.Value.Cmp(in.Value.Int))
	require.Equal(t, in.Method, out.Method)
	require.Equal(t, in.Params, out.Params)
}

func Test_DeserializeParams_UpdateChannelState(t *testing.T) {
	encoded, err := paych.CreateVoucher("f01994", 10, 200, "100000", 1, 2, 0)
	require.NoError(t, err)
	sv, err := paych.DeserializeVoucher(encoded)
	require.NoError(t, err)

	in := UpdateChannelStateParams{Sv: *sv, Secret: []byte{}}
	got, err := DeserializeParams(encodeParams(t, in), ActorPaymentChannel, MethodPaychUpdateChannelState)
	require.NoError(t, err)

	out, ok := got.(UpdateChannelStateParams)
	require.True(t, ok)
	require.Equal(t, sv.Lane, out.Sv.Lane)
	require.Equal(t, sv.Nonce, out.Sv.Nonce)
	require.Equal(t, sv.Amount.String(), out.Sv.Amount.String())
}

func Test_DeserializeParams_ParamlessMethods(t *testing.T) {
	// Settle and Collect never decode their payload; arbitrary bytes pass.
	junk := base64.StdEncoding.EncodeToString([]byte{0xde, 0xad})

	for _, method := range []uint64{MethodPaychSettle, MethodPaychCollect} {
		got, err := DeserializeParams(junk, ActorPaymentChannel, method)
		require.NoError(t, err)
		require.Equal(t, RawParams(nil), got)
	}
}

func Test_DeserializeParams_Errors(t *testing.T) {
	empty := base64.StdEncoding.EncodeToString(nil)

	tests := []struct {
		name   string
		b64    string
		actor  string
		method uint64
		want   error
	}{
		{name: "unknown actor", b64: empty, actor: "storageminer", method: 2, want: sigerrors.ErrUnknownActor},
		{name: "unknown init method", b64: empty, actor: ActorInit, method: 99, want: sigerrors.ErrUnknownMethod},
		{name: "unknown multisig method", b64: empty, actor: ActorMultisig, method: 10, want: sigerrors.ErrUnknownMethod},
		{name: "unknown paych method", b64: empty, actor: ActorPaymentChannel, method: 5, want: sigerrors.ErrUnknownMethod},
		{name: "bad base64", b64: "%%%", actor: ActorInit, method: MethodInitExec, want: sigerrors.ErrMalformedInput},
		{name: "bad cbor", b64: base64.StdEncoding.EncodeToString([]byte{0xff}), actor: ActorInit, method: MethodInitExec, want: sigerrors.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeParams(tt.b64, tt.actor, tt.method)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func Test_SerializeParams_NormalizesAbsentBytes(t *testing.T) {
	// Absent byte fields must hit the wire as empty byte strings (0x40),
	// never as CBOR null, or other clients compute different digests.
	tests := []struct {
		name    string
		params  MessageParams
		wantHex string
	}{
		{
			name:    "propose nil params",
			params:  ProposeParams{To: address.NewID(1), Value: types.NewInt(0)},
			wantHex: "84420001400040",
		},
		{
			name:    "txn id nil proposal hash",
			params:  TxnIDParams{},
			wantHex: "820040",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := SerializeParams(tt.params)
			require.NoError(t, err)
			require.Equal(t, tt.wantHex, hex.EncodeToString(raw))
		})
	}

	// Nil and explicitly empty encode identically.
	withNil, err := SerializeParams(ProposeParams{To: address.NewID(1), Value: types.NewInt(0)})
	require.NoError(t, err)
	withEmpty, err := SerializeParams(ProposeParams{To: address.NewID(1), Value: types.NewInt(0), Params: []byte{}})
	require.NoError(t, err)
	require.Equal(t, withEmpty, withNil)
}

func Test_DeserializeConstructorParams(t *testing.T) {
	signers := []address.Address{address.NewID(101), address.NewID(102)}

	t.Run("multisig", func(t *testing.T) {
		in := MultisigConstructorParams{Signers: signers, NumApprovalsThreshold: 2, UnlockDuration: 10, StartEpoch: 5}
		got, err := DeserializeConstructorParams(encodeParams(t, in), ActorMultisig)
		require.NoError(t, err)

		out, ok := got.(MultisigConstructorParams)
		require.True(t, ok)
		require.Equal(t, in.NumApprovalsThreshold, out.NumApprovalsThreshold)
		require.Equal(t, in.StartEpoch, out.StartEpoch)
		require.Len(t, out.Signers, 2)
	})

	t.Run("legacy multisig migrates", func(t *testing.T) {
		legacy := MultisigConstructorParamsV1{Signers: signers, NumApprovalsThreshold: 2, UnlockDuration: 10}
		got, err := DeserializeConstructorParams(encodeParams(t, legacy), CodeLegacyMultisigV1)
		require.NoError(t, err)

		out, ok := got.(MultisigConstructorParams)
		require.True(t, ok)
		require.Equal(t, legacy.NumApprovalsThreshold, out.NumApprovalsThreshold)
		require.Equal(t, legacy.UnlockDuration, out.UnlockDuration)
		require.Zero(t, out.StartEpoch)
	})

	t.Run("payment channel", func(t *testing.T) {
		in := PaychConstructorParams{From: signers[0], To: signers[1]}
		got, err := DeserializeConstructorParams(encodeParams(t, in), ActorPaymentChannel)
		require.NoError(t, err)

		out, ok := got.(PaychConstructorParams)
		require.True(t, ok)
		require.True(t, out.From.Equal(in.From))
		require.True(t, out.To.Equal(in.To))
	})

	t.Run("unknown code tag", func(t *testing.T) {
		_, err := DeserializeConstructorParams(base64.StdEncoding.EncodeToString(nil), "fil/1/storageminer")
		require.ErrorIs(t, err, sigerrors.ErrUnknownActor)
	})
}

func Test_CborCidRoundTrip(t *testing.T) {
	in := CborCid(testCid(t))

	raw, err := in.MarshalCBOR()
	require.NoError(t, err)

	var out CborCid
	require.NoError(t, out.UnmarshalCBOR(raw))
	require.Equal(t, in.String(), out.String())
}

func Test_ComputeProposalHash(t *testing.T) {
	requester := address.NewID(55)
	data := &ProposalHashData{
		Requester: &requester,
		To:        address.NewID(66),
		Value:     types.NewInt(1000),
		Method:    0,
	}

	h1, err := ComputeProposalHash(data)
	require.NoError(t, err)
	h2, err := ComputeProposalHash(data)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	digest, err := base64.StdEncoding.DecodeString(h1)
	require.NoError(t, err)
	require.Len(t, digest, 32)

	// Nil and empty params hash identically.
	withEmpty := *data
	withEmpty.Params = []byte{}
	h3, err := ComputeProposalHash(&withEmpty)
	require.NoError(t, err)
	require.Equal(t, h1, h3)

	// Any field change moves the digest.
	changed := *data
	changed.Method = 1
	h4, err := ComputeProposalHash(&changed)
	require.NoError(t, err)
	require.NotEqual(t, h1, h4)

	// An absent requester is a distinct, stable encoding.
	anonymous := *data
	anonymous.Requester = nil
	h5, err := ComputeProposalHash(&anonymous)
	require.NoError(t, err)
	require.NotEqual(t, h1, h5)
}
