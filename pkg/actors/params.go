// Package actors maps (actor kind, method number) pairs to their typed
// parameter payloads and computes the multisig proposal hash. The dispatch
// tables are closed: anything outside them is an error, never a default.
package actors

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/paych"
	"github.com/filwallet/filsigner/pkg/sigerrors"
	"github.com/filwallet/filsigner/pkg/types"
)

// Actor kinds and the legacy multisig constructor tag.
const (
	ActorInit            = "init"
	ActorMultisig        = "multisig"
	ActorPaymentChannel  = "paymentchannel"
	CodeLegacyMultisigV1 = "fil/1/multisig"
)

// Init actor methods.
const (
	MethodInitExec uint64 = 2
)

// Multisig actor methods.
const (
	MethodMultisigPropose                     uint64 = 2
	MethodMultisigApprove                     uint64 = 3
	MethodMultisigCancel                      uint64 = 4
	MethodMultisigAddSigner                   uint64 = 5
	MethodMultisigRemoveSigner                uint64 = 6
	MethodMultisigSwapSigner                  uint64 = 7
	MethodMultisigChangeNumApprovalsThreshold uint64 = 8
	MethodMultisigLockBalance                 uint64 = 9
)

// Payment channel actor methods.
const (
	MethodPaychUpdateChannelState uint64 = 2
	MethodPaychSettle             uint64 = 3
	MethodPaychCollect            uint64 = 4
)

// MessageParams is the closed union of decodable parameter payloads.
type MessageParams interface {
	isMessageParams()
}

// RawParams carries opaque parameter bytes for the param-less methods.
type RawParams []byte

// ExecParams instantiates a new actor through the init actor.
type ExecParams struct {
	_ struct{} `cbor:",toarray"`

	CodeCid           CborCid
	ConstructorParams []byte
}

// ProposeParams starts a multisig transaction proposal.
type ProposeParams struct {
	_ struct{} `cbor:",toarray"`

	To     address.Address
	Value  types.BigInt
	Method uint64
	Params []byte
}

// TxnIDParams approves or cancels a pending proposal by transaction id.
type TxnIDParams struct {
	_ struct{} `cbor:",toarray"`

	ID           int64
	ProposalHash []byte
}

// AddSignerParams adds a signer to a multisig wallet.
type AddSignerParams struct {
	_ struct{} `cbor:",toarray"`

	Signer   address.Address
	Increase bool
}

// RemoveSignerParams removes a signer from a multisig wallet.
type RemoveSignerParams struct {
	_ struct{} `cbor:",toarray"`

	Signer   address.Address
	Decrease bool
}

// SwapSignerParams replaces one signer with another.
type SwapSignerParams struct {
	_ struct{} `cbor:",toarray"`

	From address.Address
	To   address.Address
}

// ChangeNumApprovalsThresholdParams updates the approval threshold.
type ChangeNumApprovalsThresholdParams struct {
	_ struct{} `cbor:",toarray"`

	NewThreshold uint64
}

// LockBalanceParams locks funds over a vesting schedule.
type LockBalanceParams struct {
	_ struct{} `cbor:",toarray"`

	StartEpoch     int64
	UnlockDuration int64
	Amount         types.BigInt
}

// MultisigConstructorParams is the current multisig constructor shape.
type MultisigConstructorParams struct {
	_ struct{} `cbor:",toarray"`

	Signers               []address.Address
	NumApprovalsThreshold uint64
	UnlockDuration        int64
	StartEpoch            int64
}

// MultisigConstructorParamsV1 is the deprecated legacy shape: it predates the
// start-epoch field.
type MultisigConstructorParamsV1 struct {
	_ struct{} `cbor:",toarray"`

	Signers               []address.Address
	NumApprovalsThreshold uint64
	UnlockDuration        int64
}

// PaychConstructorParams opens a payment channel between two parties.
type PaychConstructorParams struct {
	_ struct{} `cbor:",toarray"`

	From address.Address
	To   address.Address
}

// UpdateChannelStateParams redeems a voucher on a payment channel.
type UpdateChannelStateParams struct {
	_ struct{} `cbor:",toarray"`

	Sv     paych.SignedVoucher
	Secret []byte
}

func (RawParams) isMessageParams()                         {}
func (ExecParams) isMessageParams()                        {}
func (ProposeParams) isMessageParams()                     {}
func (TxnIDParams) isMessageParams()                       {}
func (AddSignerParams) isMessageParams()                   {}
func (RemoveSignerParams) isMessageParams()                {}
func (SwapSignerParams) isMessageParams()                  {}
func (ChangeNumApprovalsThresholdParams) isMessageParams() {}
func (LockBalanceParams) isMessageParams()                 {}
func (MultisigConstructorParams) isMessageParams()         {}
func (MultisigConstructorParamsV1) isMessageParams()       {}
func (PaychConstructorParams) isMessageParams()            {}
func (UpdateChannelStateParams) isMessageParams()          {}

// CborCid is a content identifier in its CBOR form: tag 42 around the
// identity-multibase-prefixed CID bytes.
type CborCid cid.Cid

const cidTagNumber = 42

// MarshalCBOR encodes the tagged CID.
func (c CborCid) MarshalCBOR() ([]byte, error) {
	raw := cid.Cid(c).Bytes()
	return cbor.Marshal(cbor.Tag{Number: cidTagNumber, Content: append([]byte{0}, raw...)})
}

// UnmarshalCBOR decodes the tagged CID.
func (c *CborCid) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	if tag.Number != cidTagNumber {
		return errors.Wrapf(sigerrors.ErrMalformedInput, "expected cid tag %d, got %d", cidTagNumber, tag.Number)
	}
	content, ok := tag.Content.([]byte)
	if !ok || len(content) == 0 || content[0] != 0 {
		return errors.Wrap(sigerrors.ErrMalformedInput, "cid bytes must carry the identity multibase prefix")
	}
	parsed, err := cid.Cast(content[1:])
	if err != nil {
		return errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	*c = CborCid(parsed)
	return nil
}

func (c CborCid) String() string {
	return cid.Cid(c).String()
}
