// Package paych implements payment-channel vouchers: construction, signing,
// signature verification and the canonical CBOR/base64 interchange forms.
package paych

import (
	"encoding/base64"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/sigerrors"
	"github.com/filwallet/filsigner/pkg/types"
)

// Merge folds another lane into a voucher.
type Merge struct {
	_ struct{} `cbor:",toarray"`

	Lane  uint64
	Nonce uint64
}

// ModVerifyParams designates an actor consulted before redemption.
type ModVerifyParams struct {
	_ struct{} `cbor:",toarray"`

	Actor  address.Address
	Method uint64
	Data   []byte
}

// SignedVoucher is a self-contained channel update. The signature field is
// absent until SignVoucher attaches one; every other field is fixed at
// construction. Field order is the wire tuple order.
type SignedVoucher struct {
	_ struct{} `cbor:",toarray"`

	ChannelAddr     address.Address
	TimeLockMin     int64
	TimeLockMax     int64
	SecretPreimage  []byte
	Extra           *ModVerifyParams
	Lane            uint64
	Nonce           uint64
	Amount          types.BigInt
	MinSettleHeight int64
	Merges          []Merge
	Signature       *types.Signature
}

// rawVoucher sidesteps the MarshalCBOR method so encoding the normalized
// value does not recurse.
type rawVoucher SignedVoucher

// MarshalCBOR encodes the canonical tuple form, normalizing absent byte and
// merge fields to empty so the encoding never carries CBOR nulls for them.
// Value receiver: vouchers embedded in actor parameters encode through here.
func (sv SignedVoucher) MarshalCBOR() ([]byte, error) {
	if sv.SecretPreimage == nil {
		sv.SecretPreimage = []byte{}
	}
	if sv.Merges == nil {
		sv.Merges = []Merge{}
	}
	return cbor.Marshal(rawVoucher(sv))
}

// Serialize returns the canonical CBOR tuple encoding.
func (sv *SignedVoucher) Serialize() ([]byte, error) {
	out, err := sv.MarshalCBOR()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal voucher")
	}
	return out, nil
}

// SigningBytes is the voucher's own serialization with the signature cleared.
func (sv *SignedVoucher) SigningBytes() ([]byte, error) {
	unsigned := *sv
	unsigned.Signature = nil
	return unsigned.Serialize()
}

// CreateVoucher builds an unsigned voucher and returns its base64 encoding.
// The merge list starts empty and no secret preimage is set.
func CreateVoucher(channelAddress string, timeLockMin, timeLockMax int64, amount string, lane, nonce uint64, minSettleHeight int64) (string, error) {
	ch, err := address.FromString(channelAddress)
	if err != nil {
		return "", err
	}
	amt, err := types.BigFromString(amount)
	if err != nil {
		return "", err
	}

	sv := &SignedVoucher{
		ChannelAddr:     ch,
		TimeLockMin:     timeLockMin,
		TimeLockMax:     timeLockMax,
		Lane:            lane,
		Nonce:           nonce,
		Amount:          amt,
		MinSettleHeight: minSettleHeight,
	}
	return SerializeVoucher(sv)
}

// SerializeVoucher returns the base64 text form of a voucher.
func SerializeVoucher(sv *SignedVoucher) (string, error) {
	raw, err := sv.Serialize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DeserializeVoucher parses the base64 text form.
func DeserializeVoucher(encoded string) (*SignedVoucher, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	sv := new(SignedVoucher)
	if err := cbor.Unmarshal(raw, sv); err != nil {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	return sv, nil
}
