package actors

import (
	"encoding/base64"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/types"
)

// ProposalHashData are the fields a multisig proposal digest commits to, in
// their fixed wire order. The struct exists only to be hashed.
type ProposalHashData struct {
	_ struct{} `cbor:",toarray"`

	Requester *address.Address
	To        address.Address
	Value     types.BigInt
	Method    uint64
	Params    []byte
}

// ComputeProposalHash serializes the proposal fields into the canonical
// on-chain parameter encoding, hashes with blake2b-256 and base64-encodes the
// digest. Independent implementations must agree bit for bit, so field order,
// the null encoding of an absent requester and the hash choice are all fixed.
func ComputeProposalHash(data *ProposalHashData) (string, error) {
	norm := *data
	if norm.Params == nil {
		norm.Params = []byte{}
	}
	raw, err := cbor.Marshal(&norm)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal proposal data")
	}
	digest := blake2b.Sum256(raw)
	return base64.StdEncoding.EncodeToString(digest[:]), nil
}
