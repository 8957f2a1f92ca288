package signer

import (
	"runtime"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"golang.org/x/sync/errgroup"

	"github.com/filwallet/filsigner/pkg/bls"
	"github.com/filwallet/filsigner/pkg/types"
)

// VerifyAggregate batch-verifies one aggregate BLS signature against many
// independently signed messages. Any message whose key or signing bytes
// cannot be extracted aborts the whole operation with the first error.
func VerifyAggregate(sig types.Signature, cborMsgs [][]byte) (bool, error) {
	blsSig, err := bls.NewSignatureFromBytes(sig.Data)
	if err != nil {
		return false, err
	}

	pks := make([]*bls.PublicKey, len(cborMsgs))
	signingBytes := make([][]byte, len(cborMsgs))
	for i, raw := range cborMsgs {
		tx, err := types.Parse(raw, true)
		if err != nil {
			return false, err
		}
		pk, err := bls.NewPublicKeyFromBytes(tx.Message.From.Payload())
		if err != nil {
			return false, err
		}
		sb, err := tx.Message.SigningBytes()
		if err != nil {
			return false, err
		}
		pks[i] = pk
		signingBytes[i] = sb
	}

	// Hashing to the curve dominates; fan it out. Each worker writes only its
	// own index so the hash stays paired with the right public key.
	hashes := make([]bls12381.G2Affine, len(cborMsgs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range signingBytes {
		g.Go(func() error {
			h, err := bls.HashToPoint(signingBytes[i])
			if err != nil {
				return err
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	return bls.VerifyAggregate(pks, hashes, blsSig)
}
