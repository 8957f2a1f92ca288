// Package signer dispatches signing and verification on the sender address
// protocol. secp256k1 messages are signed over the blake2b-256 digest of the
// message signing bytes and verified by public-key recovery; BLS messages are
// signed over the signing bytes directly and verified against the public key
// embedded in the sender address payload.
package signer

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/bls"
	"github.com/filwallet/filsigner/pkg/sigerrors"
	"github.com/filwallet/filsigner/pkg/types"
)

// secpPrivateKeyBytes is the secp256k1 secret scalar size.
const secpPrivateKeyBytes = 32

// SignRaw signs a message, choosing the scheme from the sender protocol.
func SignRaw(msg *types.Message, privateKey []byte) (types.Signature, error) {
	switch msg.From.Protocol() {
	case address.SECP256K1:
		return signSecp256k1(msg, privateKey)
	case address.BLS:
		return signBLS(msg, privateKey)
	default:
		return types.Signature{}, errors.Wrapf(sigerrors.ErrUnsupportedProtocol,
			"sender protocol %d", msg.From.Protocol())
	}
}

// Sign signs a message and wraps it with its signature.
func Sign(msg *types.Message, privateKey []byte) (*types.SignedMessage, error) {
	sig, err := SignRaw(msg, privateKey)
	if err != nil {
		return nil, err
	}
	return &types.SignedMessage{Message: *msg, Signature: sig}, nil
}

// Verify checks a signature against an encoded transaction and returns
// whether it is valid. A recovered-address mismatch on the secp256k1 path is
// a clean false, not an error.
func Verify(sig types.Signature, cborMsg []byte) (bool, error) {
	switch sig.Type {
	case types.SigTypeSecp256k1:
		return verifySecp256k1(sig, cborMsg)
	case types.SigTypeBLS:
		return verifyBLS(sig, cborMsg)
	default:
		return false, errors.Wrapf(sigerrors.ErrUnsupportedProtocol, "signature type %d", sig.Type)
	}
}

func signSecp256k1(msg *types.Message, privateKey []byte) (types.Signature, error) {
	if len(privateKey) != secpPrivateKeyBytes {
		return types.Signature{}, errors.Wrapf(sigerrors.ErrInvalidLength,
			"secp256k1 private key must be %d bytes, got %d", secpPrivateKeyBytes, len(privateKey))
	}

	sb, err := msg.SigningBytes()
	if err != nil {
		return types.Signature{}, err
	}
	digest := blake2b.Sum256(sb)

	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return types.Signature{}, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	raw, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return types.Signature{}, errors.Wrap(err, "secp256k1 signing failed")
	}
	return types.NewSecp256k1Signature(raw)
}

func signBLS(msg *types.Message, privateKey []byte) (types.Signature, error) {
	sb, err := msg.SigningBytes()
	if err != nil {
		return types.Signature{}, err
	}
	sk, err := bls.NewPrivateKeyFromBytes(privateKey)
	if err != nil {
		return types.Signature{}, err
	}
	sig, err := sk.Sign(sb)
	if err != nil {
		return types.Signature{}, err
	}
	return types.NewBLSSignature(sig.Bytes())
}

func verifySecp256k1(sig types.Signature, cborMsg []byte) (bool, error) {
	if len(sig.Data) != types.SignatureBytesSecp256k1 {
		return false, errors.Wrapf(sigerrors.ErrInvalidLength,
			"secp256k1 signature must be %d bytes, got %d", types.SignatureBytesSecp256k1, len(sig.Data))
	}

	tx, err := types.Parse(cborMsg, true)
	if err != nil {
		return false, err
	}
	sb, err := tx.Message.SigningBytes()
	if err != nil {
		return false, err
	}
	digest := blake2b.Sum256(sb)

	pubkey, err := ethcrypto.Ecrecover(digest[:], sig.Data)
	if err != nil {
		return false, errors.Wrap(err, "public key recovery failed")
	}

	// A secp256k1 address only commits to a hash of the key, so the check is
	// recover-and-match: derive the address from the recovered key and compare
	// it with the declared sender. A mismatch is a negative result, not an error.
	recovered, err := address.NewSecp256k1(pubkey)
	if err != nil {
		return false, err
	}
	if !recovered.Equal(tx.Message.From) {
		return false, nil
	}

	return ethcrypto.VerifySignature(pubkey, digest[:], sig.Data[:64]), nil
}

func verifyBLS(sig types.Signature, cborMsg []byte) (bool, error) {
	tx, err := types.Parse(cborMsg, true)
	if err != nil {
		return false, err
	}

	// The sender payload is the serialized public key; no recovery step exists.
	pk, err := bls.NewPublicKeyFromBytes(tx.Message.From.Payload())
	if err != nil {
		return false, err
	}
	blsSig, err := bls.NewSignatureFromBytes(sig.Data)
	if err != nil {
		return false, err
	}
	sb, err := tx.Message.SigningBytes()
	if err != nil {
		return false, err
	}
	return bls.Verify(pk, sb, blsSig)
}
