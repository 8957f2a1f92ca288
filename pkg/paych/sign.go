package paych

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

// SignVoucher signs an encoded voucher over the blake2b-256 digest of its
// signing bytes and returns the re-encoded voucher with the signature
// attached. Vouchers are always signed with the secp256k1 scheme; there is no
// dispatch on the signer's own address protocol here.
func SignVoucher(encodedVoucher string, privateKey []byte) (string, error) {
	if len(privateKey) != secpPrivateKeyBytes {
		return "", errors.Wrapf(sigerrors.ErrInvalidLength,
			"secp256k1 private key must be %d bytes, got %d", secpPrivateKeyBytes, len(privateKey))
	}

	sv, err := DeserializeVoucher(encodedVoucher)
	if err != nil {
		return "", err
	}

	sb, err := sv.SigningBytes()
	if err != nil {
		return "", err
	}
	digest := blake2b.Sum256(sb)

	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return "", errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	raw, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return "", errors.Wrap(err, "secp256k1 signing failed")
	}
	sig, err := types.NewSecp256k1Signature(raw)
	if err != nil {
		return "", err
	}

	sv.Signature = &sig
	return SerializeVoucher(sv)
}

// VerifyVoucherSignature checks an encoded voucher's signature against the
// given signer address. secp256k1 addresses use recover-and-match against the
// given address; BLS addresses carry the public key in their payload and
// verify directly.
func VerifyVoucherSignature(encodedVoucher, signerAddress string) (bool, error) {
	sv, err := DeserializeVoucher(encodedVoucher)
	if err != nil {
		return false, err
	}
	addr, err := address.FromString(signerAddress)
	if err != nil {
		return false, err
	}
	if sv.Signature == nil {
		return false, sigerrors.ErrVoucherNotSigned
	}

	sb, err := sv.SigningBytes()
	if err != nil {
		return false, err
	}
	digest := blake2b.Sum256(sb)

	switch addr.Protocol() {
	case address.SECP256K1:
		if len(sv.Signature.Data) != types.SignatureBytesSecp256k1 {
			return false, errors.Wrapf(sigerrors.ErrInvalidLength,
				"secp256k1 signature must be %d bytes, got %d", types.SignatureBytesSecp256k1, len(sv.Signature.Data))
		}
		pubkey, err := ethcrypto.Ecrecover(digest[:], sv.Signature.Data)
		if err != nil {
			return false, errors.Wrap(err, "public key recovery failed")
		}
		recovered, err := address.NewSecp256k1(pubkey)
		if err != nil {
			return false, err
		}
		if !recovered.Equal(addr) {
			return false, sigerrors.ErrAddressMismatch
		}
		return ethcrypto.VerifySignature(pubkey, digest[:], sv.Signature.Data[:64]), nil

	case address.BLS:
		pk, err := bls.NewPublicKeyFromBytes(addr.Payload())
		if err != nil {
			return false, err
		}
		sig, err := bls.NewSignatureFromBytes(sv.Signature.Data)
		if err != nil {
			return false, err
		}
		return bls.Verify(pk, digest[:], sig)

	default:
		return false, errors.Wrapf(sigerrors.ErrUnsupportedProtocol,
			"signer address protocol %d", addr.Protocol())
	}
}
