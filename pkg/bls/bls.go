// Package bls implements the BLS12-381 signature scheme used on chain:
// secret keys are 32-byte little-endian scalars, public keys are compressed
// G1 points and signatures are compressed G2 points. Messages are mapped to
// G2 with the standard hash-to-curve suite before signing, so the scheme
// hashes internally; callers pass raw signing bytes.
package bls

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/sigerrors"
)

const (
	// SecretKeyBytes is the serialized secret scalar size.
	SecretKeyBytes = 32
	// PublicKeyBytes is the compressed G1 public key size.
	PublicKeyBytes = 48
	// SignatureBytes is the compressed G2 signature size.
	SignatureBytes = 96
)

// dst is the hash-to-curve domain separation tag of the basic G2 scheme.
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

var g1Gen, g1GenNeg bls12381.G1Affine

func init() {
	_, _, g1, _ := bls12381.Generators()
	g1Gen = g1
	g1GenNeg.Neg(&g1)
}

// PrivateKey is a scalar in the BLS12-381 scalar field.
type PrivateKey struct {
	scalar fr.Element
}

// PublicKey is a point in G1.
type PublicKey struct {
	point bls12381.G1Affine
}

// Signature is a point in G2.
type Signature struct {
	point bls12381.G2Affine
}

// NewPrivateKeyFromBytes parses a 32-byte little-endian secret scalar. The
// value must be a canonical nonzero field element.
func NewPrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != SecretKeyBytes {
		return nil, errors.Wrapf(sigerrors.ErrInvalidLength,
			"bls secret key must be %d bytes, got %d", SecretKeyBytes, len(data))
	}

	v := new(big.Int).SetBytes(reverse(data))
	if v.Sign() == 0 || v.Cmp(fr.Modulus()) >= 0 {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, "bls secret key is not a valid scalar")
	}

	sk := new(PrivateKey)
	sk.scalar.SetBigInt(v)
	return sk, nil
}

// GeneratePrivateKey draws a fresh random secret scalar.
func GeneratePrivateKey() (*PrivateKey, error) {
	sk := new(PrivateKey)
	if _, err := sk.scalar.SetRandom(); err != nil {
		return nil, errors.Wrap(err, "failed to sample random scalar")
	}
	return sk, nil
}

// Bytes returns the little-endian scalar serialization.
func (sk *PrivateKey) Bytes() []byte {
	be := sk.scalar.Bytes() // big-endian [32]byte
	return reverse(be[:])
}

// PublicKey derives the G1 public key.
func (sk *PrivateKey) PublicKey() *PublicKey {
	var scalar big.Int
	sk.scalar.BigInt(&scalar)

	pk := new(PublicKey)
	pk.point.ScalarMultiplication(&g1Gen, &scalar)
	return pk
}

// Sign maps the message to G2 and multiplies by the secret scalar.
func (sk *PrivateKey) Sign(msg []byte) (*Signature, error) {
	h, err := bls12381.HashToG2(msg, dst)
	if err != nil {
		return nil, errors.Wrap(err, "hash to curve failed")
	}

	var scalar big.Int
	sk.scalar.BigInt(&scalar)

	sig := new(Signature)
	sig.point.ScalarMultiplication(&h, &scalar)
	return sig, nil
}

// NewPublicKeyFromBytes parses a compressed G1 point, rejecting points
// outside the prime-order subgroup and the identity.
func NewPublicKeyFromBytes(data []byte) (*PublicKey, error) {
	if len(data) != PublicKeyBytes {
		return nil, errors.Wrapf(sigerrors.ErrInvalidLength,
			"bls public key must be %d bytes, got %d", PublicKeyBytes, len(data))
	}
	pk := new(PublicKey)
	if _, err := pk.point.SetBytes(data); err != nil {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	if pk.point.IsInfinity() {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, "bls public key is the identity point")
	}
	return pk, nil
}

// Bytes returns the compressed G1 serialization.
func (pk *PublicKey) Bytes() []byte {
	b := pk.point.Bytes()
	return b[:]
}

// NewSignatureFromBytes parses a compressed G2 point.
func NewSignatureFromBytes(data []byte) (*Signature, error) {
	if len(data) != SignatureBytes {
		return nil, errors.Wrapf(sigerrors.ErrInvalidLength,
			"bls signature must be %d bytes, got %d", SignatureBytes, len(data))
	}
	sig := new(Signature)
	if _, err := sig.point.SetBytes(data); err != nil {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	return sig, nil
}

// Bytes returns the compressed G2 serialization.
func (sig *Signature) Bytes() []byte {
	b := sig.point.Bytes()
	return b[:]
}

// Verify checks e(pk, H(msg)) == e(g1, sig) with a single pairing product.
func Verify(pk *PublicKey, msg []byte, sig *Signature) (bool, error) {
	if pk == nil || sig == nil {
		return false, nil
	}
	h, err := bls12381.HashToG2(msg, dst)
	if err != nil {
		return false, errors.Wrap(err, "hash to curve failed")
	}
	return bls12381.PairingCheck(
		[]bls12381.G1Affine{pk.point, g1GenNeg},
		[]bls12381.G2Affine{h, sig.point},
	)
}

// VerifyAggregate checks one aggregate signature against per-message hashed
// points: e(pk_1, h_1) * ... * e(pk_n, h_n) == e(g1, sig). Hash points are
// taken pre-computed so callers can fan the hashing out.
func VerifyAggregate(pks []*PublicKey, hashes []bls12381.G2Affine, sig *Signature) (bool, error) {
	if len(pks) == 0 || len(pks) != len(hashes) {
		return false, errors.Wrap(sigerrors.ErrInvalidLength, "public key and hash counts must match and be nonzero")
	}

	p := make([]bls12381.G1Affine, 0, len(pks)+1)
	q := make([]bls12381.G2Affine, 0, len(hashes)+1)
	for i := range pks {
		p = append(p, pks[i].point)
		q = append(q, hashes[i])
	}
	p = append(p, g1GenNeg)
	q = append(q, sig.point)

	return bls12381.PairingCheck(p, q)
}

// HashToPoint maps signing bytes to the G2 point the scheme signs.
func HashToPoint(msg []byte) (bls12381.G2Affine, error) {
	return bls12381.HashToG2(msg, dst)
}

// Aggregate sums signatures into one aggregate signature.
func Aggregate(sigs []*Signature) (*Signature, error) {
	if len(sigs) == 0 {
		return nil, errors.Wrap(sigerrors.ErrInvalidLength, "no signatures to aggregate")
	}
	var acc bls12381.G2Jac
	for _, s := range sigs {
		var p bls12381.G2Jac
		p.FromAffine(&s.point)
		acc.AddAssign(&p)
	}
	out := new(Signature)
	out.point.FromJacobian(&acc)
	return out, nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
