// Package wallet derives scheme-specific key pairs and network-tagged
// addresses from mnemonics, raw seeds or raw secrets.
package wallet

import (
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
	bip39 "github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"

	"github.com/filwallet/filsigner/pkg/address"
	"github.com/filwallet/filsigner/pkg/bls"
	"github.com/filwallet/filsigner/pkg/sigerrors"
)

// SecretKeyBytes is the private scalar size of both schemes.
const SecretKeyBytes = 32

// mnemonicEntropyBits yields a 24-word phrase.
const mnemonicEntropyBits = 256

// ExtendedKey is the result of one derivation call: a key pair and the
// string form of its network-tagged address. Immutable after construction.
type ExtendedKey struct {
	PrivateKey []byte
	PublicKey  []byte
	Address    string
}

// wordlistByCode maps mnemonic language codes to their BIP39 wordlists.
var wordlistByCode = map[string][]string{
	"en":      wordlists.English,
	"zh-hans": wordlists.ChineseSimplified,
	"zh-hant": wordlists.ChineseTraditional,
	"fr":      wordlists.French,
	"it":      wordlists.Italian,
	"ja":      wordlists.Japanese,
	"ko":      wordlists.Korean,
	"es":      wordlists.Spanish,
}

// the bip39 wordlist is package-global state in go-bip39; serialize access.
var wordlistMu sync.Mutex

// GenerateMnemonic returns a fresh random 24-word English mnemonic.
func GenerateMnemonic() (string, error) {
	wordlistMu.Lock()
	defer wordlistMu.Unlock()
	bip39.SetWordList(wordlists.English)

	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to build mnemonic")
	}
	return mnemonic, nil
}

// Derive resolves the wordlist by language code, validates the mnemonic,
// stretches it with the password and derives the key at path. The network
// tag comes from the path's coin type.
func Derive(mnemonic, path, password, languageCode string) (*ExtendedKey, error) {
	list, ok := wordlistByCode[strings.ToLower(languageCode)]
	if !ok {
		return nil, errors.Wrapf(sigerrors.ErrUnsupportedLanguage, "language code %q", languageCode)
	}

	wordlistMu.Lock()
	bip39.SetWordList(list)
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, password)
	bip39.SetWordList(wordlists.English)
	wordlistMu.Unlock()
	if err != nil {
		return nil, errors.Wrap(sigerrors.ErrInvalidMnemonic, err.Error())
	}

	return DeriveFromSeed(seed, path)
}

// DeriveFromSeed derives the key at path from a raw seed, for cold or
// hardware-seed workflows.
func DeriveFromSeed(seed []byte, path string) (*ExtendedKey, error) {
	dp, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build master key")
	}

	child := master
	for _, seg := range dp.segments {
		idx := seg.index
		if seg.hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		child, err = child.Derive(idx)
		if err != nil {
			return nil, errors.Wrap(err, "child derivation failed")
		}
	}

	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract private key")
	}
	pub := priv.PubKey().SerializeUncompressed()

	addr, err := address.NewSecp256k1(pub)
	if err != nil {
		return nil, err
	}
	addr.SetNetwork(networkFor(dp.IsTestnet()))

	return &ExtendedKey{
		PrivateKey: priv.Serialize(),
		PublicKey:  pub,
		Address:    addr.String(),
	}, nil
}

// Recover rebuilds a secp256k1 key pair and address from a raw secret. No
// path derivation; the network is the explicit flag.
func Recover(privateKey []byte, testnet bool) (*ExtendedKey, error) {
	if len(privateKey) != SecretKeyBytes {
		return nil, errors.Wrapf(sigerrors.ErrInvalidLength,
			"private key must be %d bytes, got %d", SecretKeyBytes, len(privateKey))
	}

	priv, pub := btcec.PrivKeyFromBytes(privateKey)
	pubBytes := pub.SerializeUncompressed()

	addr, err := address.NewSecp256k1(pubBytes)
	if err != nil {
		return nil, err
	}
	addr.SetNetwork(networkFor(testnet))

	return &ExtendedKey{
		PrivateKey: priv.Serialize(),
		PublicKey:  pubBytes,
		Address:    addr.String(),
	}, nil
}

// RecoverBLS rebuilds a BLS key pair and address from a raw secret. The
// address payload is the full serialized public key; BLS verification
// depends on that embedding.
func RecoverBLS(privateKey []byte, testnet bool) (*ExtendedKey, error) {
	sk, err := bls.NewPrivateKeyFromBytes(privateKey)
	if err != nil {
		return nil, err
	}
	pub := sk.PublicKey().Bytes()

	addr, err := address.NewBLS(pub)
	if err != nil {
		return nil, err
	}
	addr.SetNetwork(networkFor(testnet))

	return &ExtendedKey{
		PrivateKey: sk.Bytes(),
		PublicKey:  pub,
		Address:    addr.String(),
	}, nil
}

func networkFor(testnet bool) address.Network {
	if testnet {
		return address.Testnet
	}
	return address.Mainnet
}
