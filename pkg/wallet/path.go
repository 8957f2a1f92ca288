package wallet

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/sigerrors"
)

// BIP44 path constants. m/44'/461'/0'/0/0 is the conventional mainnet wallet
// path; coin type 1 marks test networks per SLIP-0044.
const (
	BIP44Purpose     uint32 = 44
	FilecoinCoinType uint32 = 461
	TestnetCoinType  uint32 = 1

	pathComponents = 5
)

type pathSegment struct {
	index    uint32
	hardened bool
}

// DerivationPath is a parsed 5-segment BIP44 path. Hardening is recorded per
// segment exactly as written by the caller.
type DerivationPath struct {
	segments [pathComponents]pathSegment
}

// ParsePath parses "m/44'/461'/0'/0/0" style strings. The master prefix is
// required and the purpose segment must be 44.
func ParsePath(path string) (*DerivationPath, error) {
	if !strings.HasPrefix(path, "m/") && !strings.HasPrefix(path, "M/") {
		return nil, errors.Wrap(sigerrors.ErrInvalidPath, "path must start with m/")
	}
	parts := strings.Split(path[2:], "/")
	if len(parts) != pathComponents {
		return nil, errors.Wrapf(sigerrors.ErrInvalidPath,
			"expected %d path components, got %d", pathComponents, len(parts))
	}

	dp := new(DerivationPath)
	for i, part := range parts {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		if hardened {
			part = part[:len(part)-1]
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(sigerrors.ErrInvalidPath, "component %d: %v", i, err)
		}
		dp.segments[i] = pathSegment{index: uint32(v), hardened: hardened}
	}

	if dp.segments[0].index != BIP44Purpose {
		return nil, errors.Wrapf(sigerrors.ErrInvalidPath,
			"purpose must be %d, got %d", BIP44Purpose, dp.segments[0].index)
	}
	return dp, nil
}

// CoinType returns the coin-type segment without its hardening bit.
func (dp *DerivationPath) CoinType() uint32 { return dp.segments[1].index }

// IsTestnet reports whether the path's coin type marks a test network.
func (dp *DerivationPath) IsTestnet() bool { return dp.CoinType() == TestnetCoinType }
