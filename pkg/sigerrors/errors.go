// Package sigerrors defines the error categories shared by every fallible
// operation in the signer. Callers match them with errors.Is; the concrete
// cause is carried by wrapping.
package sigerrors

import "errors"

var (
	// ErrMalformedInput is returned when a base64 or CBOR payload cannot be decoded.
	ErrMalformedInput = errors.New("malformed input encoding")

	// ErrInvalidLength is returned when a key or signature buffer has the wrong size.
	ErrInvalidLength = errors.New("invalid length")

	// ErrInvalidMnemonic is returned when a mnemonic fails its wordlist checksum.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrUnsupportedLanguage is returned for an unrecognized mnemonic language code.
	ErrUnsupportedLanguage = errors.New("unsupported mnemonic language")

	// ErrInvalidPath is returned for a malformed BIP44 derivation path.
	ErrInvalidPath = errors.New("invalid derivation path")

	// ErrUnsupportedProtocol is returned when an address protocol has no signing scheme.
	ErrUnsupportedProtocol = errors.New("unsupported signing protocol")

	// ErrUnknownActor is returned for an actor kind outside the dispatch table.
	ErrUnknownActor = errors.New("unknown actor kind")

	// ErrUnknownMethod is returned for a method number outside the dispatch table.
	ErrUnknownMethod = errors.New("unknown method for actor")

	// ErrAddressMismatch is returned when a recovered signer address does not
	// match the address the caller asserted.
	ErrAddressMismatch = errors.New("recovered address does not match given address")

	// ErrVoucherNotSigned is returned when verifying a voucher without a signature.
	ErrVoucherNotSigned = errors.New("voucher not signed")
)
