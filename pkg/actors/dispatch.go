package actors

import (
	"encoding/base64"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/filwallet/filsigner/pkg/sigerrors"
)

// DeserializeParams decodes base64 method parameters for a recognized
// (actor kind, method number) pair. Settle and Collect carry no parameters
// and short-circuit without decoding; every other unknown pair errors.
func DeserializeParams(paramsB64, actorKind string, method uint64) (MessageParams, error) {
	raw, err := base64.StdEncoding.DecodeString(paramsB64)
	if err != nil {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}

	switch actorKind {
	case ActorInit:
		return deserializeInitParams(raw, method)
	case ActorMultisig:
		return deserializeMultisigParams(raw, method)
	case ActorPaymentChannel:
		return deserializePaychParams(raw, method)
	default:
		return nil, errors.Wrapf(sigerrors.ErrUnknownActor, "actor kind %q", actorKind)
	}
}

func deserializeInitParams(raw []byte, method uint64) (MessageParams, error) {
	switch method {
	case MethodInitExec:
		var p ExecParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Wrapf(sigerrors.ErrUnknownMethod, "init actor method %d", method)
	}
}

func deserializeMultisigParams(raw []byte, method uint64) (MessageParams, error) {
	switch method {
	case MethodMultisigPropose:
		var p ProposeParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case MethodMultisigApprove, MethodMultisigCancel:
		var p TxnIDParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case MethodMultisigAddSigner:
		var p AddSignerParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case MethodMultisigRemoveSigner:
		var p RemoveSignerParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case MethodMultisigSwapSigner:
		var p SwapSignerParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case MethodMultisigChangeNumApprovalsThreshold:
		var p ChangeNumApprovalsThresholdParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case MethodMultisigLockBalance:
		var p LockBalanceParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Wrapf(sigerrors.ErrUnknownMethod, "multisig actor method %d", method)
	}
}

func deserializePaychParams(raw []byte, method uint64) (MessageParams, error) {
	switch method {
	case MethodPaychUpdateChannelState:
		var p UpdateChannelStateParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case MethodPaychSettle, MethodPaychCollect:
		// No parameters to decode for these methods.
		return RawParams(nil), nil
	default:
		return nil, errors.Wrapf(sigerrors.ErrUnknownMethod, "payment channel actor method %d", method)
	}
}

// DeserializeConstructorParams decodes base64 constructor parameters for an
// actor code tag. The legacy multisig tag decodes the deprecated shape and
// migrates it to the current one with a zero start epoch.
func DeserializeConstructorParams(paramsB64, codeTag string) (MessageParams, error) {
	raw, err := base64.StdEncoding.DecodeString(paramsB64)
	if err != nil {
		return nil, errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}

	switch codeTag {
	case ActorMultisig:
		var p MultisigConstructorParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ActorPaymentChannel:
		var p PaychConstructorParams
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CodeLegacyMultisigV1:
		var legacy MultisigConstructorParamsV1
		if err := decode(raw, &legacy); err != nil {
			return nil, err
		}
		return MultisigConstructorParams{
			Signers:               legacy.Signers,
			NumApprovalsThreshold: legacy.NumApprovalsThreshold,
			UnlockDuration:        legacy.UnlockDuration,
			StartEpoch:            0,
		}, nil
	default:
		return nil, errors.Wrapf(sigerrors.ErrUnknownActor, "code tag %q", codeTag)
	}
}

// SerializeParams returns the canonical CBOR encoding of a parameter payload.
// Absent byte fields encode as empty byte strings, never as CBOR nulls.
func SerializeParams(params MessageParams) ([]byte, error) {
	switch p := params.(type) {
	case RawParams:
		return []byte(p), nil
	case ExecParams:
		if p.ConstructorParams == nil {
			p.ConstructorParams = []byte{}
		}
		params = p
	case ProposeParams:
		if p.Params == nil {
			p.Params = []byte{}
		}
		params = p
	case TxnIDParams:
		if p.ProposalHash == nil {
			p.ProposalHash = []byte{}
		}
		params = p
	case UpdateChannelStateParams:
		if p.Secret == nil {
			p.Secret = []byte{}
		}
		params = p
	}

	out, err := cbor.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal params")
	}
	return out, nil
}

func decode(raw []byte, v any) error {
	if err := cbor.Unmarshal(raw, v); err != nil {
		return errors.Wrap(sigerrors.ErrMalformedInput, err.Error())
	}
	return nil
}
