package engine

import (
	"bytes"
	"context"
	"crypto/sha256"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/registry"
	"github.com/iov-one/quorum/sigs"
)

// maxNonce is limited by the client. The greatest supported nonce value at
// client side is
//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
// If greater values must be supported, we get much more complicated client
// code.
const maxNonce = (1 << 53) - 1

// Config binds every commitment produced by an engine to one scheme
// version and one deployment. All values are constants fixed at
// construction, never caller input. Changing any of them invalidates all
// previously collected signatures.
type Config struct {
	SchemeName    string
	SchemeVersion string
	ChainID       string
	Instance      quorum.Identity
}

func (c Config) Validate() error {
	if c.SchemeName == "" {
		return errors.Wrap(errors.ErrMalformedInput, "missing scheme name")
	}
	if c.SchemeVersion == "" {
		return errors.Wrap(errors.ErrMalformedInput, "missing scheme version")
	}
	if !quorum.IsValidChainID(c.ChainID) {
		return errors.Wrapf(errors.ErrMalformedInput, "invalid chain ID %q", c.ChainID)
	}
	return errors.Wrap(c.Instance.Validate(), "instance")
}

// separator returns the domain separator: a fixed hash mixed into every
// commitment to scope signatures to this scheme, version and deployment.
func (c Config) separator() []byte {
	var buf bytes.Buffer
	writeString(&buf, "quorum/separator")
	writeString(&buf, c.SchemeName)
	writeString(&buf, c.SchemeVersion)
	writeString(&buf, c.ChainID)
	writeIdentity(&buf, c.Instance)
	h := sha256.Sum256(buf.Bytes())
	return h[:]
}

// CoinMover is the outbound value port of the engine. The native asset and
// fungible token moves of an authorized transfer go through it. It is a
// collaborator interface: quorum invokes transfers, it does not implement
// them.
type CoinMover interface {
	// MoveCoins transfers the native asset out of the instance.
	MoveCoins(dest quorum.Identity, amount uint64) error
	// MoveTokens invokes the standard transfer of the given fungible
	// token contract.
	MoveTokens(token, dest quorum.Identity, amount uint64) error
}

// Invoker performs an arbitrary outbound call on behalf of the instance
// and returns the call return data.
type Invoker interface {
	Invoke(dest quorum.Identity, amount uint64, payload []byte) ([]byte, error)
}

// Engine gates every sensitive operation of one instance behind weighted
// signature verification.
//
// An engine is strictly sequential: each authorization runs to completion
// before the next one starts. The only hazard is reentrancy through the
// outbound ports, which is rejected by the busy flag.
type Engine struct {
	cfg       Config
	separator []byte
	reg       *registry.Registry
	nonce     uint64
	busy      bool
	coins     CoinMover
	invoker   Invoker
}

// New returns an engine gating the given registry. The coins and invoker
// ports may be nil, in which case the matching actions are rejected with an
// invalid state error.
func New(cfg Config, reg *registry.Registry, coins CoinMover, invoker Invoker) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if reg == nil {
		return nil, errors.Wrap(errors.ErrState, "no registry")
	}
	return &Engine{
		cfg:       cfg,
		separator: cfg.separator(),
		reg:       reg,
		coins:     coins,
		invoker:   invoker,
	}, nil
}

// Nonce returns the value the next commitment will be built with.
func (e *Engine) Nonce() uint64 {
	return e.nonce
}

// Commitment returns the 32 byte value signers must authorize to apply the
// given message at the given nonce. Clients call this to collect
// signatures before submitting.
func (e *Engine) Commitment(msg Msg, nonce uint64) []byte {
	return commitment(e.separator, msg, nonce)
}

// Result describes a committed authorization.
type Result struct {
	// Nonce consumed by this attempt.
	Nonce uint64
	// Data carries the return data of an executed call, if any.
	Data []byte
}

// Authorize verifies the signature batch against the message and the
// current nonce and applies the action exactly once.
//
// The nonce is consumed on every attempt that reaches commitment
// construction, successful or not. A rejected call therefore must be
// resubmitted with fresh signatures over the next nonce.
func (e *Engine) Authorize(ctx context.Context, msg Msg, signatures []byte) (*Result, error) {
	if e.busy {
		return nil, errors.Wrap(errors.ErrReentrancy, "operation in flight")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMalformedInput, "no message")
	}

	comm := commitment(e.separator, msg, e.nonce)
	res := &Result{Nonce: e.nonce}
	if err := e.incrementNonce(); err != nil {
		return nil, err
	}
	logger := quorum.GetLogger(ctx).With("path", msg.Path(), "nonce", res.Nonce)

	if err := msg.Validate(); err != nil {
		logger.Debug("rejected", "cause", err.Error())
		return nil, err
	}
	if err := e.verify(comm, signatures); err != nil {
		logger.Debug("rejected", "cause", err.Error())
		return nil, err
	}

	data, err := e.dispatch(msg)
	if err != nil {
		logger.Debug("rejected", "cause", err.Error())
		return nil, err
	}
	res.Data = data
	logger.Info("authorized")
	return res, nil
}

func (e *Engine) incrementNonce() error {
	if e.nonce >= maxNonce {
		return errors.Wrap(errors.ErrOverflow, "nonce out of range")
	}
	e.nonce++
	return nil
}

// verify walks the packed signature batch once, recovering each signer and
// accumulating member weights until the threshold is met. Signers must be
// strictly ascending by identity, which rejects duplicates in the same
// comparison.
func (e *Engine) verify(comm []byte, signatures []byte) error {
	if len(signatures) == 0 || len(signatures)%sigs.SignatureLength != 0 {
		return errors.Wrapf(errors.ErrMalformedInput, "signature batch of %d bytes", len(signatures))
	}
	count := len(signatures) / sigs.SignatureLength

	var prev quorum.Identity
	var total registry.Weight
	for i := 0; i < count; i++ {
		signer, err := sigs.RecoverSigner(comm, sigs.Split(signatures, i))
		if err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
		if signer.Compare(prev) <= 0 {
			return errors.Wrapf(errors.ErrSignatureOrder, "signer %s at %d", signer, i)
		}
		prev = signer
		if signer == quorum.Sentinel || !e.reg.IsMember(signer) {
			return errors.Wrapf(errors.ErrUnauthorizedSigner, "signer %s at %d", signer, i)
		}
		total += e.reg.Weight(signer)
	}

	if total < e.reg.Threshold() {
		return errors.Wrapf(errors.ErrInsufficientWeight, "%d of required %d", total, e.reg.Threshold())
	}
	return nil
}

// dispatch applies the verified action. Exactly one state transition per
// call, all or nothing.
func (e *Engine) dispatch(msg Msg) ([]byte, error) {
	switch m := msg.(type) {
	case *AddMemberMsg:
		return nil, e.reg.AddMember(m.Member, m.Owners, m.Weights)
	case *RemoveMemberMsg:
		return nil, e.reg.RemoveMember(m.Prev, m.Member, m.Owners, m.Weights)
	case *SwapMemberMsg:
		return nil, e.reg.SwapMember(m.Prev, m.Old, m.New, m.Owners, m.Weights)
	case *ChangeWeightsMsg:
		return nil, e.reg.ChangeWeights(m.Owners, m.Weights)
	case *ChangeThresholdMsg:
		return nil, e.reg.ChangeThreshold(m.Threshold)
	case *CancelMsg:
		// The nonce increment already happened, which is the whole
		// point of a cancel.
		return nil, nil
	case *TransferMsg:
		return nil, e.guarded(func() error {
			return e.transfer(m)
		})
	case *ExecuteMsg:
		var data []byte
		err := e.guarded(func() error {
			if e.invoker == nil {
				return errors.Wrap(errors.ErrState, "no invoker configured")
			}
			out, err := e.invoker.Invoke(m.To, m.Value, m.Payload)
			if err != nil {
				return errors.Wrapf(errors.ErrExternalCall, "execute: %s", err)
			}
			data = out
			return nil
		})
		return data, err
	default:
		return nil, errors.Wrapf(errors.ErrMalformedInput, "unknown message %T", msg)
	}
}

func (e *Engine) transfer(m *TransferMsg) error {
	if e.coins == nil {
		return errors.Wrap(errors.ErrState, "no coin mover configured")
	}
	if m.Token.IsZero() {
		if err := e.coins.MoveCoins(m.To, m.Value); err != nil {
			return errors.Wrapf(errors.ErrExternalCall, "transfer: %s", err)
		}
		return nil
	}
	if err := e.coins.MoveTokens(m.Token, m.To, m.Value); err != nil {
		return errors.Wrapf(errors.ErrExternalCall, "token transfer: %s", err)
	}
	return nil
}

// guarded runs fn holding the exclusive reentrancy flag, released on every
// exit path. Outbound calls run third party code that could reenter the
// engine before fn returns; the flag makes any such attempt fail
// immediately.
func (e *Engine) guarded(fn func() error) (err error) {
	if e.busy {
		return errors.Wrap(errors.ErrReentrancy, "operation in flight")
	}
	e.busy = true
	defer func() {
		e.busy = false
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrPanic, "%v", r)
		}
	}()
	return fn()
}
