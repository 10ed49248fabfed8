package cash

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Ledger keeps native asset and fungible token balances. The zero token
// identity is reserved for the native asset and must not be used as a
// token key, which mirrors how transfers designate their payment medium.
type Ledger struct {
	native map[quorum.Identity]uint64
	tokens map[quorum.Identity]map[quorum.Identity]uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		native: make(map[quorum.Identity]uint64),
		tokens: make(map[quorum.Identity]map[quorum.Identity]uint64),
	}
}

// IssueCoins adds the given amount of the native asset to the destination.
func (l *Ledger) IssueCoins(dest quorum.Identity, amount uint64) error {
	if dest.IsZero() {
		return errors.Wrap(errors.ErrInvalidIdentity, "destination")
	}
	if l.native[dest]+amount < l.native[dest] {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	l.native[dest] += amount
	return nil
}

// IssueTokens adds the given amount of a token to the destination.
func (l *Ledger) IssueTokens(token, dest quorum.Identity, amount uint64) error {
	if token.IsZero() {
		return errors.Wrap(errors.ErrInvalidIdentity, "token")
	}
	if dest.IsZero() {
		return errors.Wrap(errors.ErrInvalidIdentity, "destination")
	}
	book := l.tokens[token]
	if book == nil {
		book = make(map[quorum.Identity]uint64)
		l.tokens[token] = book
	}
	if book[dest]+amount < book[dest] {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	book[dest] += amount
	return nil
}

// Balance returns the native asset balance of an identity.
func (l *Ledger) Balance(id quorum.Identity) uint64 {
	return l.native[id]
}

// TokenBalance returns the balance of an identity for the given token.
func (l *Ledger) TokenBalance(token, id quorum.Identity) uint64 {
	return l.tokens[token][id]
}

// MoveCoins moves the given amount of the native asset from src to dest.
// If src doesn't have sufficient funds, it fails.
func (l *Ledger) MoveCoins(src, dest quorum.Identity, amount uint64) error {
	if dest.IsZero() {
		return errors.Wrap(errors.ErrInvalidIdentity, "destination")
	}
	if l.native[src] < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, moving %d", l.native[src], amount)
	}
	if l.native[dest]+amount < l.native[dest] {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	l.native[src] -= amount
	l.native[dest] += amount
	return nil
}

// MoveTokens moves the given amount of a token from src to dest.
func (l *Ledger) MoveTokens(token, src, dest quorum.Identity, amount uint64) error {
	if token.IsZero() {
		return errors.Wrap(errors.ErrInvalidIdentity, "token")
	}
	if dest.IsZero() {
		return errors.Wrap(errors.ErrInvalidIdentity, "destination")
	}
	book := l.tokens[token]
	if book[src] < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, moving %d", book[src], amount)
	}
	if book[dest]+amount < book[dest] {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	if book == nil {
		book = make(map[quorum.Identity]uint64)
		l.tokens[token] = book
	}
	book[src] -= amount
	book[dest] += amount
	return nil
}

// Account binds a ledger to one holding identity so that all moves
// originate from it. It satisfies the engine CoinMover port.
type Account struct {
	ledger *Ledger
	holder quorum.Identity
}

// Account returns the outbound view of the ledger for the given holder.
func (l *Ledger) Account(holder quorum.Identity) *Account {
	return &Account{ledger: l, holder: holder}
}

func (a *Account) MoveCoins(dest quorum.Identity, amount uint64) error {
	return a.ledger.MoveCoins(a.holder, dest, amount)
}

func (a *Account) MoveTokens(token, dest quorum.Identity, amount uint64) error {
	return a.ledger.MoveTokens(token, a.holder, dest, amount)
}
