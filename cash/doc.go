/*
Package cash is an in-memory account book used as the outbound value
collaborator of the engine.

The engine only invokes transfers, it does not define them. This package
provides the simplest honest implementation of that contract: native asset
and per-token balances keyed by identity, with moves that either fully
apply or fail. Account binds a ledger to one holding instance so that it
satisfies the engine CoinMover port.
*/
package cash
