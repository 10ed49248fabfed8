/*
Package engine implements the authorization core of quorum.

Every governed action is a message. The engine builds a domain separated,
nonce bound commitment for the message, consumes the nonce, verifies the
supplied signature batch against the current membership and weight state,
and applies the action exactly once. A failed call consumes its nonce but
causes no other state change.

The nonce is incremented before verification on purpose. A rejected call
burns its nonce and must be resubmitted with fresh signatures, which keeps
repeated guessing against a fixed nonce from being cheap. Do not change
this to increment only on success.

Signature batches must be sorted in strictly ascending order of the
recovered signer identity. The single greater-than comparison per slot
rejects both unsorted and duplicate signers in one O(n) pass with no
auxiliary set, at the cost of requiring relayers to pre-sort.
*/
package engine
