// Package quorumtest provides test helpers shared by quorum packages:
// deterministic signer keys, ascending order batch signing and a recording
// event sink.
package quorumtest
