/*
Package quorum is a weighted multi-party authorization engine.

A group of members each holds a voting weight, expressed as a percent of the
total voting power (all weights sum to 100). Every privileged action, such as
changing membership or moving assets out of an instance, requires a batch of
member signatures over a domain-separated, nonce-bound commitment whose
aggregate weight meets a configured threshold.

This root package holds the types shared by all subpackages: the member
Identity with its two reserved values (zero and sentinel), chain ID
validation, and logger plumbing through context.Context. The membership list
lives in the registry package, commitment construction and signature
verification in the engine package, and the raw signature codec in the sigs
package.
*/
package quorum
