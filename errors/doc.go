/*
Package errors implements the error handling used across quorum.

Every failure wraps one of the root errors declared in this package. Root
errors carry a unique numeric code so that callers and clients can match on
the failure kind without string comparison. Use Wrap and Wrapf to layer
context on top of a root error and Is to test what kind of failure an error
represents, regardless of how many times it was wrapped.
*/
package errors
