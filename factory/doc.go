/*
Package factory creates engine instances and keeps the creation books.

Creation is deterministic: the instance identity is derived from the chain
ID, the creator and a caller chosen salt, so the same inputs always name
the same instance. The factory wires a registry and an engine together,
runs the one time membership setup and records who created what and when.
Per creator records can be listed newest first with cursor pagination.

This package holds no authorization logic. Everything privileged happens
inside the engine it hands out.
*/
package factory
