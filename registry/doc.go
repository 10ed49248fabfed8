/*
Package registry maintains the ordered member set of one instance.

Members are kept in a circular singly linked list represented as a successor
map. The reserved sentinel identity anchors the list: following the
successor chain from the sentinel visits every current member exactly once
and returns to the sentinel. Insertion always happens at the head, so
enumeration returns the most recently added member first. Absence from the
list is signaled by a zero successor, which makes membership checks a single
map lookup.

All mutations are gated by the engine package and validated before any state
is touched, so a rejected call leaves the registry unchanged.
*/
package registry
