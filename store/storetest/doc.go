// Package storetest provides helpers for testing code that depends on
// store.Store: a backend-agnostic contract suite, hit/miss assertions and a
// store wrapper that injects failures.
package storetest
