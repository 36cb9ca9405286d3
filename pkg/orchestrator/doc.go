// Package orchestrator owns the mutable state of one form session: the values
// store, the derived visibility, the option-list cache, the per-field errors
// and the wizard position. Every mutation ends with a prune pass so that no
// hidden field ever keeps a value.
//
// An Orchestrator is not safe for concurrent mutation; callers serialise
// events. Option fetches complete on their own goroutines and only touch the
// option cache.
package orchestrator
