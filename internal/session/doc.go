// Package session owns one calculator: the engine state, its history log and
// the lock that serializes every operation on them.
//
// Callers drive a Session through explicit methods (InputDigit,
// PerformOperation, RestoreFromHistory, ...) or through Execute with a
// Command when the action arrives from a remote adapter. Each call returns a
// Snapshot of what the keypad should show. Completed folds are recorded in
// history, and an optional Observer sees every action and fold.
package session
