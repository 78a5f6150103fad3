// Package planner chooses snake moves: a buffered remote planner backed by a
// registry provider, a local greedy planner and the safe fallback rule.
package planner

import "errors"

var (
	// ErrTransport wraps any failure talking to the provider.
	ErrTransport = errors.New("planner: provider request failed")

	// ErrNoMoves means the provider answered without a single valid direction.
	ErrNoMoves = errors.New("planner: no valid moves in response")
)
