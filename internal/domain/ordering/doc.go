// Package ordering computes position values for todos.
//
// Positions are float64 keys; an owner's list is its todos sorted by position
// ascending. New todos are appended Gap past the current maximum, single
// moves take the midpoint of the two neighbours, and when repeated halving
// runs out of float64 resolution the caller rebalances the list back to
// evenly spaced values with Spaced.
package ordering
