// Package indicator provides technical indicator calculations over bar data.
//
// All functions are pure: they take ordered numeric sequences and return
// derived series or values with no hidden state, so they are safe to call
// from any goroutine on caller-owned slices.
package indicator
