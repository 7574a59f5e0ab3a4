// Package capture observes the system clipboard.
//
// A Poller turns a Reader into a lazy stream of raw clips: nothing is read
// until Watch is called, the stream runs until its context is cancelled,
// and Watch may be called again afterwards to start a fresh stream.
// Reading never modifies the clipboard. Writer implements the reverse
// direction for explicit copy requests.
package capture
