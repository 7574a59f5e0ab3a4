// Package clips holds the clipboard history domain: the Clip model, the
// storage-format filter applied to raw captures, and Store, the ordered,
// deduplicated, in-memory history that every other component reads and
// mutates through.
//
// # Ordering
//
// Store keeps clips newest-first. Organic captures and non-silent updates
// go to the front; silent updates replace a clip where it stands; bulk
// hydration (AddClips) appends at the tail without deduplication.
//
// # Observers
//
// Subscribe registers a callback that receives an Event after each
// mutation has been applied. Callbacks run on the mutating goroutine with
// no lock held and must not block for long; the returned function removes
// the subscription.
package clips
