// Package syncer pushes captured clips to the remote drive and keeps the
// remote listing cursor.
//
// Uploads triggered by capture run in the background and are never
// retried; the next capture or an explicit upload request is the retry
// path. Every failure is handed to a Reporter and flips the store's sync
// status to rejected.
package syncer
