// Package drive is the remote store clips are synced to: an S3 bucket (or
// an S3-compatible service such as MinIO).
//
// Every clip becomes one JSON object whose key is derived from its capture
// time and id, so uploading the same clip twice overwrites the same object.
// Keys sort by capture time, and the last key of a listing page is the
// cursor for the next one.
package drive
