// Package models defines the client-side values shared between the
// credential manager, the remote drive and the persistence layer.
package models
