package models

import "time"

// RemoteFile is one object in the remote listing.
type RemoteFile struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// UploadResult is what the drive reports for one clip. Skipped is set
// when the size policy kept the clip local.
type UploadResult struct {
	ClipID  string `json:"clipId"`
	Key     string `json:"key,omitempty"`
	Size    int64  `json:"size"`
	Skipped bool   `json:"skipped,omitempty"`
}
