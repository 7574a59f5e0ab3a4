package clips

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
)

// Type classifies a clip. The set is open: readers may add tags later.
type Type string

const (
	TypeText  Type = "text"
	TypeImage Type = "image"
)

// Clip is one captured clipboard snapshot. Empty payload strings mean the
// representation is absent.
type Clip struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	PlainText  string    `json:"plainText,omitempty"`
	RichText   string    `json:"richText,omitempty"`
	HTMLText   string    `json:"htmlText,omitempty"`
	DataURI    string    `json:"dataURI,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

// HasPayload reports whether at least one representation is present.
func (c Clip) HasPayload() bool {
	return c.PlainText != "" || c.RichText != "" || c.HTMLText != "" || c.DataURI != ""
}

// Size is the total byte length of all representations. The sync backend
// compares it against the configured threshold.
func (c Clip) Size() int64 {
	return int64(len(c.PlainText) + len(c.RichText) + len(c.HTMLText) + len(c.DataURI))
}

// Validate checks the invariants every stored clip must satisfy.
func (c Clip) Validate() error {
	if c.ID == "" || !c.HasPayload() {
		return common.ErrInvalidClip
	}
	return nil
}

// ValidateForUpload is Validate plus a capture time at or after the Unix
// epoch. Remote keys are ordered by capture time and cannot encode earlier
// or missing times.
func (c Clip) ValidateForUpload() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.CapturedAt.Before(time.Unix(0, 0)) {
		return fmt.Errorf("%w: no capture time", common.ErrInvalidClip)
	}
	return nil
}

// SyncStatus is the outcome of the most recent remote sync attempt.
type SyncStatus string

const (
	SyncIdle     SyncStatus = ""
	SyncPending  SyncStatus = "pending"
	SyncResolved SyncStatus = "resolved"
	SyncRejected SyncStatus = "rejected"
)
