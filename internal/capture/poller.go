package capture

import (
	"bytes"
	"context"
	"crypto/sha256"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
)

// clipNamespace scopes content-derived clip ids.
var clipNamespace = uuid.MustParse("6f1c8e52-3a2b-4f0e-9d7c-2b51a0c7e4d3")

const DefaultPollInterval = 500 * time.Millisecond

// Poller samples a Reader on a fixed interval and emits a clip whenever
// the clipboard content changes.
type Poller struct {
	reader   Reader
	interval time.Duration
	now      func() time.Time
	logger   logging.Logger
}

func NewPoller(r Reader, interval time.Duration, logger logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{reader: r, interval: interval, now: time.Now, logger: logger}
}

// Watch starts sampling and returns the stream of changes. The channel is
// closed once ctx is done. The content present when Watch starts is
// emitted as the first change.
func (p *Poller) Watch(ctx context.Context) <-chan clips.Clip {
	out := make(chan clips.Clip)

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		var last []byte
		for {
			content, err := p.reader.Read(ctx)
			switch {
			case err != nil:
				if ctx.Err() == nil {
					p.logger.Debug(ctx, "clipboard read failed", "err", err)
				}
			default:
				fp := Fingerprint(content)
				if !bytes.Equal(fp, last) {
					last = fp
					if !content.Empty() {
						select {
						case out <- p.toClip(content, fp):
						case <-ctx.Done():
							return
						}
					}
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}

func (p *Poller) toClip(c Content, fp []byte) clips.Clip {
	clip := clips.Clip{
		ID:         uuid.NewSHA1(clipNamespace, fp).String(),
		Type:       clips.TypeText,
		PlainText:  c.PlainText,
		RichText:   c.RichText,
		HTMLText:   c.HTMLText,
		CapturedAt: p.now(),
	}
	if len(c.PNG) > 0 {
		clip.DataURI = EncodeDataURI(c.PNG)
		if c.PlainText == "" {
			clip.Type = clips.TypeImage
		}
	}
	return clip
}

// Fingerprint hashes every representation of c. Equal content yields
// equal fingerprints.
func Fingerprint(c Content) []byte {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(c.PlainText), []byte(c.RichText), []byte(c.HTMLText), c.PNG} {
		var n [8]byte
		l := uint64(len(part))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write(part)
	}
	return h.Sum(nil)
}
