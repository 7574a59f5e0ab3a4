package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
)

// API is the subset of the S3 client the drive uses.
type API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const DefaultPageSize = 100

type S3Drive struct {
	api      API
	bucket   string
	prefix   string
	pageSize int32
	logger   logging.Logger
}

func NewS3Drive(api API, bucket, prefix string, logger logging.Logger) *S3Drive {
	return &S3Drive{
		api:      api,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		pageSize: DefaultPageSize,
		logger:   logger,
	}
}

// ObjectKey is the object name of c: the capture time in nanoseconds,
// zero-padded so keys sort chronologically, followed by the clip id.
func ObjectKey(prefix string, c clips.Clip) string {
	name := fmt.Sprintf("%020d-%s.json", c.CapturedAt.UnixNano(), c.ID)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Eligible applies the size policy: a threshold <= 0 means no limit,
// otherwise clips larger than threshold bytes stay local.
func Eligible(c clips.Clip, threshold int64) bool {
	return threshold <= 0 || c.Size() <= threshold
}

// Upload stores c unless the size policy excludes it. Clips without an id,
// payload or capture time are rejected with common.ErrInvalidClip.
func (d *S3Drive) Upload(ctx context.Context, c clips.Clip, threshold int64) (models.UploadResult, error) {
	res := models.UploadResult{ClipID: c.ID, Size: c.Size()}
	if err := c.ValidateForUpload(); err != nil {
		return res, err
	}
	if !Eligible(c, threshold) {
		res.Skipped = true
		d.logger.Debug(ctx, "clip over sync threshold", "id", c.ID, "size", res.Size, "threshold", threshold)
		return res, nil
	}

	body, err := json.Marshal(c)
	if err != nil {
		return res, fmt.Errorf("encode clip: %w", err)
	}

	key := ObjectKey(d.prefix, c)
	_, err = d.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return res, mapError(err)
	}

	res.Key = key
	return res, nil
}

// ListFiles returns the objects after cursor and the cursor for the next
// call. An empty page returns cursor unchanged.
func (d *S3Drive) ListFiles(ctx context.Context, cursor string) ([]models.RemoteFile, string, error) {
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(d.bucket),
		MaxKeys: aws.Int32(d.pageSize),
	}
	if d.prefix != "" {
		in.Prefix = aws.String(d.prefix + "/")
	}
	if cursor != "" {
		in.StartAfter = aws.String(cursor)
	}

	out, err := d.api.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, cursor, mapError(err)
	}

	files := make([]models.RemoteFile, 0, len(out.Contents))
	for _, obj := range out.Contents {
		f := models.RemoteFile{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
		if obj.LastModified != nil {
			f.LastModified = *obj.LastModified
		}
		files = append(files, f)
	}

	next := cursor
	if len(files) > 0 {
		next = files[len(files)-1].Key
	}
	return files, next, nil
}

// statusCoder is satisfied by the SDK's HTTP response errors.
type statusCoder interface {
	HTTPStatusCode() int
}

func mapError(err error) error {
	var re statusCoder
	if errors.As(err, &re) {
		switch re.HTTPStatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
		case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
		}
	}
	return err
}
