package drive

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
)

// TokenSource hands out the current session credentials.
type TokenSource interface {
	Token(ctx context.Context) (models.Credentials, error)
}

// SessionProvider exposes session credentials to the AWS SDK.
type SessionProvider struct {
	Source TokenSource
}

func (p SessionProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	c, err := p.Source.Token(ctx)
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("session credentials: %w", err)
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return aws.Credentials{}, fmt.Errorf("session carries no storage keys")
	}
	return aws.Credentials{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Source:          "clipkeeper-session",
		CanExpire:       !c.Expiry.IsZero(),
		Expires:         c.Expiry,
	}, nil
}

type ClientOptions struct {
	Region       string
	BaseEndpoint string

	// Static keys take precedence over Session when both are set.
	AccessKeyID     string
	SecretAccessKey string
	Session         TokenSource
}

// NewClient builds the S3 client and the credentials cache behind it. The
// cache must be invalidated when the session changes.
func NewClient(ctx context.Context, o ClientOptions) (*s3.Client, *aws.CredentialsCache, error) {
	var provider aws.CredentialsProvider
	switch {
	case o.AccessKeyID != "" && o.SecretAccessKey != "":
		provider = credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, "")
	case o.Session != nil:
		provider = SessionProvider{Source: o.Session}
	default:
		return nil, nil, fmt.Errorf("no storage credentials configured")
	}
	cache := aws.NewCredentialsCache(provider)

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(cache),
	)
	if err != nil {
		return nil, nil, err
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		so.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return client, cache, nil
}
