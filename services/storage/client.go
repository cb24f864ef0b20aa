package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/internal/tracing"
)

// ObjectClient is the slice of the S3 API the archive needs
type ObjectClient interface {
	Put(ctx context.Context, bucket, key, contentType string, data []byte) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Remove(ctx context.Context, bucket, key string) error
}

type s3ObjectClient struct {
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	api        *s3.S3
}

func newS3ObjectClient(cfg *aws.Config) (ObjectClient, error) {
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create S3 session")
	}
	return &s3ObjectClient{
		uploader:   s3manager.NewUploader(sess),
		downloader: s3manager.NewDownloader(sess),
		api:        s3.New(sess),
	}, nil
}

// newR2ObjectClient targets the Cloudflare R2 S3-compatible endpoint of an account
func newR2ObjectClient(accountID, accessKeyID, accessKeySecret string) (ObjectClient, error) {
	return newS3ObjectClient(&aws.Config{
		Endpoint:         aws.String("https://" + accountID + ".r2.cloudflarestorage.com"),
		Region:           aws.String("auto"),
		Credentials:      credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
}

func (c *s3ObjectClient) Put(ctx context.Context, bucket, key, contentType string, data []byte) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3ObjectClient.Put")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	_, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (c *s3ObjectClient) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3ObjectClient.Get")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	buffer := &aws.WriteAtBuffer{}
	_, err := c.downloader.DownloadWithContext(ctx, buffer, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (c *s3ObjectClient) Remove(ctx context.Context, bucket, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3ObjectClient.Remove")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	_, err := c.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}
