package storage

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

const defaultContentType = "application/octet-stream"

// ResumeArchive keeps the original résumé files in an object storage bucket
type ResumeArchive struct {
	client       ObjectClient
	bucket       string
	publicDomain string
}

func NewResumeArchive(client ObjectClient, bucket, publicDomain string) *ResumeArchive {
	return &ResumeArchive{
		client:       client,
		bucket:       bucket,
		publicDomain: strings.TrimSuffix(publicDomain, "/"),
	}
}

// NewR2ResumeArchive returns nil when archiving is switched off
func NewR2ResumeArchive(cfg *config.R2StorageConfig) (interfaces.StorageService, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, errors.New("R2 account id and credentials are required when the resume archive is enabled")
	}

	client, err := newR2ObjectClient(cfg.AccountID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}
	return NewResumeArchive(client, cfg.ResumeBucket, cfg.PublicDomain), nil
}

func (a *ResumeArchive) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ResumeArchive.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("bucket", a.bucket)
	span.SetTag("key", key)
	span.SetTag("size", len(data))

	if contentType == "" {
		contentType = defaultContentType
	}

	if err := a.client.Put(ctx, a.bucket, key, contentType, data); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to upload %s", key)
	}
	return nil
}

func (a *ResumeArchive) Download(ctx context.Context, key string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ResumeArchive.Download")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	data, err := a.client.Get(ctx, a.bucket, key)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to download %s", key)
	}
	return data, nil
}

func (a *ResumeArchive) Delete(ctx context.Context, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ResumeArchive.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	if err := a.client.Remove(ctx, a.bucket, key); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to delete %s", key)
	}
	return nil
}

// GetPublicURL is empty unless a public domain is configured for the bucket
func (a *ResumeArchive) GetPublicURL(key string) string {
	if a.publicDomain == "" {
		return ""
	}
	return "https://" + a.publicDomain + "/" + strings.TrimPrefix(key, "/")
}
