package s3

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/bucketree/bucketree/pkg/provider"
)

// Provider implements provider.Provider for AWS S3 and S3-compatible storage.
type Provider struct {
	client  *s3.Client
	maxKeys int
}

// Ensure Provider implements the interface.
var _ provider.Provider = (*Provider)(nil)

// New creates a new S3 provider with the given configuration.
//
// The provider uses AWS SDK v2's default credential chain unless explicit
// credentials are provided in the config.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &provider.Error{
			Op:       "New",
			Provider: provider.TypeS3,
			Err:      err,
		}
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}

	// Custom endpoint for S3-compatible stores
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}

	return &Provider{
		client:  client,
		maxKeys: maxKeys,
	}, nil
}

// loadAWSConfig builds the AWS configuration with appropriate credentials.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error

	// Only apply explicit region if user set one in config.
	// Let SDK resolve from env/profile first.
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for long-term credentials)
		)
		opts = append(opts, awsconfig.WithCredentialsProvider(staticCreds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	awsCfg.Region = resolveRegion(cfg.Endpoint, awsCfg.Region)

	return awsCfg, nil
}

// ListContainers returns every bucket visible to the credentials.
func (p *Provider) ListContainers(ctx context.Context) ([]provider.Container, error) {
	out, err := p.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, p.wrapError("ListContainers", "", "", err)
	}

	containers := make([]provider.Container, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		containers = append(containers, provider.Container{
			Name:      aws.ToString(b.Name),
			CreatedAt: aws.ToTime(b.CreationDate),
		})
	}
	return containers, nil
}

// List returns a page of objects in the bucket with the given prefix.
func (p *Provider) List(ctx context.Context, container string, opts provider.ListOptions) (*provider.ListResult, error) {
	maxKeys := clampMaxKeys(opts.MaxKeys, p.maxKeys)

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(container),
		MaxKeys: aws.Int32(int32(maxKeys)),
	}

	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}

	if opts.ContinuationToken != "" {
		input.ContinuationToken = aws.String(opts.ContinuationToken)
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, p.wrapError("List", container, "", err)
	}

	objects := make([]provider.Object, 0, len(output.Contents))
	for _, obj := range output.Contents {
		objects = append(objects, provider.Object{
			Container:    container,
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			ETag:         cleanETag(aws.ToString(obj.ETag)),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}

	result := &provider.ListResult{
		Objects:     objects,
		IsTruncated: aws.ToBool(output.IsTruncated),
	}

	if output.NextContinuationToken != nil {
		result.ContinuationToken = *output.NextContinuationToken
	}

	return result, nil
}

// Download copies the object's content to a local file. The write goes
// through a temp file in the destination directory so a failed transfer
// never leaves a truncated file behind.
func (p *Provider) Download(ctx context.Context, obj *provider.Object, destPath string) error {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Container),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}
	defer func() { _ = out.Body.Close() }()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "bucketree-get-*")
	if err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, out.Body); err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}
	if err := tmp.Close(); err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}
	return nil
}

// Upload stores a local file under the given key.
func (p *Provider) Upload(ctx context.Context, container, key, srcPath string) (*provider.Object, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}
	size := st.Size()

	out, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(container),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: &size,
	})
	if err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}

	return &provider.Object{
		Container:    container,
		Key:          key,
		Size:         size,
		ETag:         cleanETag(aws.ToString(out.ETag)),
		LastModified: st.ModTime(),
	}, nil
}

// Delete removes the object.
func (p *Provider) Delete(ctx context.Context, obj *provider.Object) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(obj.Container),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return p.wrapError("Delete", obj.Container, obj.Key, err)
	}
	return nil
}

// Close releases any resources held by the provider.
// The S3 client doesn't require explicit cleanup, but this satisfies the interface.
func (p *Provider) Close() error {
	return nil
}

// wrapError converts S3 errors to provider errors with appropriate sentinel errors.
func (p *Provider) wrapError(op, container, key string, err error) error {
	wrapped := &provider.Error{
		Op:        op,
		Provider:  provider.TypeS3,
		Container: container,
		Key:       key,
		Err:       err,
	}

	// Check for specific S3 error types first
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket

	switch {
	case errors.As(err, &notFound), errors.As(err, &noSuchKey):
		wrapped.Err = provider.ErrNotFound
		return wrapped
	case errors.As(err, &noSuchBucket):
		wrapped.Err = provider.ErrContainerNotFound
		return wrapped
	}

	// Check smithy API errors for error codes
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			wrapped.Err = provider.ErrNotFound
		case "NoSuchBucket":
			wrapped.Err = provider.ErrContainerNotFound
		case "AccessDenied", "Forbidden":
			wrapped.Err = provider.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = provider.ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			wrapped.Err = provider.ErrThrottled
		case "ServiceUnavailable", "InternalError":
			wrapped.Err = provider.ErrUnavailable
		}
		return wrapped
	}

	// Fallback: check error message for common cases
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound") || strings.Contains(msg, "404"):
		wrapped.Err = provider.ErrNotFound
	case strings.Contains(msg, "NoSuchBucket"):
		wrapped.Err = provider.ErrContainerNotFound
	case strings.Contains(msg, "AccessDenied") || strings.Contains(msg, "Forbidden") || strings.Contains(msg, "403"):
		wrapped.Err = provider.ErrAccessDenied
	case strings.Contains(msg, "InvalidAccessKeyId") || strings.Contains(msg, "SignatureDoesNotMatch"):
		wrapped.Err = provider.ErrInvalidCredentials
	case strings.Contains(msg, "SlowDown") || strings.Contains(msg, "Throttling") || strings.Contains(msg, "429"):
		wrapped.Err = provider.ErrThrottled
	case strings.Contains(msg, "ServiceUnavailable") || strings.Contains(msg, "503"):
		wrapped.Err = provider.ErrUnavailable
	}

	return wrapped
}

// cleanETag removes surrounding quotes from an ETag value.
// S3 returns ETags with quotes, e.g., "d41d8cd98f00b204e9800998ecf8427e".
func cleanETag(etag string) string {
	return strings.Trim(etag, "\"")
}

// clampMaxKeys applies defaults and limits to maxKeys values.
// If requested is <= 0, uses providerDefault. Result is clamped to MaxAllowedKeys.
func clampMaxKeys(requested, providerDefault int) int {
	if requested <= 0 {
		requested = providerDefault
	}
	if requested > MaxAllowedKeys {
		return MaxAllowedKeys
	}
	return requested
}

// resolveRegion applies the fallback default after SDK config loading.
// The SDK has already resolved explicit config, environment, and profile
// regions; only AWS proper (no custom endpoint) gets a default.
func resolveRegion(endpoint, sdkRegion string) string {
	if sdkRegion != "" {
		return sdkRegion
	}
	if endpoint == "" {
		return DefaultAWSRegion
	}
	// S3-compatible: no default, endpoint may not need a region
	return ""
}
