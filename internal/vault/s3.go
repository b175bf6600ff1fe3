package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"ats-go/internal/ats"
	"ats-go/internal/config"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used by S3Vault. *s3.Client
// satisfies it; tests substitute a fake.
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Vault stores objects in an S3 bucket, optionally below a key prefix.
// Locators have the form s3://<bucket>/<object key>.
type S3Vault struct {
	name     string
	client   S3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Vault builds a vault from configuration using the default AWS
// credential chain, or static credentials when both keys are set. A custom
// endpoint targets S3-compatible services such as MinIO.
func NewS3Vault(ctx context.Context, name string, cfg config.ObjectStoreConfig) (*S3Vault, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3PathStyle
	})
	return NewS3VaultFromClient(name, client, cfg.S3Bucket, cfg.S3Prefix), nil
}

// NewS3VaultFromClient wraps an existing client.
func NewS3VaultFromClient(name string, client S3API, bucket, prefix string) *S3Vault {
	return &S3Vault{
		name:     name,
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

// Put uploads content under the prefixed key. Large bodies are sent as
// multipart uploads by the manager.
func (v *S3Vault) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	objectKey := key
	if v.prefix != "" {
		objectKey = path.Join(v.prefix, key)
	}

	_, err := v.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(v.bucket),
		Key:           aws.String(objectKey),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", objectKey, err)
	}
	return s3Scheme + v.bucket + "/" + objectKey, nil
}

// Get downloads the object behind locator into w.
func (v *S3Vault) Get(ctx context.Context, locator string, w io.Writer) error {
	objectKey, err := v.objectKey(locator)
	if err != nil {
		return err
	}

	out, err := v.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return fmt.Errorf("%w: %s", ats.ErrObjectNotFound, locator)
		}
		return fmt.Errorf("downloading %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading %s: %w", objectKey, err)
	}
	return nil
}

// Delete removes the object behind locator. S3 deletes succeed for missing
// keys, so the object is checked with HeadObject first.
func (v *S3Vault) Delete(ctx context.Context, locator string) error {
	objectKey, err := v.objectKey(locator)
	if err != nil {
		return err
	}

	_, err = v.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: %s", ats.ErrObjectNotFound, locator)
		}
		return fmt.Errorf("checking %s: %w", objectKey, err)
	}

	_, err = v.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", objectKey, err)
	}
	return nil
}

// ValidateSetup verifies that the bucket exists and is reachable.
func (v *S3Vault) ValidateSetup(ctx context.Context) error {
	if _, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

func (v *S3Vault) objectKey(locator string) (string, error) {
	rest, ok := strings.CutPrefix(locator, s3Scheme)
	if !ok {
		return "", fmt.Errorf("locator %q does not belong to s3 vault %s", locator, v.name)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return "", fmt.Errorf("malformed s3 locator %q", locator)
	}
	if bucket != v.bucket {
		return "", fmt.Errorf("locator %q is in bucket %s, vault %s uses %s", locator, bucket, v.name, v.bucket)
	}
	return key, nil
}

// Compile-time check that S3Vault implements ats.ObjectStore interface
var _ ats.ObjectStore = (*S3Vault)(nil)
