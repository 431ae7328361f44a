// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package kss

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/relabs-tech/showcase/core/logger"
)

// S3Configuration contains the configuration for the S3 KSS service
type S3Configuration struct {
	AWSBucketName string
	AWSRegion     string
	// KeyPrefix is prepended to every key
	KeyPrefix string
	// Endpoint overrides the S3 endpoint, e.g. for a local emulator. Path style
	// addressing is used when set.
	Endpoint string
	// AccessID and AccessKey are optional static credentials. The default credential
	// chain of the runtime is used when empty.
	AccessID  string
	AccessKey string
}

// ObjectLister is the part of the S3 API used for listing
type ObjectLister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner is the part of the S3 presign API used for signing
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Uploader is the part of the S3 transfer manager used for uploads
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

var (
	_ ObjectLister = (*s3.Client)(nil)
	_ Presigner    = (*s3.PresignClient)(nil)
	_ Uploader     = (*manager.Uploader)(nil)
	_ Driver       = (*S3)(nil)
)

// S3 is the implementation of the KSS Driver for AWS S3
type S3 struct {
	client      ObjectLister
	presigner   Presigner
	uploader    Uploader
	bucket      string
	baseKeyName string
}

// LoadAWSConfig loads the AWS configuration for the given region. Static credentials
// are used when both accessID and accessKey are given.
func LoadAWSConfig(ctx context.Context, region, accessID, accessKey string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessID != "" && accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessID, accessKey, "")))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

// NewS3 returns a new S3
func NewS3(ctx context.Context, kssConfig S3Configuration) (*S3, error) {
	if kssConfig.AWSBucketName == "" {
		return nil, fmt.Errorf("AWSBucketName must not be empty")
	}

	cfg, err := LoadAWSConfig(ctx, kssConfig.AWSRegion, kssConfig.AccessID, kssConfig.AccessKey)
	if err != nil {
		return nil, err
	}
	logger.Default().Debugln("KSS S3 enabled for bucket", kssConfig.AWSBucketName)
	return NewS3FromConfig(cfg, kssConfig), nil
}

// NewS3FromConfig returns a new S3 using the given AWS configuration
func NewS3FromConfig(cfg aws.Config, kssConfig S3Configuration) *S3 {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if kssConfig.Endpoint != "" {
			o.EndpointResolver = s3.EndpointResolverFromURL(kssConfig.Endpoint)
			o.UsePathStyle = true
		}
	})
	s := NewS3WithClients(client, s3.NewPresignClient(client), kssConfig.AWSBucketName, kssConfig.KeyPrefix)
	s.uploader = manager.NewUploader(client)
	return s
}

// NewS3WithClients returns a new S3 using the given clients
func NewS3WithClients(client ObjectLister, presigner Presigner, bucket, keyPrefix string) *S3 {
	return &S3{client: client, presigner: presigner, bucket: bucket, baseKeyName: keyPrefix}
}

// WithUploader sets the uploader used by Upload
func (s *S3) WithUploader(uploader Uploader) *S3 {
	s.uploader = uploader
	return s
}

// GetPreSignedURL returns a pre-signed URL that can be used with the given method until expiry time is passed
// key must be a valid file name
func (s *S3) GetPreSignedURL(ctx context.Context, method Method, key string, expireIn time.Duration) (URL string, err error) {
	logger.FromContext(ctx).Debugln("GetPreSignedURL ", s.baseKeyName+key)

	var resp *v4.PresignedHTTPRequest
	switch method {
	case Get:
		resp, err = s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.baseKeyName + key),
		}, s3.WithPresignExpires(expireIn))
	default:
		err = fmt.Errorf("%s unsupported method to presign '%s'", method, s.baseKeyName+key)
	}
	if err != nil {
		return "", err
	}

	return resp.URL, nil
}

// Upload stores the content of body under key. Large bodies are uploaded in parts.
func (s *S3) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if s.uploader == nil {
		return fmt.Errorf("no uploader configured for bucket %s", s.bucket)
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.baseKeyName + key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("cannot upload %s: %w", s.baseKeyName+key, err)
	}
	logger.FromContext(ctx).Debugln("uploaded", s.baseKeyName+key)
	return nil
}

// ListAllWithPrefix Lists all objects with prefix. The returned keys do not carry the
// base key name.
func (s *S3) ListAllWithPrefix(ctx context.Context, prefix string) (objects []Object, err error) {
	rlog := logger.FromContext(ctx)
	rlog.Debugln("Listing all ", s.baseKeyName+prefix)

	var continuationToken *string
	for {
		input := &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.baseKeyName + prefix),
			ContinuationToken: continuationToken,
		}
		var resp *s3.ListObjectsV2Output
		resp, err = s.client.ListObjectsV2(ctx, input)
		if err != nil {
			rlog.WithError(err).Errorln("Could not ListObjectsV2 from", s.bucket)
			return nil, err
		}
		for _, item := range resp.Contents {
			o := Object{
				Key:  strings.TrimPrefix(aws.ToString(item.Key), s.baseKeyName),
				Size: item.Size,
			}
			if item.LastModified != nil {
				o.LastModified = *item.LastModified
			}
			objects = append(objects, o)
		}
		continuationToken = resp.NextContinuationToken
		if resp.NextContinuationToken == nil {
			break
		}
	}
	rlog.Debugf("Listed %d objects with prefix %s", len(objects), s.baseKeyName+prefix)

	return objects, nil
}
