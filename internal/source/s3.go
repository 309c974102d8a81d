package source

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"wavepilot/internal/config"
)

// S3Provider serves track payloads from any S3-compatible store.
type S3Provider struct {
	api *s3.S3
}

func NewS3Provider(cfg *config.Config) (*S3Provider, error) {
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(cfg.Storage.Endpoint),
		Region:           aws.String(cfg.Storage.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return &S3Provider{api: s3.New(sess)}, nil
}

func (s *S3Provider) Get(bucket, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
