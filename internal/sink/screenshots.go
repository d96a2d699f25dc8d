package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"gridsight/internal/annotate"
	"gridsight/internal/traffic"
	"gridsight/pkg/log"
)

const thumbnailWidth = 300

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

func DefaultS3Config() S3Config {
	return S3Config{
		Bucket:   "gridsight",
		Endpoint: "127.0.0.1:9000",
		UseSSL:   false,
		Region:   "us-east-1",
	}
}

func (s3 *S3Config) UrlPrefix() string {
	if s3.UseSSL {
		return fmt.Sprintf("https://%s/%s", s3.Endpoint, s3.Bucket)
	}
	return fmt.Sprintf("http://%s/%s", s3.Endpoint, s3.Bucket)
}

// ScreenshotArchiver implements traffic.Archiver: it pins the marker and
// sector cone onto the capture, uploads the annotated screenshot plus a
// thumbnail to object storage, and returns the screenshot's object path.
type ScreenshotArchiver struct {
	cli    *minio.Client
	conf   S3Config
	logger *logrus.Entry
}

func NewScreenshotArchiver(conf S3Config) (*ScreenshotArchiver, error) {
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	cli, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure: conf.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	return &ScreenshotArchiver{
		cli:    cli,
		conf:   conf,
		logger: log.WithComponent("screenshots"),
	}, nil
}

func (a *ScreenshotArchiver) Archive(ctx context.Context, loc traffic.Location, img *traffic.CapturedImage) (string, error) {
	pinned, err := annotate.PinMarker(img.Raw, img.Marker, loc.Direction)
	if err != nil {
		return "", fmt.Errorf("annotate screenshot failed: %w", err)
	}

	view := traffic.NewViewParameters(loc, traffic.DefaultZoom)
	ts := time.Now()
	objPath := fmt.Sprintf("/traffic/%04d/%02d/%02d/%s.png", ts.Year(), ts.Month(), ts.Day(), view.Key())

	if err := a.upload(ctx, objPath, pinned); err != nil {
		return "", err
	}

	if thumb, err := annotate.Thumbnail(pinned, thumbnailWidth); err != nil {
		a.logger.WithError(err).Warn("thumbnail generation failed")
	} else {
		thumbPath := strings.TrimSuffix(objPath, ".png") + "_thumb.png"
		if err := a.upload(ctx, thumbPath, thumb); err != nil {
			a.logger.WithError(err).Warn("thumbnail upload failed")
		}
	}

	return objPath, nil
}

func (a *ScreenshotArchiver) upload(ctx context.Context, objPath string, data []byte) error {
	_, err := a.cli.PutObject(
		ctx,
		a.conf.Bucket,
		strings.TrimPrefix(objPath, "/"),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "image/png",
		},
	)
	if err != nil {
		return fmt.Errorf("put object to minio failed: %w", err)
	}
	return nil
}
