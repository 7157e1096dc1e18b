// Package remote fetches matrix triples from S3 to local files so the
// matrix readers can work against object storage, where sequencing
// pipelines usually park their count matrices.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/eunmann/snmtx/internal/logctx"
	"github.com/eunmann/snmtx/pkg/fileutil"
)

// ErrNotS3URI indicates a URI that does not use the s3:// scheme.
var ErrNotS3URI = errors.New("not an s3:// URI")

// IsS3URI reports whether uri uses the s3:// scheme.
func IsS3URI(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// ParseURI splits an s3://bucket/key URI into bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("%w: %q", ErrNotS3URI, uri)
	}
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q has no bucket/key", ErrNotS3URI, uri)
	}
	return bucket, key, nil
}

// Client wraps the S3 operations needed to fetch matrix files.
type Client struct {
	s3Client *s3.Client
}

// NewClient creates a Client using the default AWS configuration chain.
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Client{s3Client: s3.NewFromConfig(cfg)}, nil
}

// NewClientWithConfig creates a Client from an existing AWS config.
func NewClientWithConfig(cfg aws.Config) *Client {
	return &Client{s3Client: s3.NewFromConfig(cfg)}
}

// FetchFile downloads one object to destDir, keeping the object's base
// name. The file is written via tmp+rename so an interrupted download
// never leaves a plausible-looking partial file. Returns the local path.
func (c *Client) FetchFile(ctx context.Context, uri, destDir string) (string, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return "", err
	}

	localPath := filepath.Join(destDir, path.Base(key))
	log := logctx.FromContext(ctx)
	log.Debug().Str("uri", uri).Str("local", localPath).Msg("fetching object")

	err = fileutil.WriteTmpThenMove(localPath, func(tmpPath string) error {
		resp, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("get object %s: %w", uri, err)
		}
		defer resp.Body.Close()

		f, err := os.Create(tmpPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", tmpPath, err)
		}
		defer f.Close()

		if _, err := io.Copy(f, resp.Body); err != nil {
			return fmt.Errorf("download %s: %w", uri, err)
		}
		return f.Close()
	})
	if err != nil {
		return "", err
	}
	return localPath, nil
}

// FetchTriple downloads the three files of a matrix triple to destDir
// and returns their local paths in (matrix, features, barcodes) order.
func (c *Client) FetchTriple(ctx context.Context, matrixURI, featuresURI, barcodesURI, destDir string) (string, string, string, error) {
	matrixPath, err := c.FetchFile(ctx, matrixURI, destDir)
	if err != nil {
		return "", "", "", err
	}
	featuresPath, err := c.FetchFile(ctx, featuresURI, destDir)
	if err != nil {
		return "", "", "", err
	}
	barcodesPath, err := c.FetchFile(ctx, barcodesURI, destDir)
	if err != nil {
		return "", "", "", err
	}
	return matrixPath, featuresPath, barcodesPath, nil
}
