// Package s3bucket reads and writes serialized documents stored in Amazon S3.
package s3bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/hengadev/serdex"
)

// Scheme prefixes object locations accepted by ParseLocation.
const Scheme = "s3://"

// Client is the subset of the S3 API used by Store.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store streams objects in and out of S3.
type Store struct {
	client Client
	logger *serdex.StructuredLogger
}

// New wraps client. A nil logger logs warnings and errors to stderr.
func New(client Client, logger *serdex.StructuredLogger) *Store {
	if logger == nil {
		logger = serdex.NewStructuredLogger(serdex.LoggerConfig{
			Level:     serdex.LogLevelWarn,
			Component: "s3",
		})
	}
	return &Store{client: client, logger: logger}
}

// NewFromEnvironment builds a Store from the default AWS credential chain.
func NewFromEnvironment(ctx context.Context, logger *serdex.StructuredLogger) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), logger), nil
}

// Open returns the body of bucket/key. The caller closes it.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	s.logger.WithContext(ctx).Debug("opened object", "bucket", bucket, "key", key)
	return out.Body, nil
}

type objectWriter struct {
	pw     *io.PipeWriter
	done   chan error
	err    error
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Close flushes the pipe and waits for the upload to finish.
func (w *objectWriter) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if err := w.pw.Close(); err != nil {
		w.err = err
		return err
	}
	w.err = <-w.done
	return w.err
}

// Create starts an upload to bucket/key and returns a writer feeding it. The
// object exists once Close returns nil.
func (s *Store) Create(ctx context.Context, bucket, key, contentType string) (io.WriteCloser, error) {
	if bucket == "" || key == "" {
		return nil, errors.New("bucket and key are required")
	}

	pr, pw := io.Pipe()
	w := &objectWriter{pw: pw, done: make(chan error, 1)}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic during upload: %v", r)
				pr.CloseWithError(err)
				w.done <- err
			}
		}()

		input := &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   pr,
		}
		if contentType != "" {
			input.ContentType = aws.String(contentType)
		}
		_, err := s.client.PutObject(ctx, input)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to upload object", "bucket", bucket, "key", key, "error", err)
			err = fmt.Errorf("failed to put s3://%s/%s: %w", bucket, key, err)
			pr.CloseWithError(err)
			w.done <- err
			return
		}
		// Unblock writers if the client returned without draining the body.
		pr.Close()
		s.logger.WithContext(ctx).Info("uploaded object", "bucket", bucket, "key", key)
		w.done <- nil
	}()

	return w, nil
}

// Location is a bucket and key pair.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string { return Scheme + l.Bucket + "/" + l.Key }

// IsLocation reports whether s uses the s3:// scheme.
func IsLocation(s string) bool { return strings.HasPrefix(s, Scheme) }

// ParseLocation splits s3://bucket/key. The key may be empty or end in a
// slash, meaning a prefix for a generated name.
func ParseLocation(s string) (Location, error) {
	if !IsLocation(s) {
		return Location{}, fmt.Errorf("invalid s3 location '%s': expected %sbucket/key", s, Scheme)
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(s, Scheme), "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("invalid s3 location '%s': missing bucket", s)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// ObjectKey returns key unchanged unless it is empty or ends in a slash, in
// which case a random uuid name with extension ext is appended.
func ObjectKey(key, ext string) string {
	if key != "" && !strings.HasSuffix(key, "/") {
		return key
	}
	name := uuid.New().String()
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	if key == "" {
		return name
	}
	return path.Join(key, name)
}

// ContentType maps a registered format name to the MIME type stored with the
// object.
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	case "msgpack":
		return "application/msgpack"
	}
	return "application/octet-stream"
}
