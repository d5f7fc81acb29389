package dataset

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves the raw bytes stored at a data location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// SourceFetcher resolves a location by scheme: http(s) through resty,
// gs://bucket/object through Cloud Storage, and anything else from disk.
type SourceFetcher struct {
	client  *resty.Client
	timeout time.Duration

	gcsOnce sync.Once
	gcs     *storage.Client
	gcsErr  error
}

// NewSourceFetcher creates a fetcher whose every read is bounded by timeout.
func NewSourceFetcher(timeout time.Duration) *SourceFetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	return &SourceFetcher{client: client, timeout: timeout}
}

// Fetch reads the whole object at location.
func (f *SourceFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", location, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, location)
	case "gs":
		return f.fetchGCS(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "file":
		return os.ReadFile(u.Path)
	case "":
		return os.ReadFile(location)
	default:
		return nil, fmt.Errorf("unsupported location scheme %q", u.Scheme)
	}
}

// Close releases the Cloud Storage client if one was created.
func (f *SourceFetcher) Close() error {
	if f.gcs != nil {
		return f.gcs.Close()
	}
	return nil
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv, application/json, */*").
		Get(location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch %s: status %d", location, resp.StatusCode())
	}
	return resp.Body(), nil
}

func (f *SourceFetcher) fetchGCS(ctx context.Context, bucket, object string) ([]byte, error) {
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("gs location needs bucket and object, got %q/%q", bucket, object)
	}

	f.gcsOnce.Do(func() {
		f.gcs, f.gcsErr = storage.NewClient(context.WithoutCancel(ctx))
	})
	if f.gcsErr != nil {
		return nil, fmt.Errorf("create GCS client: %w", f.gcsErr)
	}

	reader, err := f.gcs.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}
