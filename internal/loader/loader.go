// Package loader fetches schema and config documents from files, an fs.FS or
// HTTP. HTTP is disabled unless a client or fallback is configured. Loaded
// documents carry the format their origin declares (extension or
// Content-Type) so flow-style YAML is not mistaken for JSON.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

// Options configures how a Loader resolves sources.
type Options struct {
	// FileSystem serves SourceKindFS locations.
	FileSystem fs.FS
	// HTTPClient serves URL sources. Nil disables HTTP unless
	// AllowHTTPFallback is set.
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
	// MaxBytes caps document size. Zero means unlimited.
	MaxBytes int64
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithFileSystem injects an fs.FS for fs sources.
func WithFileSystem(files fs.FS) Option {
	return func(opts *Options) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an optional
// timeout.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithMaxBytes rejects documents larger than limit.
func WithMaxBytes(limit int64) Option {
	return func(opts *Options) {
		opts.MaxBytes = limit
	}
}

// Loader fetches documents by delegating to file, fs.FS or HTTP strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	maxBytes  int64
}

// New constructs a Loader.
func New(options ...Option) *Loader {
	var cfg Options
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	timeout := cfg.RequestTimeout

	var httpClient *http.Client
	switch {
	case cfg.HTTPClient != nil:
		clone := *cfg.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case cfg.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        cfg.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		maxBytes:  cfg.MaxBytes,
	}
}

// Load fetches a document from src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		fetched payload
		err     error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		fetched, err = readLocal(ctx, nil, src.Location(), l.maxBytes)
	case schema.SourceKindFS:
		if l.fs == nil {
			return schema.Document{}, errors.New("loader: no fs.FS configured")
		}
		fetched, err = readLocal(ctx, l.fs, src.Location(), l.maxBytes)
	case schema.SourceKindURL:
		if !l.allowHTTP {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		fetched, err = fetchRemote(ctx, l.http, src.Location(), l.timeout, l.maxBytes)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, err
	}

	doc, err := schema.NewDocument(src, fetched.data)
	if err != nil {
		return schema.Document{}, err
	}
	return doc.WithFormat(fetched.format), nil
}

// LoadObject loads src and decodes it into an ordered object.
func (l *Loader) LoadObject(ctx context.Context, src schema.Source) (*schema.Map, error) {
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return doc.ParseObject()
}
