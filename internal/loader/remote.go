package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

const acceptHeader = "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5"

// fetchRemote GETs url. The Content-Type decides the format and the URL
// extension is the fallback when the server sends something generic.
func fetchRemote(ctx context.Context, client *http.Client, url string, timeout time.Duration, maxBytes int64) (payload, error) {
	if client == nil {
		return payload{}, errors.New("loader: http client is not configured")
	}
	if url == "" {
		return payload{}, errors.New("loader: url is required")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return payload{}, err
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := client.Do(req)
	if err != nil {
		return payload{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payload{}, fmt.Errorf("loader: GET %s: unexpected status %s", url, resp.Status)
	}

	body := io.Reader(resp.Body)
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return payload{}, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return payload{}, fmt.Errorf("loader: GET %s: body exceeds %d bytes", url, maxBytes)
	}

	format := schema.FormatFromMediaType(resp.Header.Get("Content-Type"))
	if format == schema.FormatAuto {
		format = schema.FormatFromPath(req.URL.Path)
	}
	return payload{data: data, format: format}, nil
}
