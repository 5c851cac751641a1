package lhreport

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zhengjing-huang/lighthouse/pkg/errors"
	"github.com/zhengjing-huang/lighthouse/pkg/httputil"
	"github.com/zhengjing-huang/lighthouse/pkg/observability"
)

const httpTimeout = 30 * time.Second

// Fetcher loads viewer options from local files or HTTP(S) URLs.
// URL responses are cached through an optional [httputil.Cache] under a
// "report:" namespace, and transient failures retry with backoff.
//
// All methods are safe for concurrent use.
type Fetcher struct {
	http  *http.Client
	cache *httputil.Cache
}

// NewFetcher creates a Fetcher backed by cache. Pass nil to disable
// response caching; file reads are never cached.
func NewFetcher(cache *httputil.Cache) *Fetcher {
	if cache != nil {
		cache = cache.Namespace("report:")
	}
	return &Fetcher{
		http:  &http.Client{Timeout: httpTimeout},
		cache: cache,
	}
}

// IsURL reports whether src names an HTTP(S) URL rather than a file path.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch loads and decodes viewer options from src, which is either a file
// path (debug.json convention) or an HTTP(S) URL. If refresh is true, the
// response cache is bypassed for URL sources.
//
// Decoding failures carry the same typed codes as [DecodeOptions]; a
// missing file is FILE_NOT_FOUND, an unreachable URL NETWORK_ERROR.
func (f *Fetcher) Fetch(ctx context.Context, src string, refresh bool) (*Options, error) {
	if err := errors.ValidateSource(src); err != nil {
		return nil, err
	}

	var data []byte
	var err error
	if IsURL(src) {
		data, err = f.fetchURL(ctx, src, refresh)
	} else {
		data, err = readFile(src)
	}
	if err != nil {
		return nil, err
	}
	return DecodeOptions(data)
}

// FetchReader decodes viewer options from an arbitrary reader, typically
// stdin. The reader is consumed but not closed.
func (f *Fetcher) FetchReader(r io.Reader) (*Options, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read report stream")
	}
	return DecodeOptions(data)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "report file %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read report file %s", path)
	}
	return data, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, url string, refresh bool) ([]byte, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}

	if f.cache != nil && !refresh {
		var cached []byte
		if ok, _ := f.cache.Get(url, &cached); ok {
			return cached, nil
		}
	}

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
		start := time.Now()
		resp, err := f.http.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)}
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to read
		case resp.StatusCode == http.StatusNotFound:
			return errors.New(errors.ErrCodeNotFound, "report %s not found", url)
		case resp.StatusCode >= 500:
			return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", url, resp.StatusCode)}
		default:
			return errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", url, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url)}
		}
		data = body
		return nil
	})
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		_ = f.cache.Set(url, data)
	}
	return data, nil
}
