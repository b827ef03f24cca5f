package util

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/ordishs/gocore"
)

var (
	// httpRequestTimeout defines the default HTTP request timeout in seconds
	// when no deadline is set on the context.
	httpRequestTimeout, _ = gocore.Config().GetInt("http_timeout", 60)
)

// DoHTTPRequest performs an HTTP GET request and returns the response body as bytes.
// Any status outside 2xx is returned as an error, a 404 as a not found error.
func DoHTTPRequest(ctx context.Context, url string) ([]byte, error) {
	return DoHTTPRequestWithClient(ctx, http.DefaultClient, url)
}

// DoHTTPRequestWithClient is DoHTTPRequest with an explicit client.
func DoHTTPRequestWithClient(ctx context.Context, httpClient *http.Client, url string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancelFn context.CancelFunc

		ctx, cancelFn = context.WithTimeout(ctx, time.Duration(httpRequestTimeout)*time.Second)
		defer cancelFn()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("failed to create http request [%s]", url, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewNetworkTimeoutError("http request [%s] timed out", url, err)
		}

		return nil, errors.NewNetworkError("failed to do http request [%s]", url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errFn := errors.NewServiceError
		if resp.StatusCode == http.StatusNotFound {
			errFn = errors.NewNotFoundError
		}

		if readErr != nil {
			return nil, errFn("http request [%s] returned status code [%d]", url, resp.StatusCode, readErr)
		}

		return nil, errFn("http request [%s] returned status code [%d] with body [%s]", url, resp.StatusCode, string(body))
	}

	if readErr != nil {
		if ctx.Err() != nil {
			return nil, errors.NewNetworkTimeoutError("http request [%s] timed out while reading body", url, readErr)
		}

		return nil, errors.NewNetworkError("http request [%s] failed to read body", url, readErr)
	}

	if resp.Header.Get("Content-Type") == "text/html" {
		return nil, errors.NewNetworkInvalidResponseError("http request [%s] returned HTML - assume bad URL", url)
	}

	return body, nil
}
