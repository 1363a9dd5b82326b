package network

import (
	"context"
	"net/http"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	chunkingVersionHeader = "x-chunking-version"
	chunkingVersion       = "2"
	paidByHeader          = "x-paid-by"
)

// Client talks to the upload service. Transient failures (connection errors,
// 429, 5xx) are retried by the underlying retryablehttp client with capped
// exponential backoff; once it gives up the last response is turned into an
// *HTTPError.
type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string
	logger     log.Logger
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, logger log.Logger) *Client {
	httpClient := retryhttp.NewClient(logger)
	httpClient.CheckRetry = createCustomRetryFunction(logger)
	return NewClientWithHTTP(httpClient, baseURL, logger)
}

// NewClientWithHTTP creates a Client on top of an already configured
// retryablehttp client.
func NewClientWithHTTP(httpClient *retryablehttp.Client, baseURL string, logger log.Logger) *Client {
	// Hand the last response back instead of a generic "giving up" error so the
	// status and body end up in HTTPError.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

func createCustomRetryFunction(logger log.Logger) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		retry, checkErr := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		if retry {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			logger.Debugf("CheckRetry: retry=%v ; status=%d ; err=%+v", retry, status, err)
		}
		return retry, checkErr
	}
}
