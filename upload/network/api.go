package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// OpenSession creates a chunked upload session and returns the id assigned by
// the service.
func (c *Client) OpenSession(ctx context.Context, token string, chunkByteCount int64) (OpenSessionResponse, error) {
	apiURL := fmt.Sprintf("%s/v1/chunks/%s/-1/-1?chunkSize=%d", c.baseURL, url.PathEscape(token), chunkByteCount)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return OpenSessionResponse{}, err
	}
	req.Header.Set(chunkingVersionHeader, chunkingVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OpenSessionResponse{}, err
	}
	defer c.closeBody(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return OpenSessionResponse{}, unwrapError(resp)
	}

	var response OpenSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return OpenSessionResponse{}, fmt.Errorf("decode open session response: %w", err)
	}
	if response.ID == "" {
		return OpenSessionResponse{}, fmt.Errorf("open session response has no id")
	}

	return response, nil
}

// UploadChunk sends data as the bytes starting at offset of the session.
func (c *Client) UploadChunk(ctx context.Context, token, sessionID string, offset int64, data []byte) error {
	apiURL := fmt.Sprintf("%s/v1/chunks/%s/%s/%d", c.baseURL, url.PathEscape(token), url.PathEscape(sessionID), offset)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, apiURL, data)
	if err != nil {
		return err
	}
	req.Header.Set(chunkingVersionHeader, chunkingVersion)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))

	dump, err := httputil.DumpRequest(req.Request, false)
	if err != nil {
		c.logger.Warnf("error while dumping request: %s", err)
	}
	c.logger.Debugf("Chunk request dump: %s", string(dump))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer c.closeBody(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return unwrapError(resp)
	}

	return nil
}

// Finalize tells the service that every chunk of the session has been sent.
// The service treats repeated finalize calls for the same session as one.
func (c *Client) Finalize(ctx context.Context, token, sessionID string, paidBy []string) error {
	apiURL := fmt.Sprintf("%s/v1/chunks/%s/%s/finalize", c.baseURL, url.PathEscape(token), url.PathEscape(sessionID))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set(chunkingVersionHeader, chunkingVersion)
	setPaidBy(req, paidBy)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer c.closeBody(resp.Body)

	dump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		c.logger.Warnf("error while dumping response: %s", err)
	}
	c.logger.Debugf("Finalize response dump: %s", string(dump))

	if !isSuccess(resp.StatusCode) {
		return unwrapError(resp)
	}

	return nil
}

// Status returns the current assembly status of a finalized session.
func (c *Client) Status(ctx context.Context, token, sessionID string) (StatusResponse, error) {
	apiURL := fmt.Sprintf("%s/v1/chunks/%s/%s/status", c.baseURL, url.PathEscape(token), url.PathEscape(sessionID))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return StatusResponse{}, err
	}
	req.Header.Set(chunkingVersionHeader, chunkingVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusResponse{}, err
	}
	defer c.closeBody(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return StatusResponse{}, unwrapError(resp)
	}

	var response StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return StatusResponse{}, fmt.Errorf("decode status response: %w", err)
	}

	return response, nil
}

// SingleUpload describes a non-chunked upload of a whole data item.
type SingleUpload struct {
	Token string
	Size  int64
	// Body returns a fresh reader over the complete item for every attempt.
	// A returned io.ReadCloser is closed once the attempt has been sent.
	Body    func() (io.Reader, error)
	Headers map[string]string
	PaidBy  []string
}

// BytesBody returns a SingleUpload body over an in-memory item.
func BytesBody(data []byte) func() (io.Reader, error) {
	return func() (io.Reader, error) {
		return bytes.NewReader(data), nil
	}
}

// UploadDataItem posts a complete data item in one request.
func (c *Client) UploadDataItem(ctx context.Context, upload SingleUpload) (Receipt, error) {
	apiURL := fmt.Sprintf("%s/v1/tx/%s", c.baseURL, url.PathEscape(upload.Token))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, apiURL, retryablehttp.ReaderFunc(upload.Body))
	if err != nil {
		return Receipt{}, err
	}
	for k, v := range upload.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	setPaidBy(req, upload.PaidBy)

	// Add Content-Length manually because retryablehttp can't know it for a ReaderFunc body
	req.Header.Set("Content-Length", fmt.Sprintf("%d", upload.Size))
	req.ContentLength = upload.Size

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, err
	}
	defer c.closeBody(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return Receipt{}, unwrapError(resp)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return Receipt{}, fmt.Errorf("decode upload response: %w", err)
	}

	return receipt, nil
}

func setPaidBy(req *retryablehttp.Request, paidBy []string) {
	if len(paidBy) == 0 {
		return
	}
	req.Header.Set(paidByHeader, strings.Join(paidBy, ","))
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.logger.Printf("close response body: %s", err)
	}
}
