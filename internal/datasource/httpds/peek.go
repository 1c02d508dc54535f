package httpds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchFirstBytes retrieves up to n bytes from the given URL using HTTP GET.
// The probe tool uses it to look at a remote CSV header without downloading
// the whole file.
//
// A Range header ("bytes=0-(n-1)") asks the server to truncate; a client-side
// LimitedReader caps the result even when the server ignores the header.
// The returned slice length is <= n.
func (c *Client) FetchFirstBytes(ctx context.Context, url string, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("httpds: n must be > 0")
	}

	h := make(http.Header)
	h.Set("Range", fmt.Sprintf("bytes=0-%d", n-1))

	resp, err := c.Do(ctx, http.MethodGet, url, nil, h)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Do only retries transient statuses; a final 404/403 still comes back
	// as a response and must not be mistaken for file content.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("httpds: status %d from %s", resp.StatusCode, url)
	}

	// Regardless of 206 or 200, only read up to n bytes.
	lr := &io.LimitedReader{R: resp.Body, N: int64(n)}

	var buf bytes.Buffer
	_, err = buf.ReadFrom(lr)
	if err != nil && err != io.EOF {
		return nil, err
	}

	return buf.Bytes(), nil
}
