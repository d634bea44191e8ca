package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// transport posts JSON to a provider endpoint with the shared status
// classification and retry policy.
type transport struct {
	provider string
	client   *http.Client
	retries  int
	classify func(status int, body []byte) error
}

func newTransport(provider string, opts Options) transport {
	return transport{
		provider: provider,
		client:   opts.httpClient(),
		retries:  opts.MaxRetries,
	}
}

// postJSON marshals in, posts it to url and decodes a 200 response into out.
func (t transport) postJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	return retryWithBackoff(ctx, t.retries, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s: sending request: %w", t.provider, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s: reading response: %w", t.provider, err)
		}

		if resp.StatusCode != http.StatusOK {
			if t.classify != nil {
				if err := t.classify(resp.StatusCode, body); err != nil {
					return err
				}
			}
			return statusError(t.provider, resp.StatusCode, body)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s: parsing response: %w", t.provider, err)
		}
		return nil
	})
}
