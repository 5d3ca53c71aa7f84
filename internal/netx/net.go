// Package netx holds plain HTTP helpers that do not belong to the API client,
// such as uploads to presigned object-storage URLs.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// PutPresigned uploads body to a presigned URL with a single PUT. Headers the
// URL was signed with (e.g. Content-Type) must be passed in signed so the
// storage accepts the signature.
func PutPresigned(ctx context.Context, hc *http.Client, url string, signed http.Header, body []byte) error {
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, vs := range signed {
		// Host is carried by the URL itself
		if http.CanonicalHeaderKey(k) == "Host" {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
