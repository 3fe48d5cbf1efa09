package scheduler

import (
	"context"
	"fmt"
	"net/http"
)

// HTTPProbe reports the cloud reachable when a HEAD request to url gets any
// response below 500.
func HTTPProbe(url string) Prober {
	client := &http.Client{}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
		}
		return nil
	}
}
