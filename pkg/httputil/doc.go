// Package httputil provides the HTTP plumbing shared by asset fetching.
//
//   - [Retry]: retry with exponential backoff for transient failures
//   - [CheckStatus]: classify a response status as ok, not-found, transient
//     or permanent
//   - [NewClient]: an http.Client with a bounded timeout
//
// Only errors wrapped in [RetryableError] are retried. Network failures and
// 5xx responses are retryable; 404 is reported as [ErrNotFound] and never
// retried, so a missing asset fails fast into the compositor's skip policy.
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
package httputil
