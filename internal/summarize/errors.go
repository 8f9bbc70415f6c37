package summarize

import "fmt"

// TimeoutError reports that every attempt of a summarize call timed out.
type TimeoutError struct {
	Attempts int
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gemini: timed out after %d attempts", e.Attempts)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// RequestError reports an HTTP-level failure that survived all retries.
type RequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini: request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// InvalidResponseError reports a 200 response whose body could not be used:
// unparseable JSON or an envelope without candidates. It is never retried.
type InvalidResponseError struct {
	Reason string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("gemini: invalid response: %s", e.Reason)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
