package github

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-pilot/internal/core"
)

// remoteError converts a go-github failure into a *core.RemoteHostError when the host
// answered with an HTTP status. Transport failures are wrapped as-is.
func remoteError(op string, resp *github.Response, err error) error {
	var httpResp *http.Response
	var ghErr *github.ErrorResponse
	switch {
	case errors.As(err, &ghErr) && ghErr.Response != nil:
		httpResp = ghErr.Response
	case resp != nil && resp.Response != nil && resp.StatusCode >= http.StatusMultipleChoices:
		httpResp = resp.Response
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	body := rawBody(httpResp)
	if body == "" {
		body = err.Error()
	}
	return &core.RemoteHostError{Op: op, Status: httpResp.StatusCode, Body: body}
}

// rawBody returns the error document exactly as the host sent it. go-github
// refills the body after decoding its ErrorResponse, so it can be read here.
func rawBody(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(data)
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound
}
