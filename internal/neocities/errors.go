package neocities

import (
	"fmt"

	"github.com/imroc/req/v3"
)

// APIError is the error envelope returned by the Neocities API.
type APIError struct {
	Result    string `json:"result"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

func (e *APIError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("neocities: %s: %s", e.ErrorType, e.Message)
	}
	return fmt.Sprintf("neocities: %s", e.Message)
}

// handleAPIError folds transport errors, decoded API error envelopes and
// unexpected statuses into a single error return for one operation.
func handleAPIError(res *req.Response, err error, apiErr *APIError, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.IsErrorState() {
		if apiErr != nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %w", op, apiErr)
		}
		return fmt.Errorf("%s: unexpected status %q", op, res.Status)
	}
	return nil
}
