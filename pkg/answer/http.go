package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// GenerateRequest is the payload of the answer endpoint. It never carries history.
type GenerateRequest struct {
	Text string `json:"text"`
}

// GenerateResponse is what the answer endpoint returns on success.
// Answer is a pointer so that a missing field can be told apart from an empty answer.
type GenerateResponse struct {
	Answer *string `json:"answer,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// HTTPService posts the prompt as {"text": ...} to an endpoint and reads {"answer": ...} back.
type HTTPService struct {
	endpoint string
	client   *http.Client
}

type HTTPServiceOption func(*HTTPService)

func WithHTTPClient(client *http.Client) HTTPServiceOption {
	return func(s *HTTPService) {
		s.client = client
	}
}

func NewHTTPService(endpoint string, options ...HTTPServiceOption) *HTTPService {
	ret := &HTTPService{
		endpoint: endpoint,
		client:   http.DefaultClient,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (h *HTTPService) Answer(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(GenerateRequest{Text: prompt})
	if err != nil {
		return "", errors.Wrap(err, "could not encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "could not create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "could not reach %s", h.endpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrap(err, "could not read response")
	}

	log.Debug().
		Str("endpoint", h.endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(b)).
		Msg("answer endpoint responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("answer endpoint returned %s", resp.Status)
	}

	var ret GenerateResponse
	if err := json.Unmarshal(b, &ret); err != nil {
		return "", errors.Wrap(err, "could not decode response")
	}
	if ret.Answer == nil {
		return "", errors.New("response has no answer field")
	}

	return *ret.Answer, nil
}
