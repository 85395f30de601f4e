package answer

import (
	"context"
	"strings"

	"github.com/jmorganca/ollama/api"
	"github.com/pkg/errors"
)

// OllamaService generates an answer with a local ollama model, without streaming.
// The server address comes from OLLAMA_HOST.
type OllamaService struct {
	client *api.Client
	model  string
}

func NewOllamaService(model string) (*OllamaService, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "could not create ollama client")
	}

	return &OllamaService{
		client: client,
		model:  model,
	}, nil
}

func (o *OllamaService) Answer(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "ollama generate failed")
	}

	return sb.String(), nil
}
