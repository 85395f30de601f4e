package answer

import (
	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/go-go-golems/asker/pkg/settings"
	"github.com/pkg/errors"
)

var (
	_ conversation.AnswerService = (*HTTPService)(nil)
	_ conversation.AnswerService = (*OpenAIService)(nil)
	_ conversation.AnswerService = (*OllamaService)(nil)
	_ conversation.AnswerService = (*EchoService)(nil)
)

func NewServiceFromSettings(s *settings.Settings) (conversation.AnswerService, error) {
	switch s.Provider {
	case settings.ProviderHTTP:
		return NewHTTPService(s.Endpoint), nil
	case settings.ProviderOpenAI:
		return NewOpenAIService(s.APIKey, s.BaseURL, s.Model), nil
	case settings.ProviderOllama:
		ret, err := NewOllamaService(s.Model)
		if err != nil {
			return nil, err
		}
		return ret, nil
	case settings.ProviderEcho:
		return NewEchoService(), nil
	}

	return nil, errors.Errorf("unknown provider %q", s.Provider)
}
