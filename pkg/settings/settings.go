package settings

import (
	"strings"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Provider string

const (
	ProviderHTTP   Provider = "http"
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderEcho   Provider = "echo"
)

const (
	ClipboardSystem = "system"
	ClipboardOSC52  = "osc52"
	ClipboardNone   = "none"
)

const (
	DefaultEndpoint    = "http://localhost:3000/api/generate"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultOllamaModel = "llama3"
)

// Settings selects and configures the answer service and the client-side sinks.
type Settings struct {
	Provider Provider `yaml:"provider"`
	// Endpoint is the URL the http provider POSTs {"text": ...} to.
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api-key,omitempty"`
	// BaseURL overrides the API base of the openai provider. ollama reads OLLAMA_HOST.
	BaseURL   string `yaml:"base-url,omitempty"`
	Clipboard string `yaml:"clipboard"`
	Markdown  bool   `yaml:"markdown"`
}

func NewSettings() *Settings {
	return &Settings{
		Provider:  ProviderHTTP,
		Endpoint:  DefaultEndpoint,
		Clipboard: ClipboardSystem,
		Markdown:  true,
	}
}

// AddFlags registers the settings flags with their defaults on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := NewSettings()
	fs.String("provider", string(d.Provider), "answer service provider (http, openai, ollama, echo)")
	fs.String("endpoint", d.Endpoint, "answer endpoint for the http provider")
	fs.String("model", d.Model, "model name for the openai and ollama providers")
	fs.String("api-key", d.APIKey, "API key for the openai provider")
	fs.String("base-url", d.BaseURL, "API base URL for the openai provider")
	fs.String("clipboard", d.Clipboard, "clipboard sink for copy (system, osc52, none)")
	fs.Bool("markdown", d.Markdown, "render answers as markdown")
}

// FromViper reads the settings from v, which is expected to have the flags of AddFlags bound.
func FromViper(v *viper.Viper) (*Settings, error) {
	ret := NewSettings()

	if v.IsSet("provider") {
		ret.Provider = Provider(strings.ToLower(v.GetString("provider")))
	}
	if v.IsSet("endpoint") {
		ret.Endpoint = v.GetString("endpoint")
	}
	ret.Model = v.GetString("model")
	ret.APIKey = v.GetString("api-key")
	ret.BaseURL = v.GetString("base-url")
	if v.IsSet("clipboard") {
		ret.Clipboard = strings.ToLower(v.GetString("clipboard"))
	}
	if v.IsSet("markdown") {
		ret.Markdown = v.GetBool("markdown")
	}

	if ret.Model == "" {
		switch ret.Provider {
		case ProviderOpenAI:
			ret.Model = DefaultOpenAIModel
		case ProviderOllama:
			ret.Model = DefaultOllamaModel
		case ProviderHTTP, ProviderEcho:
		}
	}

	if err := ret.Validate(); err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *Settings) Validate() error {
	switch s.Provider {
	case ProviderHTTP:
		if s.Endpoint == "" {
			return errors.New("the http provider needs an endpoint")
		}
	case ProviderOpenAI:
		if s.APIKey == "" {
			return errors.New("the openai provider needs an api-key")
		}
	case ProviderOllama, ProviderEcho:
	default:
		return errors.Errorf("unknown provider %q", s.Provider)
	}

	switch s.Clipboard {
	case ClipboardSystem, ClipboardOSC52, ClipboardNone:
	default:
		return errors.Errorf("unknown clipboard %q", s.Clipboard)
	}

	return nil
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}

// Redacted returns a copy that is safe to print.
func (s *Settings) Redacted() *Settings {
	ret := s.Clone()
	if ret.APIKey != "" {
		ret.APIKey = "***"
	}
	return ret
}
