package tokens

import (
	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

// Counter counts the tokens of a draft before it is sent.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter picks the codec for model, falling back to cl100k_base when the model is unknown or empty.
func NewCounter(model string) (*Counter, error) {
	if model != "" {
		c, err := tokenizer.ForModel(tokenizer.Model(model))
		if err == nil {
			return &Counter{codec: c}, nil
		}
	}

	c, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, errors.Wrap(err, "could not create tokenizer")
	}
	return &Counter{codec: c}, nil
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
