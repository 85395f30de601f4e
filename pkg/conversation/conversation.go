// Package conversation holds the request lifecycle of a single-turn chat client.
//
// A Conversation is an append-only list of Turns. The Controller owns one
// Conversation together with the current RequestStatus and the draft input,
// and is the only way to change any of them. Renderers read a Snapshot and
// forward user intents (submit, retry, copy, edit draft) to the Controller.
package conversation

// FailureAnswer is recorded as the answer of a Turn whose request failed.
const FailureAnswer = "Error fetching response"

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
	// Failed is set when Answer is FailureAnswer because the service call failed.
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Conversation is the ordered, append-only sequence of Turns of a session.
// It is not safe for concurrent use; the Controller guards it.
type Conversation struct {
	turns []Turn
}

func NewConversation(turns ...Turn) *Conversation {
	ret := &Conversation{}
	for _, t := range turns {
		ret.Append(t)
	}
	return ret
}

func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
}

func (c *Conversation) Len() int {
	return len(c.turns)
}

func (c *Conversation) At(i int) (Turn, bool) {
	if i < 0 || i >= len(c.turns) {
		return Turn{}, false
	}
	return c.turns[i], true
}

// Last returns the most recent Turn, false if the conversation is empty.
func (c *Conversation) Last() (Turn, bool) {
	return c.At(len(c.turns) - 1)
}

// Turns returns a copy of the turns in display order.
func (c *Conversation) Turns() []Turn {
	ret := make([]Turn, len(c.turns))
	copy(ret, c.turns)
	return ret
}
