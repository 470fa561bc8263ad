package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/earnings-cli/internal/logger"
)

// Asker sends one prompt to a language model and returns its reply.
// *ai.Chat implements it.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Classifier maps a free-form question to an Action using the model.
type Classifier struct {
	asker Asker
	log   logger.Logger
}

func NewClassifier(asker Asker, log logger.Logger) *Classifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Classifier{asker: asker, log: log}
}

// Classify returns the action named by the model's reply, or NoAction when
// the trimmed reply is not an exact identifier. Only transport failures
// are errors.
func (c *Classifier) Classify(ctx context.Context, question string) (Action, error) {
	prompt, err := render(classifierTemplate, promptData{Question: question, Actions: Actions()})
	if err != nil {
		return NoAction, err
	}
	reply, err := c.asker.Ask(ctx, prompt)
	if err != nil {
		return NoAction, fmt.Errorf("classify question: %w", err)
	}
	reply = strings.TrimSpace(reply)
	action := ParseAction(reply)
	if action == NoAction {
		c.log.Debug("classifier reply did not match an action", map[string]interface{}{"reply": reply})
	} else {
		c.log.Debug("question classified", map[string]interface{}{"action": string(action)})
	}
	return action, nil
}
