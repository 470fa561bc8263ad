package assistant

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/earnings-cli/internal/dataset"
	"github.com/KaramelBytes/earnings-cli/internal/logger"
)

// Messages printed by the interactive loop.
const (
	InputPrompt = "Ask a question about the data (or exit/quit to leave): "
	EmptyInput  = "Empty input, try again or type 'exit' to leave."
	AnswerTitle = "--- Answer ---"
	Farewell    = "Session finished. Goodbye!"
)

// Session answers questions about one loaded table. A question goes through
// at most two model calls: classification, then the answer itself.
type Session struct {
	asker      Asker
	classifier *Classifier
	table      *dataset.Table
	sampleRows int
	log        logger.Logger
}

// SessionOptions configures NewSession. Zero values use defaults.
type SessionOptions struct {
	SampleRows int
	Log        logger.Logger
}

func NewSession(asker Asker, table *dataset.Table, opts SessionOptions) *Session {
	log := opts.Log
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = DefaultSampleRows
	}
	return &Session{
		asker:      asker,
		classifier: NewClassifier(asker, log),
		table:      table,
		sampleRows: opts.SampleRows,
		log:        log,
	}
}

// CleanInput trims whitespace, then double quotes, then single quotes.
func CleanInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.Trim(s, `'`)
}

// IsExit reports whether the cleaned input ends the session.
func IsExit(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit":
		return true
	}
	return false
}

// Answer runs the full pipeline for one question and returns the model's reply.
func (s *Session) Answer(ctx context.Context, question string) (string, error) {
	log := s.log.With(map[string]interface{}{"question_id": uuid.NewString()})
	log.Info("question received", map[string]interface{}{"question": question})

	action, err := s.classifier.Classify(ctx, question)
	if err != nil {
		log.WithError(err).Error("classification failed", nil)
		return "", err
	}
	prompt, err := BuildPrompt(action, question, s.table, s.sampleRows)
	if err != nil {
		log.WithError(err).Error("prompt build failed", map[string]interface{}{"action": string(action)})
		return "", err
	}
	log.Debug("prompt built", map[string]interface{}{"action": string(action), "bytes": len(prompt)})

	answer, err := s.asker.Ask(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("answer failed", map[string]interface{}{"action": string(action)})
		return "", fmt.Errorf("answer question: %w", err)
	}
	return answer, nil
}

// Run reads questions from in until exit, quit or end of input, writing
// prompts and answers to out. Empty lines are rejected and the loop
// continues; any pipeline error stops it and is returned.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, InputPrompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			break
		}
		question := CleanInput(sc.Text())
		if IsExit(question) {
			break
		}
		if question == "" {
			fmt.Fprintln(out, EmptyInput)
			continue
		}
		answer, err := s.Answer(ctx, question)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n\n%s\n\n", AnswerTitle, answer)
	}
	fmt.Fprintln(out, Farewell)
	return nil
}
