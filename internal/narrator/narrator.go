// Package narrator turns a weather snapshot into a generated risk assessment.
package narrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
)

// ChatProvider is a hosted chat-completion model.
type ChatProvider interface {
	ChatCompletion(ctx context.Context, messages []domain.ChatMessage, model string) (string, error)
}

// Narrator submits the risk prompt for a snapshot and reports the reply.
type Narrator struct {
	provider ChatProvider
	model    string
	out      io.Writer
	logger   *slog.Logger
}

// New creates a Narrator that prints to out.
func New(provider ChatProvider, model string, out io.Writer, logger *slog.Logger) *Narrator {
	return &Narrator{provider: provider, model: model, out: out, logger: logger}
}

// Narrate sends the snapshot's prompt as a single user message and returns
// the generated text.
func (n *Narrator) Narrate(ctx context.Context, snap domain.WeatherSnapshot) (string, error) {
	prompt, err := domain.RenderPrompt(snap)
	if err != nil {
		return "", err
	}

	start := time.Now()
	content, err := n.provider.ChatCompletion(ctx, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: prompt},
	}, n.model)
	if err != nil {
		return "", fmt.Errorf("generate risk narrative for %s: %w", snap.City.Text(), err)
	}

	n.logger.Info("risk narrative generated",
		"city", snap.City.Text(),
		"model", n.model,
		"duration", time.Since(start),
	)
	return content, nil
}

// Run prints the narrative for snap. A generation failure is printed as a
// single "ERROR: ..." line and logged; it is not returned. Only failures to
// write the output are returned.
func (n *Narrator) Run(ctx context.Context, snap domain.WeatherSnapshot) error {
	content, err := n.Narrate(ctx, snap)
	if err != nil {
		n.logger.Error("chat completion failed", "model", n.model, "error", err)
		_, werr := fmt.Fprintf(n.out, "ERROR: %v\n", err)
		return werr
	}
	_, err = fmt.Fprintln(n.out, content)
	return err
}
