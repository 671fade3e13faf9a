// Package console provides a dry-run message sender that prints messages
// instead of delivering them.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure Sender implements the interfaces.
var (
	_ driven.Sender        = (*Sender)(nil)
	_ driven.HealthChecker = (*Sender)(nil)
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// Sender writes every message to a writer.
type Sender struct {
	mu  sync.Mutex
	out io.Writer
	seq int
}

// NewSender creates a console sender. A nil writer selects stdout.
func NewSender(out io.Writer) *Sender {
	if out == nil {
		out = os.Stdout
	}
	return &Sender{out: out}
}

// Name identifies the sender in health reports.
func (s *Sender) Name() string {
	return "console sender"
}

// Check always succeeds.
func (s *Sender) Check(context.Context) error {
	return nil
}

// Send prints the message under a channel header and returns a local id.
func (s *Sender) Send(ctx context.Context, channelID, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := "dry-run-" + strconv.Itoa(s.seq)
	if _, err := fmt.Fprintf(s.out, "%s\n%s\n\n", headerStyle.Render("→ "+channelID+" ("+id+")"), text); err != nil {
		return "", fmt.Errorf("writing message: %w", err)
	}
	return id, nil
}
