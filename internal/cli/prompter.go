package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/sortsense/internal/planner"
)

// Prompter asks the user on the terminal before new destination folders
// are created. It implements planner.Decider.
type Prompter struct {
	writer io.Writer
	reader *LineReader
}

// NewPrompter creates a prompter with the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// Decide implements planner.Decider. Only "y" or "yes" accepts; closed
// input rejects.
func (p *Prompter) Decide(ctx context.Context, prop planner.Proposal) (planner.Decision, error) {
	parent := prop.Parent
	if parent == "" || parent == "." {
		parent = "destination root"
	}

	content := fmt.Sprintf("%s Folder: %s\n", FolderIcon, BoldStyle.Render(prop.Folder+"/")) +
		fmt.Sprintf("  Under: %s\n", parent) +
		fmt.Sprintf("  Category: %s\n", prop.Category) +
		fmt.Sprintf("  File: %s\n", filepath.Base(prop.Source)) +
		fmt.Sprintf("  Confidence: %.1f%%", prop.Confidence*100)

	if _, err := fmt.Fprintln(p.writer, RenderBox("New folder", content)); err != nil {
		return planner.Reject, fmt.Errorf("failed to write folder box: %w", err)
	}

	ok, err := p.Confirm(ctx, fmt.Sprintf("Create '%s/'?", prop.Folder))
	if err != nil {
		return planner.Reject, err
	}
	if !ok {
		if _, err := fmt.Fprintln(p.writer, SubtleStyle.Render(fmt.Sprintf("  Using %s-misc/ instead", prop.Category))); err != nil {
			slog.Warn("Failed to write rejection note", "error", err)
		}
		return planner.Reject, nil
	}
	return planner.Accept, nil
}

// Confirm asks a yes/no question. The default is no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprintf(p.writer, "%s [y/N]: ", FormatPrompt(question)); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			slog.Debug("Input closed, treating as no", "question", question)
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var _ planner.Decider = (*Prompter)(nil)
