package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a run on SIGINT/SIGTERM and tells the user how
// to roll back what already happened. Cancellation of the parent context
// counts as an interrupt, so a caller that also listens for signals sees
// the same outcome whichever listener fires first.
type InterruptHandler struct {
	writer      io.Writer
	parent      context.Context
	interrupted bool
	showUndo    bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer: writer,
	}
}

// HandleInterrupts returns a context that is canceled on interrupt. When
// showUndo is set the interrupt message mentions the undo command.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, showUndo bool) context.Context {
	h.mu.Lock()
	h.parent = ctx
	h.showUndo = showUndo
	h.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.interrupt()
			cancel()
		case <-ctx.Done():
			// only the parent can cancel ctx here
			h.interrupt()
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.interrupted {
		h.interrupted = true
		h.showInterruptMessage()
	}
}

// showInterruptMessage displays a friendly interrupt message.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Reorganization interrupted!")

	if h.showUndo {
		msg += "\n" + FormatInfo("Moves made so far are recorded. Roll them back with: sortsense undo")
	}

	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		// Best effort - we're shutting down anyway
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted or the parent
// context has been canceled.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	parent := h.parent
	h.mu.Unlock()
	if parent != nil && parent.Err() != nil {
		h.interrupt()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
