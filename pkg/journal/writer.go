package journal

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"go.uber.org/zap"
)

// Writer appends transitions to a stream of length-delimited protobuf records.
// A header record opens every episode. Write errors are sticky and reported by
// Err and Flush.
type Writer struct {
	logger  *zap.Logger
	w       *bufio.Writer
	episode utility.EpisodeID
	opened  bool
	buf     []byte
	lastErr error
}

func NewWriter(logger *zap.Logger, w io.Writer) *Writer {
	return &Writer{
		logger: logger,
		w:      bufio.NewWriter(w),
	}
}

func (w *Writer) Write(tr simulation.Transition) error {
	if w.lastErr != nil {
		return w.lastErr
	}

	if !w.opened || tr.EpisodeID != w.episode {
		if err := w.record(fieldHeader, appendHeader(nil, Header{EpisodeID: tr.EpisodeID, Symbols: tr.Symbols})); err != nil {
			return err
		}
		w.episode = tr.EpisodeID
		w.opened = true
	}

	return w.record(fieldEntry, appendEntry(nil, entryOf(tr)))
}

func (w *Writer) record(num fieldNumber, payload []byte) error {
	w.buf = appendRecord(w.buf[:0], num, payload)
	if _, err := w.w.Write(w.buf); err != nil {
		w.lastErr = fmt.Errorf("journal write: %w", err)
		return w.lastErr
	}
	return nil
}

// Handle is a simulation.TransitionHandler.
func (w *Writer) Handle(_ context.Context, tr simulation.Transition) {
	if err := w.Write(tr); err != nil {
		w.logger.Error("unable to journal transition", zap.Int("step", tr.Step), zap.Error(err))
	}
}

// WithTransition journals a transition and then passes it on.
func (w *Writer) WithTransition(handler simulation.TransitionHandler) simulation.TransitionHandler {
	return func(ctx context.Context, tr simulation.Transition) {
		w.Handle(ctx, tr)
		handler(ctx, tr)
	}
}

func (w *Writer) Err() error { return w.lastErr }

func (w *Writer) Flush() error {
	if w.lastErr != nil {
		return w.lastErr
	}
	if err := w.w.Flush(); err != nil {
		w.lastErr = fmt.Errorf("journal flush: %w", err)
	}
	return w.lastErr
}
