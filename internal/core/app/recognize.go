package app

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/data/history"
	"grammarfsa/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Outcome is the answer to one recognition request.
type Outcome struct {
	ID       string
	Input    string
	Accepted bool
	Tokens   int
	Steps    int
	Duration time.Duration
}

// Recognize runs input through the current automaton, bounded by the
// configured timeout and step limit. A rejected input is a normal Outcome;
// errors mean the question could not be answered.
func (a *App) Recognize(ctx context.Context, input string) (Outcome, error) {
	out := Outcome{ID: uuid.NewString(), Input: input}

	ctx, span := observability.Tracer.Start(ctx, "app.Recognize",
		trace.WithAttributes(attribute.String("request.id", out.ID)))
	defer span.End()

	automaton := a.Automaton()
	if automaton == nil {
		err := errors.New(errors.CodeNotFound, "no grammar loaded")
		spanFail(span, err)
		return out, err
	}

	if timeout := a.Config.Search.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := a.limiter.Wait(ctx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = timeoutError(ctxErr)
		} else {
			observability.RateLimitedTotal.Inc()
			err = errors.Wrap(err, errors.CodeRateLimited, "recognition rate limit exceeded")
		}
		err = errors.AddContext(err, "request_id", out.ID)
		spanFail(span, err)
		return out, err
	}

	began := time.Now()
	res, err := automaton.Run(ctx, input)
	out.Duration = time.Since(began)
	out.Tokens = res.Tokens
	out.Steps = res.Steps
	out.Accepted = res.Accepted
	observability.RecognitionDuration.Observe(out.Duration.Seconds())

	result := observability.ResultReject
	switch {
	case err != nil:
		result = observability.ResultError
	case out.Accepted:
		result = observability.ResultAccept
	}
	observability.RecognitionsTotal.WithLabelValues(result).Inc()
	span.SetAttributes(attribute.String("result", result), attribute.Int("steps", out.Steps))

	a.record(ctx, out, err)

	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
			err = timeoutError(err)
		}
		spanFail(span, err)
		return out, errors.AddContext(err, "request_id", out.ID)
	}
	return out, nil
}

func (a *App) record(ctx context.Context, out Outcome, runErr error) {
	if a.history == nil {
		return
	}
	rec := history.Record{
		ID:         out.ID,
		GrammarKey: a.Config.DB.GrammarKey,
		Input:      out.Input,
		Accepted:   out.Accepted,
		Tokens:     out.Tokens,
		Steps:      out.Steps,
		Duration:   out.Duration,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	// The request context may already be past its deadline.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if _, err := a.history.Save(saveCtx, rec); err != nil {
		slog.Warn("failed to record recognition", "id", out.ID, "error", err)
	}
}

// timeoutError keeps the context error reachable through errors.Is.
func timeoutError(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return errors.Wrap(err, errors.CodeTimeout, "recognition cancelled")
	}
	return errors.Wrap(err, errors.CodeTimeout, "recognition timed out")
}
