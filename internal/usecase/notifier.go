package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// OddsNotifier receives the odds records upserted by one reconciliation
// pass. Delivery is best-effort.
type OddsNotifier interface {
	NotifyChanged(ctx context.Context, records []odds.Odds) error
}

type noopOddsNotifier struct{}

func (noopOddsNotifier) NotifyChanged(context.Context, []odds.Odds) error {
	return nil
}

func NewNoopOddsNotifier() OddsNotifier {
	return noopOddsNotifier{}
}

// NotifierFanout delivers to every notifier concurrently. One notifier
// failing or panicking does not stop the others.
type NotifierFanout struct {
	notifiers []OddsNotifier
	logger    *logging.Logger
}

func NewNotifierFanout(logger *logging.Logger, notifiers ...OddsNotifier) *NotifierFanout {
	if logger == nil {
		logger = logging.Default()
	}
	items := make([]OddsNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			items = append(items, n)
		}
	}
	return &NotifierFanout{notifiers: items, logger: logger}
}

func (f *NotifierFanout) NotifyChanged(ctx context.Context, records []odds.Odds) error {
	if len(records) == 0 || len(f.notifiers) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   conc.WaitGroup
	)
	for _, n := range f.notifiers {
		wg.Go(func() {
			if err := n.NotifyChanged(ctx, records); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}

	if recovered := wg.WaitAndRecover(); recovered != nil {
		f.logger.ErrorContext(ctx, "odds notifier panicked", "panic", recovered.String())
		errs = append(errs, fmt.Errorf("notifier panic: %v", recovered.Value))
	}

	return errors.Join(errs...)
}
