package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
)

type fakeFeed struct {
	rows []ExternalOddsRow
	err  error
}

func (f *fakeFeed) FetchOddsRows(context.Context) ([]ExternalOddsRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ExternalOddsRow, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

type fakeProvider struct {
	mu sync.Mutex

	live        []ExternalMatch
	liveErr     error
	schedules   map[string][]ExternalMatch
	scheduleErr error
	summaries   map[string]ExternalMatch
	summaryErr  error

	scheduleCalls int
	summaryCalls  int
}

func (p *fakeProvider) FetchLiveMatches(context.Context) ([]ExternalMatch, error) {
	if p.liveErr != nil {
		return nil, p.liveErr
	}
	return p.live, nil
}

func (p *fakeProvider) FetchScheduleByDate(_ context.Context, date time.Time) ([]ExternalMatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduleCalls++
	if p.scheduleErr != nil {
		return nil, p.scheduleErr
	}
	return p.schedules[date.Format(time.DateOnly)], nil
}

func (p *fakeProvider) FetchMatchSummary(_ context.Context, providerMatchID string) (ExternalMatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaryCalls++
	if p.summaryErr != nil {
		return ExternalMatch{}, p.summaryErr
	}
	item, ok := p.summaries[providerMatchID]
	if !ok {
		return ExternalMatch{}, fmt.Errorf("%w: summary %s", ErrNotFound, providerMatchID)
	}
	return item, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	batches [][]odds.Odds
	err     error
}

func (n *recordingNotifier) NotifyChanged(_ context.Context, records []odds.Odds) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, records)
	return n.err
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.batches)
}

type panickingNotifier struct{}

func (panickingNotifier) NotifyChanged(context.Context, []odds.Odds) error {
	panic("boom")
}

type countingInvalidator struct {
	count atomic.Int32
}

func (i *countingInvalidator) Invalidate(context.Context) {
	i.count.Add(1)
}

type sequenceIDs struct {
	next atomic.Int64
}

func (s *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("run-%d", s.next.Add(1)), nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
