package broadcast

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

const (
	defaultChannel     = "odds:updates"
	defaultStream      = "odds:stream"
	defaultStreamLen   = 10000
	defaultSnapshotTTL = 6 * time.Hour
	snapshotKeyPrefix  = "odds:latest:"
)

type RedisPublisherConfig struct {
	Channel      string
	Stream       string
	StreamMaxLen int64
	SnapshotTTL  time.Duration
}

// RedisPublisher mirrors each pass's odds update to Redis for other
// processes: a pub/sub frame, per-match latest snapshots and a capped stream.
type RedisPublisher struct {
	client redis.UniversalClient
	cfg    RedisPublisherConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewRedisPublisher(client redis.UniversalClient, cfg RedisPublisherConfig, logger *logging.Logger) *RedisPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		cfg.Channel = defaultChannel
	}
	if strings.TrimSpace(cfg.Stream) == "" {
		cfg.Stream = defaultStream
	}
	if cfg.StreamMaxLen <= 0 {
		cfg.StreamMaxLen = defaultStreamLen
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = defaultSnapshotTTL
	}
	return &RedisPublisher{
		client: client,
		cfg:    cfg,
		logger: logger.Named("redis-publisher"),
		now:    time.Now,
	}
}

func (p *RedisPublisher) NotifyChanged(ctx context.Context, records []odds.Odds) error {
	if len(records) == 0 {
		return nil
	}

	frame, err := odds.EncodeUpdate(records)
	if err != nil {
		return fmt.Errorf("encode odds update: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, p.cfg.Channel, frame)
	for _, record := range records {
		key := SnapshotKey(record.MatchID)
		pipe.HSet(ctx, key, snapshotFields(record))
		pipe.Expire(ctx, key, p.cfg.SnapshotTTL)
	}
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: p.cfg.Stream,
		MaxLen: p.cfg.StreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"type":        odds.MessageTypeUpdate,
			"records":     len(records),
			"payload":     frame,
			"occurred_at": p.now().UTC().Format(time.RFC3339Nano),
		},
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: publish odds update to redis: %v", usecase.ErrDependencyUnavailable, err)
	}

	p.logger.DebugContext(ctx, "odds update published", "channel", p.cfg.Channel, "records", len(records))
	return nil
}

func SnapshotKey(matchID string) string {
	return snapshotKeyPrefix + matchID
}

func snapshotFields(record odds.Odds) map[string]any {
	fields := map[string]any{
		"match_id":     record.MatchID,
		"home_team":    record.HomeTeam,
		"away_team":    record.AwayTeam,
		"home_odds":    strconv.FormatFloat(record.HomeOdds, 'f', -1, 64),
		"away_odds":    strconv.FormatFloat(record.AwayOdds, 'f', -1, 64),
		"bookmaker":    record.Bookmaker,
		"status":       record.Status,
		"is_in_sheet":  strconv.FormatBool(record.IsInSheet),
		"last_updated": record.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
	if record.ScheduledAt != nil {
		fields["scheduled_at"] = record.ScheduledAt.UTC().Format(time.RFC3339)
	}
	return fields
}
