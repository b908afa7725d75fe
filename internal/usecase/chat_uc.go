package usecase

import (
	"context"
	"fmt"
	"time"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ChatGateUseCase = (*chatGateUC)(nil)

// ChatQuota describes what a user may still send today. Remaining is -1 for premium users.
type ChatQuota struct {
	Premium   bool
	Limit     int
	Used      int
	Remaining int
	ResetsAt  time.Time
}

// ChatGateUseCase gates the AI coach on entitlement: premium users are
// unlimited, free users get a daily message allowance.
type ChatGateUseCase interface {
	Quota(ctx context.Context, userID string) (*ChatQuota, error)
	// Consume records one message. It returns domain.ErrChatLimitReached once the
	// free allowance is spent.
	Consume(ctx context.Context, userID string) (*ChatQuota, error)
}

type chatGateUC struct {
	ledger    LedgerUseCase
	counter   repository.UsageCounter
	freeDaily int
	now       func() time.Time
	log       *zerolog.Logger
}

func NewChatGateUseCase(ledger LedgerUseCase, counter repository.UsageCounter, freeDaily int, logger *zerolog.Logger) ChatGateUseCase {
	l := logger.With().Str("component", "ChatGateUC").Logger()
	return &chatGateUC{ledger: ledger, counter: counter, freeDaily: freeDaily, now: time.Now, log: &l}
}

func (c *chatGateUC) Quota(ctx context.Context, userID string) (*ChatQuota, error) {
	premium, err := c.ledger.IsEntitled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if premium {
		return c.premiumQuota(), nil
	}
	key, resets := c.dailyKey(userID)
	used, err := c.counter.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.freeQuota(int(used), resets), nil
}

func (c *chatGateUC) Consume(ctx context.Context, userID string) (*ChatQuota, error) {
	premium, err := c.ledger.IsEntitled(ctx, userID)
	if err != nil {
		return nil, err
	}
	// keep the cached flag honest on every chat turn
	if _, err := c.ledger.SyncEntitlementFlag(ctx, userID); err != nil {
		return nil, err
	}
	if premium {
		return c.premiumQuota(), nil
	}

	key, resets := c.dailyKey(userID)
	used, err := c.counter.Incr(ctx, key, resets.Sub(c.now())+time.Minute)
	if err != nil {
		return nil, err
	}
	q := c.freeQuota(int(used), resets)
	if int(used) > c.freeDaily {
		c.log.Info().Str("user_id", userID).Int("limit", c.freeDaily).Msg("daily chat limit reached")
		return q, domain.ErrChatLimitReached
	}
	return q, nil
}

func (c *chatGateUC) premiumQuota() *ChatQuota {
	return &ChatQuota{Premium: true, Limit: -1, Remaining: -1}
}

func (c *chatGateUC) freeQuota(used int, resets time.Time) *ChatQuota {
	if used > c.freeDaily {
		used = c.freeDaily
	}
	return &ChatQuota{
		Limit:     c.freeDaily,
		Used:      used,
		Remaining: c.freeDaily - used,
		ResetsAt:  resets,
	}
}

// dailyKey buckets usage per UTC calendar day.
func (c *chatGateUC) dailyKey(userID string) (string, time.Time) {
	now := c.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf("chat:daily:%s:%s", userID, start.Format("20060102")), start.Add(24 * time.Hour)
}
