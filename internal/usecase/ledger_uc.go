package usecase

import (
	"context"
	"time"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// LedgerUseCase is the read/write surface of the subscription ledger and the
// owner of the denormalized entitlement flag on users.
type LedgerUseCase interface {
	// IsEntitled sweeps lapsed subscriptions (globally) and reports whether the
	// user holds an active subscription that expires in the future.
	IsEntitled(ctx context.Context, userID string) (bool, error)
	// SyncEntitlementFlag recomputes and persists the user's premium/free flag.
	SyncEntitlementFlag(ctx context.Context, userID string) (model.EntitlementStatus, error)
	// Sweep expires every active subscription whose expiry is in the past.
	Sweep(ctx context.Context) (int, error)

	// GrantManual creates a comped subscription with a paired paid transaction.
	// A nil price uses the current plan price.
	GrantManual(ctx context.Context, userID, planType string, priceCents *int64) (*model.Subscription, *model.Transaction, error)

	CurrentSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	Get(ctx context.Context, id string) (*model.Subscription, error)
	List(ctx context.Context, page model.Page) ([]*model.Subscription, int, error)
	// Expire marks one subscription expired and resyncs its owner.
	Expire(ctx context.Context, id string) (*model.Subscription, error)
	// SetUserStatus lets admins force a user to premium (manual grant) or free (expire all).
	SetUserStatus(ctx context.Context, userID string, status model.EntitlementStatus, planType string) (model.EntitlementStatus, error)
}

var _ LedgerUseCase = (*ledgerUC)(nil)

type ledgerUC struct {
	subs    repository.SubscriptionRepository
	txns    repository.TransactionRepository
	users   repository.UserRepository
	pricing PricingUseCase
	tm      repository.TransactionManager
	now     func() time.Time
	log     *zerolog.Logger
}

func NewLedgerUseCase(
	subs repository.SubscriptionRepository,
	txns repository.TransactionRepository,
	users repository.UserRepository,
	pricing PricingUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) LedgerUseCase {
	l := logger.With().Str("component", "LedgerUC").Logger()
	return &ledgerUC{
		subs:    subs,
		txns:    txns,
		users:   users,
		pricing: pricing,
		tm:      tm,
		now:     time.Now,
		log:     &l,
	}
}

func (u *ledgerUC) Sweep(ctx context.Context) (int, error) {
	n, err := u.subs.ExpireLapsed(ctx, repository.NoTX, u.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.log.Info().Int("count", n).Msg("lapsed subscriptions expired")
	}
	return n, nil
}

func (u *ledgerUC) IsEntitled(ctx context.Context, userID string) (bool, error) {
	if _, err := u.Sweep(ctx); err != nil {
		return false, err
	}
	return u.subs.HasCurrent(ctx, repository.NoTX, userID, u.now())
}

func (u *ledgerUC) SyncEntitlementFlag(ctx context.Context, userID string) (model.EntitlementStatus, error) {
	ok, err := u.subs.HasCurrent(ctx, repository.NoTX, userID, u.now())
	if err != nil {
		return "", err
	}
	status := model.EntitlementFor(ok)
	if err := u.users.SetEntitlement(ctx, repository.NoTX, userID, status, nil); err != nil {
		return "", err
	}
	return status, nil
}

func (u *ledgerUC) GrantManual(ctx context.Context, userID, planType string, priceCents *int64) (*model.Subscription, *model.Transaction, error) {
	plan, err := model.ParsePlanType(planType)
	if err != nil {
		return nil, nil, err
	}
	settings, err := u.pricing.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	price := settings.PriceCents(plan)
	if priceCents != nil {
		if *priceCents < 0 {
			return nil, nil, domain.ErrInvalidArgument
		}
		price = *priceCents
	}

	var (
		sub *model.Subscription
		txn *model.Transaction
	)
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.users.FindByID(ctx, tx, userID); err != nil {
			return err
		}
		s, err := model.NewSubscription(userID, plan, price, settings.Currency, plan.ExpiryFrom(u.now()))
		if err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, s); err != nil {
			return err
		}
		t, err := model.NewTransaction(userID, price, settings.Currency, plan, model.TransactionStatusPaid, model.ManualReference())
		if err != nil {
			return err
		}
		if _, err := u.txns.InsertIfAbsent(ctx, tx, t); err != nil {
			return err
		}
		sub, txn = s, t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if _, err := u.SyncEntitlementFlag(ctx, userID); err != nil {
		return nil, nil, err
	}
	u.log.Info().Str("user_id", userID).Str("plan", string(plan)).Str("reference", txn.Reference).Msg("manual subscription granted")
	return sub, txn, nil
}

func (u *ledgerUC) CurrentSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	if _, err := u.Sweep(ctx); err != nil {
		return nil, err
	}
	return u.subs.FindCurrentByUser(ctx, repository.NoTX, userID, u.now())
}

func (u *ledgerUC) Get(ctx context.Context, id string) (*model.Subscription, error) {
	return u.subs.FindByID(ctx, repository.NoTX, id)
}

func (u *ledgerUC) List(ctx context.Context, page model.Page) ([]*model.Subscription, int, error) {
	total, err := u.subs.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	rows, err := u.subs.List(ctx, repository.NoTX, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (u *ledgerUC) Expire(ctx context.Context, id string) (*model.Subscription, error) {
	s, err := u.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if s.Status != model.SubscriptionStatusExpired {
		if err := u.subs.UpdateState(ctx, repository.NoTX, s.ID, model.SubscriptionStatusExpired, nil); err != nil {
			return nil, err
		}
		s.Status = model.SubscriptionStatusExpired
	}
	if _, err := u.SyncEntitlementFlag(ctx, s.UserID); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *ledgerUC) SetUserStatus(ctx context.Context, userID string, status model.EntitlementStatus, planType string) (model.EntitlementStatus, error) {
	switch status {
	case model.EntitlementPremium:
		entitled, err := u.IsEntitled(ctx, userID)
		if err != nil {
			return "", err
		}
		if !entitled {
			if planType == "" {
				planType = string(model.PlanMonthly)
			}
			if _, _, err := u.GrantManual(ctx, userID, planType, nil); err != nil {
				return "", err
			}
		}
	case model.EntitlementFree:
		if _, err := u.users.FindByID(ctx, repository.NoTX, userID); err != nil {
			return "", err
		}
		n, err := u.subs.ExpireActiveByUser(ctx, repository.NoTX, userID)
		if err != nil {
			return "", err
		}
		u.log.Info().Str("user_id", userID).Int("expired", n).Msg("user downgraded to free")
	default:
		return "", domain.ErrInvalidArgument
	}
	return u.SyncEntitlementFlag(ctx, userID)
}
