// AngelaMos | 2026
// service.go

package qr

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/progression"
	"github.com/wegtu/wegtu-backend/internal/user"
)

var ErrAlreadyUsed = errors.New("qr code already redeemed")

// UserStore is the slice of user storage redemption needs: activation
// out of tier 0 plus the XP hooks the award engine drives.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	ActivateTier(ctx context.Context, id string) (bool, error)
	AddXP(ctx context.Context, id string, amount int) (tier, xp int, err error)
	PromoteTier(ctx context.Context, id string, from, to int) (bool, error)
}

type Service struct {
	run  core.TxRunner
	repo Repository

	repoTx  func(core.DBTX) Repository
	usersTx func(core.DBTX) UserStore
}

func NewService(db *sqlx.DB) *Service {
	return newService(
		core.NewTxRunner(db),
		NewRepository(db),
		func(tx core.DBTX) Repository { return NewRepository(tx) },
		func(tx core.DBTX) UserStore { return user.NewRepository(tx) },
	)
}

func newService(
	run core.TxRunner,
	repo Repository,
	repoTx func(core.DBTX) Repository,
	usersTx func(core.DBTX) UserStore,
) *Service {
	return &Service{
		run:     run,
		repo:    repo,
		repoTx:  repoTx,
		usersTx: usersTx,
	}
}

// Peek looks a code up without consuming it. Scanning a printed code
// before logging in must never burn it.
func (s *Service) Peek(ctx context.Context, hashID string) (*Code, error) {
	return s.repo.GetByHash(ctx, hashID)
}

// Redeem consumes a code and credits its XP in one transaction. For a
// tier 0 member the first redemption activates the account into tier 1.
// The conditional update on is_used settles races: a code is consumed
// exactly once no matter how many scans arrive at the same moment.
func (s *Service) Redeem(
	ctx context.Context,
	userID, hashID string,
) (*RedeemResponse, error) {
	var resp *RedeemResponse

	err := s.run(ctx, func(tx core.DBTX) error {
		repo := s.repoTx(tx)
		users := s.usersTx(tx)

		code, err := repo.GetByHash(ctx, hashID)
		if err != nil {
			return err
		}

		consumed, err := repo.Consume(ctx, hashID, userID)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrAlreadyUsed
		}

		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		activated := false
		if u.Tier == progression.TierMin {
			activated, err = users.ActivateTier(ctx, userID)
			if err != nil {
				return fmt.Errorf("activate tier: %w", err)
			}
		}

		award, err := progression.AwardXP(ctx, users, userID, code.XPValue)
		if err != nil {
			return err
		}

		resp = &RedeemResponse{
			HashID:    hashID,
			XPAwarded: code.XPValue,
			XP:        award.XP,
			Tier:      award.Tier,
			Activated: activated,
			Promoted:  award.Promoted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// GenerateBatch mints count fresh codes. Admin only.
func (s *Service) GenerateBatch(
	ctx context.Context,
	count, xpValue int,
) ([]Code, error) {
	if xpValue <= 0 {
		xpValue = DefaultXPValue
	}

	codes := make([]Code, 0, count)

	err := s.run(ctx, func(tx core.DBTX) error {
		repo := s.repoTx(tx)

		for i := 0; i < count; i++ {
			hashID, err := core.GenerateCodeHash()
			if err != nil {
				return fmt.Errorf("generate hash: %w", err)
			}

			code := Code{
				ID:      uuid.New().String(),
				HashID:  hashID,
				XPValue: xpValue,
			}
			if err := repo.Create(ctx, &code); err != nil {
				return err
			}

			codes = append(codes, code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return codes, nil
}

func (s *Service) ListCodes(
	ctx context.Context,
	page, pageSize int,
) ([]Code, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return s.repo.List(ctx, page, pageSize)
}
