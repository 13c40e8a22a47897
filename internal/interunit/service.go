package interunit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mizan-erp/mizan/internal/coa"
	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/internal/shared"
)

// balanceEpsilon bounds the system-wide intercompany difference that
// still counts as balanced.
var balanceEpsilon = decimal.RequireFromString("0.01")

// NumberSource hands out transfer display numbers.
type NumberSource interface {
	Next(ctx context.Context) (string, error)
}

// AccountsPort is the slice of the accounts repository the engine needs.
type AccountsPort interface {
	ListAll(ctx context.Context) ([]coa.Account, error)
	ListIntercompany(ctx context.Context, entityID string) ([]coa.Account, error)
}

// EntityLookup resolves entity records for the legacy name-matching
// fallback during intercompany discovery.
type EntityLookup interface {
	Get(id string) (org.Entity, bool)
}

// Service posts cross-unit transfers as paired ledger effects and nets
// out mirrored intercompany balances.
type Service struct {
	repo     Repository
	accounts AccountsPort
	entities EntityLookup
	numbers  NumberSource
	logger   *slog.Logger
	currency string
	now      func() time.Time
}

// NewService wires the transfer engine. baseCurrency is used for
// reconciliation postings, which carry no caller-provided currency.
func NewService(repo Repository, accounts AccountsPort, entities EntityLookup, numbers NumberSource, logger *slog.Logger, baseCurrency string) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		entities: entities,
		numbers:  numbers,
		logger:   logger,
		currency: baseCurrency,
		now:      time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context) ([]Transfer, error) {
	return s.repo.ListTransfers(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Transfer, error) {
	return s.repo.GetTransfer(ctx, id)
}

// CreateTransfer posts a cross-unit movement: a debit leg on the sending
// account and a credit leg on the receiving account, inside one
// transaction. The transfer completes only when both legs post; any leg
// failure rolls the whole posting back. A stale balance version is
// retried once with fresh data before the conflict is surfaced.
//
// With in.Draft set the transfer is only recorded as pending: both
// accounts are verified but no balance moves until Post. Drafts still
// consume a transfer number.
func (s *Service) CreateTransfer(ctx context.Context, in CreateTransferInput) (Transfer, error) {
	if err := s.validateInput(in); err != nil {
		return Transfer{}, err
	}
	number, err := s.numbers.Next(ctx)
	if err != nil {
		return Transfer{}, err
	}
	transfer := Transfer{
		ID:             uuid.NewString(),
		TransferNumber: number,
		FromEntityID:   in.FromEntityID,
		ToEntityID:     in.ToEntityID,
		FromAccountID:  in.FromAccountID,
		ToAccountID:    in.ToAccountID,
		Amount:         in.Amount,
		Currency:       in.Currency,
		Date:           in.Date,
		Description:    in.Description,
		Status:         StatusCompleted,
	}

	if in.Draft {
		transfer.Status = StatusPending
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			if _, err := tx.GetAccount(ctx, transfer.FromEntityID, transfer.FromAccountID); err != nil {
				return err
			}
			if _, err := tx.GetAccount(ctx, transfer.ToEntityID, transfer.ToAccountID); err != nil {
				return err
			}
			return tx.InsertTransfer(ctx, transfer)
		})
		if err != nil {
			return Transfer{}, err
		}
		s.logger.Info("transfer drafted",
			slog.String("number", transfer.TransferNumber),
			slog.String("from", in.FromEntityID),
			slog.String("to", in.ToEntityID))
		return transfer, nil
	}

	err = s.post(ctx, transfer, false)
	if shared.IsConflict(err) {
		s.logger.Warn("transfer posting conflicted, retrying once",
			slog.String("transfer", transfer.TransferNumber))
		err = s.post(ctx, transfer, false)
	}
	if err != nil {
		return Transfer{}, err
	}
	s.logger.Info("transfer posted",
		slog.String("number", transfer.TransferNumber),
		slog.String("from", in.FromEntityID),
		slog.String("to", in.ToEntityID),
		slog.String("amount", in.Amount.String()))
	return transfer, nil
}

// Post turns a pending transfer into a completed posting, moving both
// balances with the same all-or-nothing and retry-once semantics as a
// direct posting.
func (s *Service) Post(ctx context.Context, id string) (Transfer, error) {
	transfer, err := s.repo.GetTransfer(ctx, id)
	if err != nil {
		return Transfer{}, err
	}
	if transfer.Status != StatusPending {
		return Transfer{}, shared.Validation("only pending transfers can be posted")
	}
	err = s.post(ctx, transfer, true)
	if shared.IsConflict(err) {
		s.logger.Warn("transfer posting conflicted, retrying once",
			slog.String("transfer", transfer.TransferNumber))
		err = s.post(ctx, transfer, true)
	}
	if err != nil {
		return Transfer{}, err
	}
	transfer.Status = StatusCompleted
	s.logger.Info("transfer posted",
		slog.String("number", transfer.TransferNumber),
		slog.String("from", transfer.FromEntityID),
		slog.String("to", transfer.ToEntityID),
		slog.String("amount", transfer.Amount.String()))
	return transfer, nil
}

// post moves both balances and records the trail. existing marks a
// previously drafted transfer that only needs its status flipped.
func (s *Service) post(ctx context.Context, t Transfer, existing bool) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		from, err := tx.GetAccount(ctx, t.FromEntityID, t.FromAccountID)
		if err != nil {
			return err
		}
		to, err := tx.GetAccount(ctx, t.ToEntityID, t.ToAccountID)
		if err != nil {
			return err
		}
		if from.IsGroup || to.IsGroup {
			return shared.Validation("cannot post to a group account")
		}
		if err := currencyAllowed(from, t.Currency); err != nil {
			return err
		}
		if err := currencyAllowed(to, t.Currency); err != nil {
			return err
		}
		if err := tx.ApplyBalanceDelta(ctx, from.EntityID, from.ID, t.Amount.Neg(), from.Version); err != nil {
			return err
		}
		if err := tx.ApplyBalanceDelta(ctx, to.EntityID, to.ID, t.Amount, to.Version); err != nil {
			return err
		}
		if existing {
			if err := tx.UpdateTransferStatus(ctx, t.ID, StatusCompleted); err != nil {
				return err
			}
		} else if err := tx.InsertTransfer(ctx, t); err != nil {
			return err
		}
		return tx.InsertEffects(ctx, []LedgerEffect{
			{TransferID: t.ID, EntityID: t.FromEntityID, AccountID: t.FromAccountID, Side: SideDebit, Amount: t.Amount},
			{TransferID: t.ID, EntityID: t.ToEntityID, AccountID: t.ToAccountID, Side: SideCredit, Amount: t.Amount},
		})
	})
}

func (s *Service) validateInput(in CreateTransferInput) error {
	if in.FromEntityID == in.ToEntityID {
		return shared.Validation("transfer requires two different entities").WithEntity(in.FromEntityID)
	}
	if !in.Amount.IsPositive() {
		return shared.Validation("transfer amount must be positive")
	}
	if len(in.Currency) != 3 {
		return shared.Validation("currency must be a three-letter code")
	}
	if in.FromAccountID == "" || in.ToAccountID == "" {
		return shared.Validation("both accounts are required")
	}
	return nil
}

func currencyAllowed(a coa.Account, currency string) error {
	if len(a.AllowedCurrencies) == 0 {
		return nil
	}
	for _, c := range a.AllowedCurrencies {
		if strings.EqualFold(c, currency) {
			return nil
		}
	}
	return shared.Validation("currency not allowed on account").
		WithEntity(a.EntityID).WithAccount(a.ID)
}

// Cancel voids a drafted transfer before it posts. Completed transfers
// stand; their number is never reused either way.
func (s *Service) Cancel(ctx context.Context, id string) error {
	transfer, err := s.repo.GetTransfer(ctx, id)
	if err != nil {
		return err
	}
	if transfer.Status != StatusPending {
		return shared.Validation("only pending transfers can be cancelled")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateTransferStatus(ctx, id, StatusCancelled)
	})
}

// findIntercompany locates ownerEntityID's intercompany account that
// names counterpartID. The explicit relatedEntityId link is
// authoritative; matching the counterpart's display name is kept only as
// a migration aid for rows created before the link existed.
func (s *Service) findIntercompany(ctx context.Context, ownerEntityID, counterpartID string) (coa.Account, error) {
	accounts, err := s.accounts.ListIntercompany(ctx, ownerEntityID)
	if err != nil {
		return coa.Account{}, err
	}
	for _, a := range accounts {
		if a.RelatedEntityID == counterpartID {
			return a, nil
		}
	}
	if counterpart, ok := s.entities.Get(counterpartID); ok && counterpart.Name != "" {
		needle := strings.ToLower(counterpart.Name)
		for _, a := range accounts {
			if a.RelatedEntityID == "" && strings.Contains(strings.ToLower(a.Name), needle) {
				s.logger.Warn("intercompany account located by name match, set relatedEntityId",
					slog.String("entity", ownerEntityID), slog.String("account", a.ID))
				return a, nil
			}
		}
	}
	return coa.Account{}, shared.NotFound("intercompany account toward counterpart not found").
		WithEntity(ownerEntityID)
}

// Reconcile posts a settlement transfer between the two units'
// intercompany accounts. It never creates accounts: both sides must
// already carry one toward the other.
func (s *Service) Reconcile(ctx context.Context, fromEntityID, toEntityID string, amount decimal.Decimal, description string) (Transfer, error) {
	if fromEntityID == toEntityID {
		return Transfer{}, shared.Validation("reconciliation requires two different entities").WithEntity(fromEntityID)
	}
	if !amount.IsPositive() {
		return Transfer{}, shared.Validation("reconciliation amount must be positive")
	}
	fromAccount, err := s.findIntercompany(ctx, fromEntityID, toEntityID)
	if err != nil {
		return Transfer{}, err
	}
	toAccount, err := s.findIntercompany(ctx, toEntityID, fromEntityID)
	if err != nil {
		return Transfer{}, err
	}
	return s.CreateTransfer(ctx, CreateTransferInput{
		FromEntityID:  fromEntityID,
		ToEntityID:    toEntityID,
		FromAccountID: fromAccount.ID,
		ToAccountID:   toAccount.ID,
		Amount:        amount,
		Currency:      s.currency,
		Date:          s.now(),
		Description:   description,
	})
}

// NetBalance reports the intercompany position for an ordered unit pair:
// A's balance toward B minus B's balance toward A.
func (s *Service) NetBalance(ctx context.Context, entityA, entityB string) (PairBalance, error) {
	accountA, err := s.findIntercompany(ctx, entityA, entityB)
	if err != nil {
		return PairBalance{}, err
	}
	accountB, err := s.findIntercompany(ctx, entityB, entityA)
	if err != nil {
		return PairBalance{}, err
	}
	net := accountA.Balance.Sub(accountB.Balance)
	return PairBalance{
		EntityA:   entityA,
		EntityB:   entityB,
		TowardB:   accountA.Balance,
		TowardA:   accountB.Balance,
		Net:       net,
		AsOf:      s.now(),
		AccountA:  accountA.ID,
		AccountB:  accountB.ID,
		Mirrored:  net.Abs().LessThanOrEqual(balanceEpsilon),
		Threshold: balanceEpsilon,
	}, nil
}

// CheckSystemBalance sums every intercompany account tagged asset minus
// every one tagged liability. A near-zero difference means the
// intercompany ledger is mirrored; anything else is flagged for review,
// never auto-corrected.
func (s *Service) CheckSystemBalance(ctx context.Context) (BalanceReport, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return BalanceReport{}, err
	}
	report := BalanceReport{CheckedAt: s.now()}
	for _, a := range accounts {
		if !a.IsIntercompany() {
			continue
		}
		switch a.Type {
		case coa.TypeAsset:
			report.AssetTotal = report.AssetTotal.Add(a.Balance)
		case coa.TypeLiability:
			report.LiabilityTotal = report.LiabilityTotal.Add(a.Balance)
		}
	}
	report.Difference = report.AssetTotal.Sub(report.LiabilityTotal)
	report.Balanced = report.Difference.Abs().LessThanOrEqual(balanceEpsilon)
	if !report.Balanced {
		s.logger.Warn("intercompany ledger out of balance",
			slog.String("difference", report.Difference.String()))
	}
	return report, nil
}
