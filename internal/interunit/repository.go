package interunit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mizan-erp/mizan/internal/coa"
	"github.com/mizan-erp/mizan/internal/shared"
)

// Repository encapsulates DB operations for transfers. Both legs of a
// posting run inside one WithTx call; the storage layer must serialize
// concurrent balance writers, which the pgx implementation does with
// optimistic version checks.
type Repository interface {
	ListTransfers(ctx context.Context) ([]Transfer, error)
	GetTransfer(ctx context.Context, id string) (Transfer, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes operations available within a posting transaction.
type TxRepository interface {
	GetAccount(ctx context.Context, entityID, accountID string) (coa.Account, error)
	// ApplyBalanceDelta adds delta to the account balance iff the stored
	// version still matches; a stale version yields a conflict error.
	ApplyBalanceDelta(ctx context.Context, entityID, accountID string, delta decimal.Decimal, expectedVersion int64) error
	InsertTransfer(ctx context.Context, t Transfer) error
	InsertEffects(ctx context.Context, effects []LedgerEffect) error
	UpdateTransferStatus(ctx context.Context, id string, status TransferStatus) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a pgx-backed transfer repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const transferColumns = `id, transfer_number, from_entity_id, to_entity_id, from_account_id, to_account_id, amount, currency, date, description, status, created_at, updated_at`

func scanTransfer(row pgx.Row) (Transfer, error) {
	var t Transfer
	var amount string
	if err := row.Scan(&t.ID, &t.TransferNumber, &t.FromEntityID, &t.ToEntityID, &t.FromAccountID,
		&t.ToAccountID, &amount, &t.Currency, &t.Date, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transfer{}, err
	}
	var err error
	t.Amount, err = decimal.NewFromString(amount)
	return t, err
}

func (r *repository) ListTransfers(ctx context.Context) ([]Transfer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transferColumns+` FROM transfers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) GetTransfer(ctx context.Context, id string) (Transfer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id=$1`, id)
	t, err := scanTransfer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transfer{}, shared.NotFound("transfer does not exist")
	}
	return t, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccount(ctx context.Context, entityID, accountID string) (coa.Account, error) {
	row := r.tx.QueryRow(ctx, `SELECT entity_id, id, name, account_type, subtype, parent_id, is_group, related_entity_id, allowed_currencies, balance, version, created_at, updated_at
FROM accounts WHERE entity_id=$1 AND id=$2 FOR UPDATE`, entityID, accountID)
	var a coa.Account
	var subtype, related *string
	var balance string
	err := row.Scan(&a.EntityID, &a.ID, &a.Name, &a.Type, &subtype, &a.ParentID, &a.IsGroup,
		&related, &a.AllowedCurrencies, &balance, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return coa.Account{}, shared.NotFound("account does not exist").WithEntity(entityID).WithAccount(accountID)
	}
	if err != nil {
		return coa.Account{}, err
	}
	if subtype != nil {
		a.Subtype = coa.Subtype(*subtype)
	}
	if related != nil {
		a.RelatedEntityID = *related
	}
	a.Balance, err = decimal.NewFromString(balance)
	return a, err
}

func (r *txRepository) ApplyBalanceDelta(ctx context.Context, entityID, accountID string, delta decimal.Decimal, expectedVersion int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE accounts SET balance = balance + $3, version = version + 1, updated_at = now()
WHERE entity_id=$1 AND id=$2 AND version=$4`, entityID, accountID, delta.String(), expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.Conflict("account balance changed concurrently").
			WithEntity(entityID).WithAccount(accountID)
	}
	return nil
}

func (r *txRepository) InsertTransfer(ctx context.Context, t Transfer) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO transfers
(id, transfer_number, from_entity_id, to_entity_id, from_account_id, to_account_id, amount, currency, date, description, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		t.ID, t.TransferNumber, t.FromEntityID, t.ToEntityID, t.FromAccountID, t.ToAccountID,
		t.Amount.String(), t.Currency, t.Date, t.Description, t.Status)
	return err
}

func (r *txRepository) InsertEffects(ctx context.Context, effects []LedgerEffect) error {
	for _, e := range effects {
		if _, err := r.tx.Exec(ctx, `INSERT INTO transfer_effects (transfer_id, entity_id, account_id, side, amount)
VALUES ($1,$2,$3,$4,$5)`, e.TransferID, e.EntityID, e.AccountID, e.Side, e.Amount.String()); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) UpdateTransferStatus(ctx context.Context, id string, status TransferStatus) error {
	tag, err := r.tx.Exec(ctx, `UPDATE transfers SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("transfer does not exist")
	}
	return nil
}
