package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mizan-erp/mizan/internal/shared"
)

// Repository encapsulates DB operations for accounts.
type Repository interface {
	ListAll(ctx context.Context) ([]Account, error)
	ListByEntity(ctx context.Context, entityID string) ([]Account, error)
	Get(ctx context.Context, entityID, id string) (Account, error)
	Create(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) error
	Delete(ctx context.Context, entityID, id string) error
	HasNonZeroBalances(ctx context.Context, entityID string) (bool, error)
	ListIntercompany(ctx context.Context, entityID string) ([]Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a pgx-backed account repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `entity_id, id, name, account_type, subtype, parent_id, is_group, related_entity_id, allowed_currencies, balance, version, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var subtype, related *string
	var balance string
	if err := row.Scan(&a.EntityID, &a.ID, &a.Name, &a.Type, &subtype, &a.ParentID, &a.IsGroup,
		&related, &a.AllowedCurrencies, &balance, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	if subtype != nil {
		a.Subtype = Subtype(*subtype)
	}
	if related != nil {
		a.RelatedEntityID = *related
	}
	var err error
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) ListAll(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY entity_id, id`)
	if err != nil {
		return nil, err
	}
	return collectAccounts(rows)
}

func (r *repository) ListByEntity(ctx context.Context, entityID string) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE entity_id=$1 ORDER BY id`, entityID)
	if err != nil {
		return nil, err
	}
	return collectAccounts(rows)
}

func (r *repository) Get(ctx context.Context, entityID, id string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE entity_id=$1 AND id=$2`, entityID, id)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.NotFound("account does not exist").WithEntity(entityID).WithAccount(id)
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts
(entity_id, id, name, account_type, subtype, parent_id, is_group, related_entity_id, allowed_currencies, balance)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7,NULLIF($8,''),$9,0)
RETURNING balance, version, created_at, updated_at`,
		a.EntityID, a.ID, a.Name, a.Type, string(a.Subtype), a.ParentID, a.IsGroup, a.RelatedEntityID, a.AllowedCurrencies)
	var balance string
	if err := row.Scan(&balance, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.Validation("account code already in use").
				WithEntity(a.EntityID).WithAccount(a.ID)
		}
		return Account{}, err
	}
	a.Balance, _ = decimal.NewFromString(balance)
	return a, nil
}

func (r *repository) Update(ctx context.Context, a Account) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET name=$3, account_type=$4, subtype=NULLIF($5,''),
parent_id=$6, is_group=$7, related_entity_id=NULLIF($8,''), allowed_currencies=$9, updated_at=now()
WHERE entity_id=$1 AND id=$2`,
		a.EntityID, a.ID, a.Name, a.Type, string(a.Subtype), a.ParentID, a.IsGroup, a.RelatedEntityID, a.AllowedCurrencies)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("account does not exist").WithEntity(a.EntityID).WithAccount(a.ID)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, entityID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE entity_id=$1 AND id=$2`, entityID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("account does not exist").WithEntity(entityID).WithAccount(id)
	}
	return nil
}

func (r *repository) HasNonZeroBalances(ctx context.Context, entityID string) (bool, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE entity_id=$1 AND balance <> 0`, entityID).Scan(&n)
	return n > 0, err
}

func (r *repository) ListIntercompany(ctx context.Context, entityID string) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE entity_id=$1 AND subtype='intercompany' ORDER BY id`, entityID)
	if err != nil {
		return nil, err
	}
	return collectAccounts(rows)
}
