package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizan-erp/mizan/internal/shared"
)

// Repository encapsulates DB operations for entities.
type Repository interface {
	List(ctx context.Context) ([]Entity, error)
	Get(ctx context.Context, id string) (Entity, error)
	Create(ctx context.Context, e Entity) (Entity, error)
	Update(ctx context.Context, e Entity) error
	UpdateLogo(ctx context.Context, id string, logo []byte) error
	Delete(ctx context.Context, id string) error
	CountChildren(ctx context.Context, id string) (int, error)
	HoldingExists(ctx context.Context) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a pgx-backed entity repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entityColumns = `id, name, kind, parent_id, theme_color, logo, created_at, updated_at`

func scanEntity(row pgx.Row) (Entity, error) {
	var e Entity
	var themeColor *string
	if err := row.Scan(&e.ID, &e.Name, &e.Kind, &e.ParentID, &themeColor, &e.Logo, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entity{}, err
	}
	if themeColor != nil {
		e.ThemeColor = *themeColor
	}
	return e, nil
}

func (r *repository) List(ctx context.Context) ([]Entity, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entityColumns+` FROM entities ORDER BY kind, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Entity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = $1`, id)
	e, err := scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entity{}, shared.NotFound("entity does not exist").WithEntity(id)
	}
	return e, err
}

func (r *repository) Create(ctx context.Context, e Entity) (Entity, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO entities (id, name, kind, parent_id, theme_color, logo)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6) RETURNING created_at, updated_at`,
		e.ID, e.Name, e.Kind, e.ParentID, e.ThemeColor, e.Logo)
	if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entity{}, err
	}
	return e, nil
}

func (r *repository) Update(ctx context.Context, e Entity) error {
	tag, err := r.db.Exec(ctx, `UPDATE entities SET name=$2, parent_id=$3, theme_color=NULLIF($4,''), updated_at=now() WHERE id=$1`,
		e.ID, e.Name, e.ParentID, e.ThemeColor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("entity does not exist").WithEntity(e.ID)
	}
	return nil
}

func (r *repository) UpdateLogo(ctx context.Context, id string, logo []byte) error {
	tag, err := r.db.Exec(ctx, `UPDATE entities SET logo=$2, updated_at=now() WHERE id=$1`, id, logo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("entity does not exist").WithEntity(id)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM entities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("entity does not exist").WithEntity(id)
	}
	return nil
}

func (r *repository) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM entities WHERE parent_id=$1`, id).Scan(&n)
	return n, err
}

func (r *repository) HoldingExists(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM entities WHERE kind='holding'`).Scan(&n)
	return n > 0, err
}
