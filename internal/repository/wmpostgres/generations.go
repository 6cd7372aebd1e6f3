// Package wmpostgres holds the Postgres implementations of the generation and
// watermark-settings repositories.
package wmpostgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type GenerationRepo struct {
	DB *dbpg.DB
}

func (p GenerationRepo) Create(ctx context.Context, g *model.Generation) error {
	query := `INSERT INTO generations (gen_uid, user_email, prompt, filename, width, height, source_key, result_key, status, err_msg, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	return p.DB.QueryRowContext(ctx, query, g.UID, g.UserEmail, g.Prompt, g.Filename, g.Width, g.Height, g.SourceKey, g.ResultKey, g.Status, g.ErrMsg, g.CreatedAt, g.CreatedAt).Err()
}

func (p GenerationRepo) Get(ctx context.Context, id string) (*model.Generation, error) {
	query := `SELECT gen_uid, user_email, prompt, filename, width, height, source_key, result_key, status, err_msg, created_at, updated_at
	FROM generations
	WHERE gen_uid = $1`
	var g model.Generation

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&g.UID,
		&g.UserEmail,
		&g.Prompt,
		&g.Filename,
		&g.Width,
		&g.Height,
		&g.SourceKey,
		&g.ResultKey,
		&g.Status,
		&g.ErrMsg,
		&g.CreatedAt,
		&g.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrImageNotFound
		default:
			return nil, err // 500
		}
	}
	return &g, nil
}

func (p GenerationRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Generation, error) {
	query := fmt.Sprintf(`SELECT gen_uid, user_email, prompt, filename, width, height, status, err_msg, created_at, updated_at
	FROM generations
	ORDER BY %s %s
	LIMIT $1
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	gens := make([]model.Generation, 0, req.Limit)
	for rows.Next() {
		var g model.Generation
		if err := rows.Scan(&g.UID,
			&g.UserEmail,
			&g.Prompt,
			&g.Filename,
			&g.Width,
			&g.Height,
			&g.Status,
			&g.ErrMsg,
			&g.CreatedAt,
			&g.UpdatedAt); err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return gens, nil
}

func (p GenerationRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM generations
	WHERE gen_uid = $1`

	row := p.DB.QueryRowContext(ctx, query, id)
	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

func (p GenerationRepo) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	query := `UPDATE generations SET status = $1, updated_at = now() WHERE gen_uid = $2`
	row := p.DB.QueryRowContext(ctx, query, newStat, id)

	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

func (p GenerationRepo) SaveResult(ctx context.Context, g *model.Generation) error {
	query := `UPDATE generations SET status = $1, updated_at = $2, result_key = $3, err_msg = $4 WHERE gen_uid = $5`
	row := p.DB.QueryRowContext(ctx, query, g.Status, g.UpdatedAt, g.ResultKey, g.ErrMsg, g.UID)

	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			return row.Err() // 500
		}
	}

	return nil
}

func (p GenerationRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT gen_uid
	FROM generations
	WHERE status IN ($1, $2)
	AND updated_at < now() - interval '10 minutes'
	LIMIT $3`

	rows, err := p.DB.QueryContext(ctx, query, model.StatusCreated, model.StatusInProgress, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	orphans := make([]string, 0, limit)
	for rows.Next() {
		uid := ""
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		orphans = append(orphans, uid)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return orphans, nil
}
