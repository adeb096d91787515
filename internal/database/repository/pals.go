package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/c-hri-sw-u/PalPal/internal/pal"
)

// PalCacheRepo mirrors the user's pals locally so the home screen renders
// without waiting on the platform. The record store remains authoritative.
type PalCacheRepo struct {
	db *sql.DB
}

func NewPalCacheRepo(db *sql.DB) *PalCacheRepo { return &PalCacheRepo{db: db} }

func (r *PalCacheRepo) Upsert(ctx context.Context, p pal.Pal) error {
	photos, err := json.Marshal(p.FullBodyPhotos)
	if err != nil {
		return fmt.Errorf("marshal photos: %w", err)
	}
	traits, err := json.Marshal(p.Traits)
	if err != nil {
		return fmt.Errorf("marshal traits: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO pals(
	 id, owner_id, name, avatar_url, full_body_photos, mbti, traits,
	 backstory, personality_description, system_prompt, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name, avatar_url=excluded.avatar_url,
	 full_body_photos=excluded.full_body_photos, mbti=excluded.mbti,
	 traits=excluded.traits, backstory=excluded.backstory,
	 personality_description=excluded.personality_description,
	 system_prompt=excluded.system_prompt, updated_at=excluded.updated_at;
	`,
		p.ID, p.OwnerID, p.Name, p.AvatarURL, string(photos), p.MBTI, string(traits),
		p.Backstory, p.Description, p.SystemPrompt, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PalCacheRepo) List(ctx context.Context, ownerID string) ([]pal.Pal, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, owner_id, name, avatar_url, full_body_photos, mbti, traits,
	       backstory, personality_description, system_prompt, created_at, updated_at
	FROM pals WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pal.Pal
	for rows.Next() {
		p, err := scanPal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PalCacheRepo) Get(ctx context.Context, id string) (*pal.Pal, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, owner_id, name, avatar_url, full_body_photos, mbti, traits,
	       backstory, personality_description, system_prompt, created_at, updated_at
	FROM pals WHERE id = ?`, id)
	p, err := scanPal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Replace swaps the cached set for an owner with the given pals, in one
// transaction, so deletions on the platform are reflected locally.
func (r *PalCacheRepo) Replace(ctx context.Context, ownerID string, pals []pal.Pal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pals WHERE owner_id = ?`, ownerID); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, p := range pals {
		photos, err := json.Marshal(p.FullBodyPhotos)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		traits, err := json.Marshal(p.Traits)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO pals(
		 id, owner_id, name, avatar_url, full_body_photos, mbti, traits,
		 backstory, personality_description, system_prompt, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, p.Name, p.AvatarURL, string(photos), p.MBTI, string(traits),
			p.Backstory, p.Description, p.SystemPrompt, p.CreatedAt, p.UpdatedAt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPal(s scanner) (pal.Pal, error) {
	var p pal.Pal
	var photos, traits string
	err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &p.AvatarURL, &photos, &p.MBTI, &traits,
		&p.Backstory, &p.Description, &p.SystemPrompt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return pal.Pal{}, err
	}
	if err := json.Unmarshal([]byte(photos), &p.FullBodyPhotos); err != nil {
		return pal.Pal{}, fmt.Errorf("unmarshal photos: %w", err)
	}
	if err := json.Unmarshal([]byte(traits), &p.Traits); err != nil {
		return pal.Pal{}, fmt.Errorf("unmarshal traits: %w", err)
	}
	return p, nil
}
