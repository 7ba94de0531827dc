// Package storage persists association data in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"blocapp/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert collides with a uniqueness
// constraint, such as two apartments sharing a number on the same stair.
var ErrDuplicate = errors.New("record already exists")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The pragma rides in the DSN so every pooled connection enforces
	// foreign keys.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- Associations ---

func (r *SQLiteRepository) CreateAssociation(ctx context.Context, a core.Association) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO associations (id, name, cui, address, administrator) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.CUI, a.Address, a.Administrator)
	if err != nil {
		return fmt.Errorf("create association: %w", err)
	}

	slog.InfoContext(ctx, "Association created", "id", a.ID, "name", a.Name)
	return nil
}

func (r *SQLiteRepository) GetAssociation(ctx context.Context, id string) (core.Association, error) {
	var a core.Association
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, cui, address, administrator FROM associations WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.CUI, &a.Address, &a.Administrator)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Association{}, ErrNotFound
	}
	if err != nil {
		return core.Association{}, fmt.Errorf("get association: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAssociations(ctx context.Context) ([]core.Association, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, cui, address, administrator FROM associations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}
	defer rows.Close()

	var out []core.Association
	for rows.Next() {
		var a core.Association
		if err := rows.Scan(&a.ID, &a.Name, &a.CUI, &a.Address, &a.Administrator); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateAssociation(ctx context.Context, a core.Association) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE associations SET name = ?, cui = ?, address = ?, administrator = ? WHERE id = ?`,
		a.Name, a.CUI, a.Address, a.Administrator, a.ID)
	if err != nil {
		return fmt.Errorf("update association: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteAssociation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM associations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete association: %w", err)
	}
	return requireAffected(res)
}

// --- Blocks ---

func (r *SQLiteRepository) CreateBlock(ctx context.Context, b core.Block) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocks (id, association_id, name) VALUES (?, ?, ?)`,
		b.ID, b.AssociationID, b.Name)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("association %s: %w", b.AssociationID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBlocks(ctx context.Context, associationID string) ([]core.Block, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, association_id, name FROM blocks WHERE association_id = ? ORDER BY name`, associationID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var out []core.Block
	for rows.Next() {
		var b core.Block
		if err := rows.Scan(&b.ID, &b.AssociationID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBlock(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return requireAffected(res)
}

// --- Stairs ---

func (r *SQLiteRepository) CreateStair(ctx context.Context, s core.Stair) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stairs (id, block_id, name) VALUES (?, ?, ?)`,
		s.ID, s.BlockID, s.Name)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("block %s: %w", s.BlockID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("create stair: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListStairs(ctx context.Context, associationID string) ([]core.Stair, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.block_id, s.name
		 FROM stairs s JOIN blocks b ON b.id = s.block_id
		 WHERE b.association_id = ?
		 ORDER BY b.name, s.name`, associationID)
	if err != nil {
		return nil, fmt.Errorf("list stairs: %w", err)
	}
	defer rows.Close()

	var out []core.Stair
	for rows.Next() {
		var s core.Stair
		if err := rows.Scan(&s.ID, &s.BlockID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan stair: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteStair(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stairs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete stair: %w", err)
	}
	return requireAffected(res)
}

// --- Apartments ---

const apartmentColumns = `a.id, a.stair_id, a.number, a.owner, a.persons, a.surface_mp, a.apartment_type, a.heating_source`

func (r *SQLiteRepository) CreateApartment(ctx context.Context, a core.Apartment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO apartments (id, stair_id, number, owner, persons, surface_mp, apartment_type, heating_source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.StairID, a.Number, a.Owner, a.Persons, a.Surface, a.ApartmentType, a.HeatingSource)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("stair %s: %w", a.StairID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("create apartment: %w", err)
	}

	slog.InfoContext(ctx, "Apartment created",
		"id", a.ID, "stair_id", a.StairID, "number", a.Number, "persons", a.Persons)
	return nil
}

// CreateApartments inserts a batch in one transaction, used by the Excel
// bulk import. The whole batch fails together.
func (r *SQLiteRepository) CreateApartments(ctx context.Context, apartments []core.Apartment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range apartments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO apartments (id, stair_id, number, owner, persons, surface_mp, apartment_type, heating_source)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.StairID, a.Number, a.Owner, a.Persons, a.Surface, a.ApartmentType, a.HeatingSource); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("apartment %d: %w", a.Number, ErrDuplicate)
			}
			return fmt.Errorf("insert apartment %d: %w", a.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}

	slog.InfoContext(ctx, "Apartments imported", "count", len(apartments))
	return nil
}

func (r *SQLiteRepository) GetApartment(ctx context.Context, id string) (core.Apartment, error) {
	var a core.Apartment
	err := r.db.QueryRowContext(ctx,
		`SELECT `+apartmentColumns+` FROM apartments a WHERE a.id = ?`, id).
		Scan(&a.ID, &a.StairID, &a.Number, &a.Owner, &a.Persons, &a.Surface, &a.ApartmentType, &a.HeatingSource)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Apartment{}, ErrNotFound
	}
	if err != nil {
		return core.Apartment{}, fmt.Errorf("get apartment: %w", err)
	}
	return a, nil
}

// ListApartments returns the association's apartments ordered by block name,
// stair name, then apartment number, the order the billing table expects.
func (r *SQLiteRepository) ListApartments(ctx context.Context, associationID string) ([]core.Apartment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+apartmentColumns+`
		 FROM apartments a
		 JOIN stairs s ON s.id = a.stair_id
		 JOIN blocks b ON b.id = s.block_id
		 WHERE b.association_id = ?
		 ORDER BY b.name, s.name, a.number`, associationID)
	if err != nil {
		return nil, fmt.Errorf("list apartments: %w", err)
	}
	defer rows.Close()

	var out []core.Apartment
	for rows.Next() {
		var a core.Apartment
		if err := rows.Scan(&a.ID, &a.StairID, &a.Number, &a.Owner, &a.Persons, &a.Surface, &a.ApartmentType, &a.HeatingSource); err != nil {
			return nil, fmt.Errorf("scan apartment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateApartment(ctx context.Context, a core.Apartment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE apartments SET stair_id = ?, number = ?, owner = ?, persons = ?, surface_mp = ?, apartment_type = ?, heating_source = ?
		 WHERE id = ?`,
		a.StairID, a.Number, a.Owner, a.Persons, a.Surface, a.ApartmentType, a.HeatingSource, a.ID)
	if err != nil {
		return fmt.Errorf("update apartment: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteApartment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM apartments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete apartment: %w", err)
	}
	return requireAffected(res)
}

// DeleteCounts reports how many child records a structural delete would
// orphan, for confirmation prompts. Exactly one of the ids should be set.
type DeleteCounts struct {
	Blocks     int `json:"blocks"`
	Stairs     int `json:"stairs"`
	Apartments int `json:"apartments"`
}

func (r *SQLiteRepository) AssociationDeleteCounts(ctx context.Context, associationID string) (DeleteCounts, error) {
	var c DeleteCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM blocks WHERE association_id = ?),
		   (SELECT COUNT(*) FROM stairs s JOIN blocks b ON b.id = s.block_id WHERE b.association_id = ?),
		   (SELECT COUNT(*) FROM apartments a JOIN stairs s ON s.id = a.stair_id JOIN blocks b ON b.id = s.block_id WHERE b.association_id = ?)`,
		associationID, associationID, associationID).Scan(&c.Blocks, &c.Stairs, &c.Apartments)
	if err != nil {
		return DeleteCounts{}, fmt.Errorf("count association children: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) BlockDeleteCounts(ctx context.Context, blockID string) (DeleteCounts, error) {
	var c DeleteCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM stairs WHERE block_id = ?),
		   (SELECT COUNT(*) FROM apartments a JOIN stairs s ON s.id = a.stair_id WHERE s.block_id = ?)`,
		blockID, blockID).Scan(&c.Stairs, &c.Apartments)
	if err != nil {
		return DeleteCounts{}, fmt.Errorf("count block children: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) StairDeleteCounts(ctx context.Context, stairID string) (DeleteCounts, error) {
	var c DeleteCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM apartments WHERE stair_id = ?`, stairID).Scan(&c.Apartments)
	if err != nil {
		return DeleteCounts{}, fmt.Errorf("count stair children: %w", err)
	}
	return c, nil
}

// AssociationIDForApartment walks the stair -> block chain to the tenant
// root.
func (r *SQLiteRepository) AssociationIDForApartment(ctx context.Context, apartmentID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT b.association_id
		 FROM apartments a
		 JOIN stairs s ON s.id = a.stair_id
		 JOIN blocks b ON b.id = s.block_id
		 WHERE a.id = ?`, apartmentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve apartment association: %w", err)
	}
	return id, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
