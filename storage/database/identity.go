package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core/identity"
)

type identityRow struct {
	ID                string    `db:"id"`
	Role              string    `db:"role"`
	ExternalID        string    `db:"external_id"`
	Name              string    `db:"name"`
	Email             string    `db:"email"`
	Campus            string    `db:"campus"`
	Grade             string    `db:"grade"`
	Section           string    `db:"section"`
	CanManageStudents bool      `db:"can_manage_students"`
	CanManageTasks    bool      `db:"can_manage_tasks"`
	PasswordHash      []byte    `db:"password_hash"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r identityRow) toIdentity() identity.Identity {
	return identity.Identity{
		ID:                r.ID,
		Role:              identity.Role(r.Role),
		ExternalID:        r.ExternalID,
		Name:              r.Name,
		Email:             r.Email,
		Campus:            r.Campus,
		Grade:             r.Grade,
		Section:           r.Section,
		CanManageStudents: r.CanManageStudents,
		CanManageTasks:    r.CanManageTasks,
		PasswordHash:      r.PasswordHash,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func newIdentityRow(idt identity.Identity) identityRow {
	return identityRow{
		ID:                idt.ID,
		Role:              string(idt.Role),
		ExternalID:        idt.ExternalID,
		Name:              idt.Name,
		Email:             idt.Email,
		Campus:            idt.Campus,
		Grade:             idt.Grade,
		Section:           idt.Section,
		CanManageStudents: idt.CanManageStudents,
		CanManageTasks:    idt.CanManageTasks,
		PasswordHash:      idt.PasswordHash,
		CreatedAt:         idt.CreatedAt.UTC(),
		UpdatedAt:         idt.UpdatedAt.UTC(),
	}
}

type identityRepository struct {
	db *sqlx.DB
}

var _ identity.Repository = (*identityRepository)(nil) // interface compliance check

func NewIdentityRepository(db *sqlx.DB) identity.Repository {
	return &identityRepository{db: db}
}

// trapNoRowsErr maps sql "no rows" to identity.ErrNotFound.
func trapIdentityErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return identity.ErrNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return identity.ErrExternalIDExists
	}
	return errors.Wrap(err, msg)
}

func (repo *identityRepository) CreateIdentity(ctx context.Context, idt identity.Identity) (identity.Identity, error) {
	const q = `
		INSERT INTO identities (
			id, role, external_id, name, email, campus, grade, section,
			can_manage_students, can_manage_tasks, password_hash, created_at, updated_at
		) VALUES (
			:id, :role, :external_id, :name, :email, :campus, :grade, :section,
			:can_manage_students, :can_manage_tasks, :password_hash, :created_at, :updated_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, q, newIdentityRow(idt)); err != nil {
		return identity.Identity{}, trapIdentityErr(err, "creating identity")
	}
	return idt, nil
}

func (repo *identityRepository) GetByExternalID(ctx context.Context, role identity.Role, externalID string) (identity.Identity, error) {
	const q = `SELECT * FROM identities WHERE role = $1 AND external_id = $2`
	var row identityRow
	if err := repo.db.GetContext(ctx, &row, q, string(role), externalID); err != nil {
		return identity.Identity{}, trapIdentityErr(err, "getting identity")
	}
	return row.toIdentity(), nil
}

func (repo *identityRepository) queryRows(ctx context.Context, q string, args ...interface{}) ([]identity.Identity, error) {
	var rows []identityRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying identities")
	}
	idts := make([]identity.Identity, 0, len(rows))
	for _, row := range rows {
		idts = append(idts, row.toIdentity())
	}
	return idts, nil
}

func (repo *identityRepository) QueryByRole(ctx context.Context, role identity.Role) ([]identity.Identity, error) {
	const q = `SELECT * FROM identities WHERE role = $1 ORDER BY created_at DESC`
	return repo.queryRows(ctx, q, string(role))
}

func (repo *identityRepository) QueryByRoleCampus(ctx context.Context, role identity.Role, campus string) ([]identity.Identity, error) {
	const q = `SELECT * FROM identities WHERE role = $1 AND campus = $2 ORDER BY created_at DESC`
	return repo.queryRows(ctx, q, string(role), campus)
}

func (repo *identityRepository) QueryStudentsByCampusGrade(ctx context.Context, campus, grade string) ([]identity.Identity, error) {
	const q = `SELECT * FROM identities WHERE role = $1 AND campus = $2 AND grade = $3 ORDER BY created_at DESC`
	return repo.queryRows(ctx, q, string(identity.RoleStudent), campus, grade)
}

func (repo *identityRepository) CountByRole(ctx context.Context, role identity.Role) (int, error) {
	const q = `SELECT COUNT(*) FROM identities WHERE role = $1`
	var count int
	if err := repo.db.GetContext(ctx, &count, q, string(role)); err != nil {
		return 0, errors.Wrap(err, "counting identities")
	}
	return count, nil
}

func (repo *identityRepository) CountByRoleCampus(ctx context.Context, role identity.Role, campus string) (int, error) {
	const q = `SELECT COUNT(*) FROM identities WHERE role = $1 AND campus = $2`
	var count int
	if err := repo.db.GetContext(ctx, &count, q, string(role), campus); err != nil {
		return 0, errors.Wrap(err, "counting identities")
	}
	return count, nil
}

func (repo *identityRepository) UpdateIdentity(ctx context.Context, idt identity.Identity) (identity.Identity, error) {
	const q = `
		UPDATE identities SET
			name = :name, email = :email, campus = :campus, grade = :grade,
			section = :section, can_manage_students = :can_manage_students,
			can_manage_tasks = :can_manage_tasks, password_hash = :password_hash,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newIdentityRow(idt))
	if err != nil {
		return identity.Identity{}, trapIdentityErr(err, "updating identity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.Identity{}, identity.ErrNotFound
	}
	return idt, nil
}

func (repo *identityRepository) DeleteIdentity(ctx context.Context, role identity.Role, externalID string) error {
	const q = `DELETE FROM identities WHERE role = $1 AND external_id = $2`
	res, err := repo.db.ExecContext(ctx, q, string(role), externalID)
	if err != nil {
		return errors.Wrap(err, "deleting identity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.ErrNotFound
	}
	return nil
}
