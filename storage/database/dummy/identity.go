package dummydb

import (
	"context"

	"github.com/kostask/taskboard/core/identity"
)

type identityRepository struct {
	db *identityTable
}

var _ identity.Repository = (*identityRepository)(nil) // interface compliance check

func NewIdentityRepository(db *DB) identity.Repository {
	return &identityRepository{db: db.identity}
}

func (repo *identityRepository) CreateIdentity(_ context.Context, idt identity.Identity) (identity.Identity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, row := range repo.db.rows {
		if row.Role == idt.Role && row.ExternalID == idt.ExternalID {
			return identity.Identity{}, identity.ErrExternalIDExists
		}
	}
	repo.db.rows = append(repo.db.rows, idt)
	return idt, nil
}

func (repo *identityRepository) GetByExternalID(_ context.Context, role identity.Role, externalID string) (identity.Identity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, row := range repo.db.rows {
		if row.Role == role && row.ExternalID == externalID {
			return row, nil
		}
	}
	return identity.Identity{}, identity.ErrNotFound
}

// newest first
func (repo *identityRepository) queryReversed(match func(identity.Identity) bool) []identity.Identity {
	rows := make([]identity.Identity, 0, len(repo.db.rows))
	for i := len(repo.db.rows) - 1; i >= 0; i-- {
		if match(repo.db.rows[i]) {
			rows = append(rows, repo.db.rows[i])
		}
	}
	return rows
}

func (repo *identityRepository) QueryByRole(_ context.Context, role identity.Role) ([]identity.Identity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryReversed(func(i identity.Identity) bool { return i.Role == role }), nil
}

func (repo *identityRepository) QueryByRoleCampus(_ context.Context, role identity.Role, campus string) ([]identity.Identity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryReversed(func(i identity.Identity) bool {
		return i.Role == role && i.Campus == campus
	}), nil
}

func (repo *identityRepository) QueryStudentsByCampusGrade(_ context.Context, campus, grade string) ([]identity.Identity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryReversed(func(i identity.Identity) bool {
		return i.Role == identity.RoleStudent && i.Campus == campus && i.Grade == grade
	}), nil
}

func (repo *identityRepository) CountByRole(_ context.Context, role identity.Role) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, row := range repo.db.rows {
		if row.Role == role {
			count++
		}
	}
	return count, nil
}

func (repo *identityRepository) CountByRoleCampus(_ context.Context, role identity.Role, campus string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, row := range repo.db.rows {
		if row.Role == role && row.Campus == campus {
			count++
		}
	}
	return count, nil
}

func (repo *identityRepository) UpdateIdentity(_ context.Context, idt identity.Identity) (identity.Identity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, row := range repo.db.rows {
		if row.ID == idt.ID {
			repo.db.rows[i] = idt
			return idt, nil
		}
	}
	return identity.Identity{}, identity.ErrNotFound
}

func (repo *identityRepository) DeleteIdentity(_ context.Context, role identity.Role, externalID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, row := range repo.db.rows {
		if row.Role == role && row.ExternalID == externalID {
			repo.db.rows = append(repo.db.rows[:i], repo.db.rows[i+1:]...)
			return nil
		}
	}
	return identity.ErrNotFound
}
