package main

import (
	"context"

	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/storage/database"
)

// syncDB creates missing tables and seeds the default admin account.
func (cli *commandLine) syncDB() error {
	if err := database.EnsureSchema(cli.db); err != nil {
		return err
	}

	// default admin; keeps a fresh install loggable-into
	_, err := cli.identityRepo.GetByExternalID(context.Background(), identity.RoleAdmin, "admin")
	if err == identity.ErrNotFound {
		return cli.addAdmin("admin", cli.conf.DefaultPassword)
	}
	return err
}
