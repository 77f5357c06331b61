package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
)

// addAdmin updates or creates an admin account.
func (cli *commandLine) addAdmin(uname, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)

	admin, err := cli.identityRepo.GetByExternalID(ctx, identity.RoleAdmin, uname)
	if err != nil {
		if err != identity.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		admin = identity.Identity{
			ID:         uuid.New().String(),
			Role:       identity.RoleAdmin,
			ExternalID: uname,
			Name:       uname,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err = admin.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.identityRepo.CreateIdentity(ctx, admin)
		return err
	}

	if err = admin.SetPassword(pwd); err != nil {
		return err
	}
	admin.UpdatedAt = time.Now().UTC()
	_, err = cli.identityRepo.UpdateIdentity(ctx, admin)
	return err
}
