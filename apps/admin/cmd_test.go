package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
	dummydb "github.com/kostask/taskboard/storage/database/dummy"
)

func setup(t *testing.T) (*commandLine, identity.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewIdentityRepository(db)

	return &commandLine{
		conf:         core.NewTestConfig(),
		identityRepo: repo,
	}, repo
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli, repo := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no username", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"addadmin", "-username", "root"}, wantErr: errHelp},
		{name: "create", args: []string{"addadmin", "-username", "root"}, pwd: "s3cret"},
		{name: "update resets the password", args: []string{"addadmin", "-username", "root"}, pwd: "n3w-s3cret"},
		{name: "username is normalized", args: []string{"addadmin", "-username", " Boss "}, pwd: "s3cret"},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	root, err := repo.GetByExternalID(context.Background(), identity.RoleAdmin, "root")
	if err != nil {
		t.Fatalf("GetByExternalID() failed: %v", err)
	}
	if err = root.CheckPassword("n3w-s3cret"); err != nil {
		t.Error("admin password was not updated")
	}
	if _, err = repo.GetByExternalID(context.Background(), identity.RoleAdmin, "boss"); err != nil {
		t.Errorf("normalized admin not found: %v", err)
	}
}

func Test_commandLine_addAdmin_keepsDistinctAccounts(t *testing.T) {
	cli, repo := setup(t)

	for _, uname := range []string{"root", "backup"} {
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte("s3cret"), nil
		}
		if err := cli.run([]string{"admin", "addadmin", "-username", uname}); err != nil {
			t.Fatalf("cli.run() failed for %q: %v", uname, err)
		}
	}

	admins, err := repo.QueryByRole(context.Background(), identity.RoleAdmin)
	if err != nil {
		t.Fatalf("QueryByRole() failed: %v", err)
	}
	if len(admins) != 2 {
		t.Errorf("got %d admins; want 2", len(admins))
	}
	var hashes [][]byte
	for _, a := range admins {
		hashes = append(hashes, a.PasswordHash)
	}
	if len(hashes) == 2 && bytes.Equal(hashes[0], hashes[1]) {
		// bcrypt salts make equal hashes a sign of shared state
		t.Error("admin accounts share a password hash")
	}
}
