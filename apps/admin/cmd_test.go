package main

import (
	"strings"
	"testing"

	"github.com/trezcool/registro/core/user"
	testutil "github.com/trezcool/registro/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Services) {
	svcs := testutil.NewServices(t)
	return &commandLine{
		usrSvc:   svcs.User,
		validate: testutil.NewValidator(),
	}, svcs
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, svcs := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "estudiante@ejemplo.com"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "nadie@ejemplo.com"}, extra: extra{pwd: "claveLarga42"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "estudiante@ejemplo.com"}, extra: extra{pwd: "claveLarga42"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// the new password is now the only one that authenticates
	if _, err := svcs.User.Authenticate("estudiante@ejemplo.com", "password123"); err != user.ErrAuthenticationFailed {
		t.Errorf("Authenticate() error = %v, wantErr %v", err, user.ErrAuthenticationFailed)
	}
	if _, err := svcs.User.Authenticate("estudiante@ejemplo.com", "claveLarga42"); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, svcs := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"adduser", "-name", "Ana"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Ana", "-email", "ana@ejemplo.com"}, wantErr: errHelp},
		{name: "student by default", args: []string{"adduser", "-name", "Ana", "-email", "ana@ejemplo.com"}, extra: extra{pwd: "claveLarga42"}},
		{name: "professor", args: []string{"adduser", "-name", "Luis", "-email", "luis@ejemplo.com", "-role", "professor"}, extra: extra{pwd: "claveLarga42"}},
		{name: "invalid role", args: []string{"adduser", "-name", "Eva", "-email", "eva@ejemplo.com", "-role", "hacker"}, extra: extra{pwd: "claveLarga42"}, wantErrStr: "'role' tag"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErrStr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("cli.run() error = %v, wantErrStr %q", err, tt.wantErrStr)
				}
				return
			}
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := svcs.User.GetByEmail("ana@ejemplo.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if usr.Role != user.RoleStudent {
		t.Errorf("Role = %q, want %q", usr.Role, user.RoleStudent)
	}
	prof, err := svcs.User.GetByEmail("luis@ejemplo.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if prof.Role != user.RoleProfessor {
		t.Errorf("Role = %q, want %q", prof.Role, user.RoleProfessor)
	}
}
