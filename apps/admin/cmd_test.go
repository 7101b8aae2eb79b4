package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/studsight/studsight/core/board"
	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
	emailsvc "github.com/studsight/studsight/services/email"
	inmemdb "github.com/studsight/studsight/storage/database/inmem"
	testutil "github.com/studsight/studsight/tests"
)

var tchrRepo teacher.Repository

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed, %v", err)
	}
	tchrRepo = inmemdb.NewTeacherRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	boardSvc := board.NewService(inmemdb.NewBoardRepository(db), student.Subjects)

	// start CLI
	return &commandLine{
		tchrRepo: tchrRepo,
		stdSvc:   student.NewService(inmemdb.NewStudentRepository(db), boardSvc, mailSvc, nil),
		in:       strings.NewReader(""),
		out:      new(bytes.Buffer),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	tchr := testutil.CreateTeacher(t, tchrRepo, "Jane", "Doe", "jane@test.cd", "Secret#123", "Science", "", teacher.RoleTeacher, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "teacher not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: teacher.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", tchr.Email}, extra: extra{pwd: "lol"}},
		{name: "email is cleaned", args: []string{"resetpassword", "-email", " JANE@Test.cd "}, extra: extra{pwd: "lmao"}},
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
			if err == nil {
				refreshed, err := tchrRepo.GetTeacherByID(tchr.ID)
				if err != nil {
					t.Fatalf("GetTeacherByID() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, tchr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("Secret#123"), nil }

	t.Run("created", func(t *testing.T) {
		args := []string{"admin", "addteacher", "-email", "John@Test.cd", "-firstname", "john", "-surname", "smith", "-subject", "computing"}
		if err := cli.run(args); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}

		tchr, err := tchrRepo.GetTeacherByEmail("john@test.cd")
		if err != nil {
			t.Fatalf("GetTeacherByEmail() failed, %v", err)
		}
		if tchr.FirstName != "John" || tchr.Surname != "Smith" || tchr.Subject != "Computing" {
			t.Errorf("fields not normalized: %q %q %q", tchr.FirstName, tchr.Surname, tchr.Subject)
		}
		if tchr.Role != teacher.RoleTeacher {
			t.Errorf("Role = %q; want %q", tchr.Role, teacher.RoleTeacher)
		}
		if !tchr.IsActive {
			t.Error("account not active")
		}
	})

	t.Run("updated and promoted", func(t *testing.T) {
		args := []string{"admin", "addteacher", "-email", "john@test.cd", "-firstname", "john", "-surname", "smith", "-admin"}
		if err := cli.run(args); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}

		tchr, err := tchrRepo.GetTeacherByEmail("john@test.cd")
		if err != nil {
			t.Fatalf("GetTeacherByEmail() failed, %v", err)
		}
		if tchr.Role != teacher.RoleAdmin {
			t.Errorf("Role = %q; want %q", tchr.Role, teacher.RoleAdmin)
		}
	})
}

func Test_commandLine_enroll(t *testing.T) {
	cli := setup(t)

	dob := testutil.DOBForAge(17).Format("2006-01-02")
	answers := []string{
		// personal details; first pass misses the required email
		"alice", "mwangi", dob, "F", "12", "b", "",
		// personal details again; blanks keep previous answers
		"", "", "", "", "", "", "alice@test.cd",
		// subjects
		"Mathematics", "English", "Science", "Computing",
		// guardian & contact
		"grace mwangi", "+254700000000", "", "", "", "",
		// medical
		"", "", "", "",
	}
	var out bytes.Buffer
	cli.in = strings.NewReader(strings.Join(answers, "\n") + "\n")
	cli.out = &out

	if err := cli.run([]string{"admin", "enroll"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v; output:\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "missing required fields: email") {
		t.Errorf("first pass not rejected; output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "enrolled Alice Mwangi") {
		t.Errorf("no enrollment confirmation; output:\n%s", out.String())
	}

	st, err := cli.stdSvc.GetByEmail("alice@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if st.Mastery != "B" {
		t.Errorf("Mastery = %q; want B", st.Mastery)
	}
}
