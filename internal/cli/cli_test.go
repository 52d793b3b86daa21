package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmdHasSubcommands(t *testing.T) {
	root := NewRootCmd("test")
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "deactivate", "user"} {
		if !names[want] {
			t.Errorf("expected subcommand %q", want)
		}
	}
}

func TestNewRootCmdVersion(t *testing.T) {
	if v := NewRootCmd("1.2.3").Version; v != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", v)
	}
	if v := NewRootCmd("").Version; v != "dev" {
		t.Fatalf("expected version dev, got %q", v)
	}
}

func TestUserSetRoleRequiresFlags(t *testing.T) {
	root := NewRootCmd("")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"user", "set-role", "--email", "a@example.com"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--role") {
		t.Fatalf("expected missing flag error, got %v", err)
	}
}

func TestDeactivateRejectsBadDate(t *testing.T) {
	root := NewRootCmd("")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"deactivate", "--at", "31/12/2022"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Fatalf("expected date format error, got %v", err)
	}
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	root := NewRootCmd("")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}
