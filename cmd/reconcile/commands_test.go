package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"admins", "backfill", "migrate-chat"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %q, got %v (%v)", name, cmd, err)
		}
	}
}

func TestBackfillCmd_RequiresOrg(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"backfill"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "org") {
		t.Fatalf("expected missing --org error, got %v", err)
	}
}

func TestMigrateChatCmd_RejectsSameIDs(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate-chat", "--from", "-1001", "--to", "-1001"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "distinct") {
		t.Fatalf("expected validation error, got %v", err)
	}
}
