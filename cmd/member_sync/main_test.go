package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/hololive-member-sync/internal/app"
	"github.com/kapu/hololive-member-sync/internal/reconcile"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"sync", "labels", "fetch", "restore"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	syncCmd, _, err := root.Find([]string{"sync"})
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", syncCmd.Flags().Lookup("passes").DefValue)
	assert.Equal(t, "skip", syncCmd.Flags().Lookup("ambiguity").DefValue)
	assert.Equal(t, "file", syncCmd.Flags().Lookup("source").DefValue)
}

func TestRestoreRequiresRunID(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"restore"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	report := &reconcile.Report{
		RunID: "run-1",
		Passes: []*reconcile.PassReport{
			{Pass: reconcile.PassAliases, Added: 2, Ambiguous: 1, Notes: []reconcile.Note{
				{Kind: reconcile.NoteAmbiguousMatch, Subject: "すいせい", Detail: "Hoshimachi Suisei, Suisei Fan"},
			}},
		},
	}
	printResult(cmd, &app.SyncResult{Report: report, Persisted: true, BackedUp: []string{"members.json"}})

	text := out.String()
	assert.Contains(t, text, "run run-1")
	assert.Contains(t, text, "added=2")
	assert.Contains(t, text, "ambiguous_match")
	assert.Contains(t, text, "2 change(s) written, backups: [members.json]")

	out.Reset()
	printResult(cmd, &app.SyncResult{Report: &reconcile.Report{RunID: "run-2"}})
	assert.Contains(t, out.String(), "no changes")
}
