package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/graphrec/internal/cli"
)

func Test_Init_Creates_Store_When_Dir_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--capacity", "64", "init")

	cli.AssertContains(t, stdout, "initialized "+c.StoreDir()+" (capacity 64)")

	stdout = c.MustRun("--capacity", "64", "stat")
	cli.AssertContains(t, stdout, "store ")
	cli.AssertContains(t, stdout, "KIND")
	cli.AssertContains(t, stdout, "label_token")
}

func Test_Shell_Commits_Records_Visible_To_Show_When_Script_Commits(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRunScript(`
		# a labelled node
		create label
		token label 0 Person
		create node
		labels 0 +0 +4
		commit
	`)

	cli.AssertContains(t, stdout, "created label_token 0")
	cli.AssertContains(t, stdout, `label_token 0 in_use=true name="Person"`)
	cli.AssertContains(t, stdout, "created node 0")
	cli.AssertContains(t, stdout, "committed 2 changes")

	shown := c.MustRun("show", "node", "0")
	if got, want := shown, "node 0 in_use=true dense=false labels=[0,4] next_rel=-1 next_prop=-1"; got != want {
		t.Errorf("show=%q, want=%q", got, want)
	}

	shown = c.MustRun("show", "label", "0")
	cli.AssertContains(t, shown, `name="Person"`)
}

func Test_Shell_Continues_Ids_When_Reopened(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	c.MustRunScript("create node\ncreate node\ncommit\n")

	stdout := c.MustRunScript("next-id node\ncreate node\ncommit\n")
	cli.AssertContains(t, stdout, "2\ncreated node 2")

	stat := c.MustRun("stat")
	cli.AssertContains(t, stat, "node")
	cli.AssertContains(t, stat, "3")
}

func Test_Shell_Links_Relationship_And_Sets_Property_When_Commands_Valid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	c.MustRunScript(`
		create node
		create node
		create rel
		link 0 7 0 1
		create prop
		prop 0 3 hello world
		commit
	`)

	rel := c.MustRun("show", "rel", "0")
	cli.AssertContains(t, rel, "type=7 first=0 second=1")

	prop := c.MustRun("show", "property", "0")
	cli.AssertContains(t, prop, `key=3 value="hello world"`)
}

func Test_Shell_Lists_Pending_Changes_When_Changes_Requested(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRunScript("create node\ncreate type\nchanges\nabort\nchanges\n")

	cli.AssertContains(t, stdout, "created node 0 in_use=true")
	cli.AssertContains(t, stdout, "created relationship_type_token 0")
	cli.AssertContains(t, stdout, "2 changes")
	cli.AssertContains(t, stdout, "discarded 2 changes")
	cli.AssertContains(t, stdout, "no changes")
}

func Test_Shell_Deletes_Record_When_Delete_Committed(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	c.MustRunScript("create node\ncommit\n")
	c.MustRun("show", "node", "0")

	stdout := c.MustRunScript("delete node 0\ncommit\n")
	cli.AssertContains(t, stdout, "deleted node 0")

	stderr := c.MustFail("show", "node", "0")
	cli.AssertContains(t, stderr, "not found")
}

func Test_Shell_Fails_With_Line_Number_When_Record_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, exitCode := c.RunWithInput("next-id node\nget node 7\ncommit\n", "shell")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "0")
	cli.AssertContains(t, stderr, "line 2:")
	cli.AssertContains(t, stderr, "not found")
}

func Test_Shell_Warns_When_Exiting_With_Uncommitted_Changes(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, exitCode := c.RunWithInput("create node\nexit\ncommit\n", "shell")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr, "warning: 1 uncommitted changes discarded")

	stderr = c.MustFail("show", "node", "0")
	cli.AssertContains(t, stderr, "not found")
}

func Test_Shell_Rejects_Token_Name_When_Kind_Not_Token(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, exitCode := c.RunWithInput("create node\ntoken node 0 Person\n", "shell")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr, "node is not a token kind")
}

func Test_Show_Fails_When_Arguments_Wrong(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("show", "node")
	cli.AssertContains(t, stderr, "wrong arguments")
	cli.AssertContains(t, stderr, "usage: graphrec show <kind> <id>")

	stderr = c.MustFail("show", "widget", "1")
	cli.AssertContains(t, stderr, "record: unknown kind")

	stderr = c.MustFail("show", "node", "x")
	cli.AssertContains(t, stderr, `invalid id "x"`)
}

func Test_Stat_Warns_When_Ids_Near_Capacity(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, exitCode := c.RunWithInput("create node\ncreate node\ncommit\n", "--capacity", "2", "shell")
	if exitCode != 0 {
		t.Fatalf("shell failed: %s", stderr)
	}

	stdout, stderr, exitCode := c.Run("--capacity", "2", "stat")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "HIGH_ID")
	cli.AssertContains(t, stderr, "warning: node ids 2 of 2 used")
}

func Test_Stat_Prints_Metrics_When_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("stat", "--metrics")

	cli.AssertContains(t, stdout, "# TYPE graphrec_id_high_water gauge")
	cli.AssertContains(t, stdout, "graphrec_commits_total")
}

func Test_Stat_Fails_When_Capacity_Differs_From_Store(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("--capacity", "8", "init")

	stderr := c.MustFail("--capacity", "16", "stat")
	cli.AssertContains(t, stderr, "incompatible")
}

func Test_Replay_Writes_Journaled_Commit_When_Shell_Used_Journal(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, exitCode := c.RunWithInput("create node\nlabels 0 +2\ncommit\n", "shell", "--journal")
	if exitCode != 0 {
		t.Fatalf("shell failed: %s", stderr)
	}

	cli.AssertContains(t, stdout, "journaled 1 changes")

	stderr = c.MustFail("show", "node", "0")
	cli.AssertContains(t, stderr, "not found")

	pending := c.MustRun("journal")
	cli.AssertContains(t, pending, "SEQ")
	cli.AssertContains(t, pending, "CREATED")

	replayed := c.MustRun("replay")
	cli.AssertContains(t, replayed, "replayed 1 batches")

	shown := c.MustRun("show", "node", "0")
	cli.AssertContains(t, shown, "labels=[2]")

	cli.AssertContains(t, c.MustRun("journal"), "no pending batches")
	cli.AssertContains(t, c.MustRun("journal", "--prune"), "pruned 1 batches")
	cli.AssertContains(t, c.MustRun("replay"), "replayed 0 batches")
}

func Test_Shell_Writes_Nothing_When_Commit_Has_Record_Exceeding_Layout(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	script := "create node\nlabels 0 +3\ncreate property\nprop 0 1 " + strings.Repeat("a", 44) + "\ncommit\n"

	_, stderr, exitCode := c.RunWithInput(script, "shell")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr, "line 5:")
	cli.AssertContains(t, stderr, "nothing written")
	cli.AssertContains(t, stderr, "exceeds inline limit 32")

	stderr = c.MustFail("show", "node", "0")
	cli.AssertContains(t, stderr, "not found")

	stderr = c.MustFail("show", "property", "0")
	cli.AssertContains(t, stderr, "not found")
}
