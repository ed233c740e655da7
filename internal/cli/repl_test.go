package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/modcatalog/internal/remotestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) List(ctx context.Context) error { return f.record("list") }
func (f *fakeExec) Search(ctx context.Context, q string) error {
	return f.record("search:" + q)
}
func (f *fakeExec) Show(ctx context.Context, id string) error { return f.record("show:" + id) }
func (f *fakeExec) Add(ctx context.Context) error             { return f.record("add") }
func (f *fakeExec) Edit(ctx context.Context, id string) error { return f.record("edit:" + id) }
func (f *fakeExec) Delete(ctx context.Context, id string) error {
	return f.record("delete:" + id)
}
func (f *fakeExec) Import(ctx context.Context, path string) error {
	return f.record("import:" + path)
}
func (f *fakeExec) Export(ctx context.Context, path string) error {
	return f.record("export:" + path)
}
func (f *fakeExec) Identify(ctx context.Context, path string) error {
	return f.record("identify:" + path)
}
func (f *fakeExec) FixBrands(ctx context.Context) error { return f.record("fixbrands") }
func (f *fakeExec) Sync(ctx context.Context) error      { return f.record("sync") }
func (f *fakeExec) Status(ctx context.Context) error    { return f.record("status") }

// capturePrint replaces printlnFn for the test and returns the printed lines.
func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommandsWithArguments(t *testing.T) {
	capturePrint(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"l",
		"search  moto g8 power ",
		"s",
		"show 123",
		"add",
		"edit 42",
		"rm 7",
		"import ~/My Files/prices.xlsx",
		"export",
		"identify photo.jpg",
		"",
		"fixbrands",
		"sync",
		"status",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "online" }, bufio.NewReader(input))

	assert.Equal(t, []string{
		"list",
		"search:moto g8 power",
		"search:",
		"show:123",
		"add",
		"edit:42",
		"delete:7",
		"import:~/My Files/prices.xlsx",
		"export:",
		"identify:photo.jpg",
		"fixbrands",
		"sync",
		"status",
	}, exec.calls, "nothing runs after exit")
}

func TestRunREPL_UnknownCommandAndPrompt(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "offline" }, bufio.NewReader(strings.NewReader("get 42\nquit\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "mc (offline)> ")
	assert.Contains(t, *lines, "Unknown command: get")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_PrintsErrorsAndHints(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{err: &remotestore.Error{Op: "list", Problem: remotestore.ProblemMissingTable, Err: errors.New("relation does not exist")}}
	runREPL(context.Background(), exec, func() string { return "online" }, bufio.NewReader(strings.NewReader("sync\n")))

	require.Equal(t, []string{"sync"}, exec.calls)
	joined := strings.Join(*lines, "\n")
	assert.Contains(t, joined, "Error: remote list: ")
	assert.Contains(t, joined, `Hint: the "modules" table does not exist`)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrint(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("list\n")))
	assert.Empty(t, exec.calls)
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		line, cmd, arg string
	}{
		{"", "", ""},
		{"   ", "", ""},
		{"list", "list", ""},
		{"  search   a10 ", "search", "a10"},
		{"import /tmp/my prices.xlsx", "import", "/tmp/my prices.xlsx"},
	}
	for _, c := range cases {
		cmd, arg := splitCommand(c.line)
		assert.Equal(t, c.cmd, cmd, c.line)
		assert.Equal(t, c.arg, arg, c.line)
	}
}
