package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/modcatalog/internal/remotestore"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, path string) error
	Export(ctx context.Context, path string) error
	Identify(ctx context.Context, path string) error
	FixBrands(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

const helpText = "Available commands: (l)ist, (s)earch <text>, show <id>, add, edit <id>, delete <id>, " +
	"import <file.xlsx>, export [file.xlsx], identify <photo>, fixbrands, sync, status, exit"

// runREPL reads one line at a time from reader, treats the first token as
// the command and the rest of the line as its argument, and dispatches to a.
// The loop exits on EOF, ctx cancellation, or "exit"/"quit".
//
// Handlers prompt through the same reader, so no input is buffered ahead of
// them. Errors returned by handlers are printed and the loop carries on; a
// remote configuration problem also prints its hint.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mc (%s)> ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		cmd, arg := splitCommand(line)
		if cmd == "" {
			continue
		}

		var err error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "l", "list":
			err = a.List(ctx)

		case "s", "search":
			err = a.Search(ctx, arg)

		case "show":
			err = a.Show(ctx, arg)

		case "add":
			err = a.Add(ctx)

		case "edit":
			err = a.Edit(ctx, arg)

		case "delete", "rm":
			err = a.Delete(ctx, arg)

		case "import":
			err = a.Import(ctx, arg)

		case "export":
			err = a.Export(ctx, arg)

		case "identify":
			err = a.Identify(ctx, arg)

		case "fixbrands":
			err = a.FixBrands(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "status":
			err = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
			if hint := remotestore.Hint(err); hint != "" {
				printlnFn("Hint:", hint)
			}
		}
	}
}

// splitCommand returns the first word of line and the trimmed remainder, so
// that arguments such as file paths may contain spaces.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd, rest, _ := strings.Cut(line, " ")
	return cmd, strings.TrimSpace(rest)
}
