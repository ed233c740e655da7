package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/modcatalog/internal/filex"
	"github.com/dmitrijs2005/modcatalog/internal/spreadsheet"
	"github.com/schollz/progressbar/v3"
)

// Import loads a spreadsheet and inserts every valid row. Bad rows are
// reported and skipped.
func (a *App) Import(ctx context.Context, path string) error {
	if path == "" {
		p, err := GetSimpleText(a.reader, "Spreadsheet to import (.xlsx)", a.out)
		if err != nil {
			return err
		}
		path = p
	}

	f, err := os.Open(filex.ExpandHome(path))
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := spreadsheet.Import(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, re := range res.Errors {
		fmt.Fprintln(a.out, warnStyle.Render("Skipped "+re.Error()))
	}

	drafts := res.Drafts()
	if len(drafts) == 0 {
		fmt.Fprintln(a.out, "No valid rows to import.")
		return nil
	}

	var progress func(int)
	if stdoutIsTerminal() {
		bar := progressbar.NewOptions(len(drafts),
			progressbar.OptionSetWriter(a.out),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("modules"),
			progressbar.OptionClearOnFinish(),
		)
		progress = func(done int) { _ = bar.Set(done) }
		defer func() { _ = bar.Finish() }()
	}

	rep := a.catalog.Import(ctx, drafts, progress)

	for _, fail := range rep.Failures {
		fmt.Fprintf(a.out, "Row %d (%s): %v\n", res.Rows[fail.Index].Number, fail.Model, fail.Err)
	}
	fmt.Fprintf(a.out, "Imported %d module(s); %d row(s) skipped.\n",
		rep.Loaded, len(res.Errors)+len(rep.Failures))
	if rep.Pending > 0 {
		fmt.Fprintf(a.out, "%d module(s) are saved locally only.\n", rep.Pending)
	}
	return nil
}

// Export writes the price list to path, or to the dated default name in the
// working directory.
func (a *App) Export(ctx context.Context, path string) (err error) {
	modules, err := a.catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(modules) == 0 {
		fmt.Fprintln(a.out, "Nothing to export.")
		return nil
	}

	if path == "" {
		path = spreadsheet.FileName(a.now())
	}
	path = filex.ExpandHome(path)
	if err := filex.EnsureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := spreadsheet.Export(f, modules); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %d module(s) to %s\n", len(modules), path)
	return nil
}
