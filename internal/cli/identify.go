package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/modcatalog/internal/datauri"
	"github.com/dmitrijs2005/modcatalog/internal/filex"
	"github.com/dmitrijs2005/modcatalog/internal/vision"
)

// Identify asks the vision service which phone is in the photo at path,
// stores the photo on a matching module that has none, and searches the
// catalog for the cleaned-up answer.
func (a *App) Identify(ctx context.Context, path string) error {
	if !a.vision.Enabled() {
		return vision.ErrNoAPIKey
	}
	if path == "" {
		p, err := GetSimpleText(a.reader, "Photo of the phone", a.out)
		if err != nil {
			return err
		}
		path = p
	}

	photo, err := filex.ReadLimited(filex.ExpandHome(path), maxImageSize)
	if err != nil {
		return err
	}
	known, err := a.catalog.KnownModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Analyzing photo...")
	reply, err := a.vision.Identify(ctx, photo, known)
	switch {
	case errors.Is(err, vision.ErrUnidentified):
		fmt.Fprintln(a.out, "Could not identify the model. Try a clearer photo.")
		return nil
	case errors.Is(err, vision.ErrQuota):
		fmt.Fprintln(a.out, warnStyle.Render("The vision service quota is exhausted; try again later."))
		return err
	case err != nil:
		return err
	}
	fmt.Fprintln(a.out, "Identified:", labelStyle.Render(reply))

	attached, err := a.catalog.AttachImageIfMissing(ctx, reply, datauri.Encode(photo))
	if err != nil {
		a.log.Warn(ctx, "could not store the photo on the matching module", "model", reply, "err", err)
	} else if attached {
		fmt.Fprintf(a.out, "Saved the photo on %s.\n", reply)
	}

	query := vision.CleanQuery(reply)
	fmt.Fprintf(a.out, "Searching for %q\n", query)
	modules, err := a.catalog.Search(ctx, query)
	if err != nil {
		return err
	}
	printModules(a.out, modules)
	return nil
}
