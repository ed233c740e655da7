package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/modcatalog/internal/common"
	"github.com/dmitrijs2005/modcatalog/internal/datauri"
	"github.com/dmitrijs2005/modcatalog/internal/filex"
	"github.com/dmitrijs2005/modcatalog/internal/models"
)

// maxImageSize bounds photos read from disk.
const maxImageSize = 20 << 20

func (a *App) List(ctx context.Context) error {
	modules, err := a.catalog.List(ctx)
	if err != nil {
		return err
	}
	printModules(a.out, modules)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	if query == "" {
		q, err := GetSimpleText(a.reader, "Search for (empty lists everything)", a.out)
		if err != nil {
			return err
		}
		query = q
	}
	modules, err := a.catalog.Search(ctx, query)
	if err != nil {
		return err
	}
	printModules(a.out, modules)
	return nil
}

// askID returns id, prompting for it when empty.
func (a *App) askID(id, prompt string) (string, error) {
	if id != "" {
		return id, nil
	}
	id, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: id is required", common.ErrValidation)
	}
	return id, nil
}

func (a *App) Show(ctx context.Context, id string) error {
	id, err := a.askID(id, "Enter module id to show")
	if err != nil {
		return err
	}
	m, err := a.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}
	printModule(a.out, *m)
	return nil
}

func (a *App) Add(ctx context.Context) error {
	var (
		d   models.Draft
		err error
	)
	if d.Brand, err = GetSimpleText(a.reader, "Brand", a.out); err != nil {
		return err
	}
	if d.Model, err = GetSimpleText(a.reader, "Model", a.out); err != nil {
		return err
	}
	if d.Price, err = GetPrice(a.reader, "Price", 0, a.out); err != nil {
		return err
	}
	if d.Description, err = GetSimpleText(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}
	if d.ImageData, err = a.askImage(""); err != nil {
		return err
	}

	m, out, err := a.catalog.Insert(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s (%s).\n", m.Brand, m.Model, m.ID)
	printOutcome(a.out, out)
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	id, err := a.askID(id, "Enter module id to edit")
	if err != nil {
		return err
	}
	m, err := a.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Press Enter to keep a value, '-' to clear an optional one.")
	if m.Brand, err = GetTextWithDefault(a.reader, "Brand", m.Brand, a.out); err != nil {
		return err
	}
	if m.Model, err = GetTextWithDefault(a.reader, "Model", m.Model, a.out); err != nil {
		return err
	}
	if m.Price, err = GetPrice(a.reader, "Price", m.Price, a.out); err != nil {
		return err
	}
	if m.Description, err = GetTextWithDefault(a.reader, "Description", m.Description, a.out); err != nil {
		return err
	}
	if m.ImageData, err = a.askImage(m.ImageData); err != nil {
		return err
	}

	updated, out, err := a.catalog.Update(ctx, *m)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s %s.\n", updated.Brand, updated.Model)
	printOutcome(a.out, out)
	return nil
}

// askImage asks for a photo path and returns its data URI. An empty answer
// keeps current and "-" removes the image.
func (a *App) askImage(current string) (string, error) {
	prompt := "Photo file (optional)"
	if current != "" {
		prompt = "Photo file (Enter keeps the current image, '-' removes it)"
	}
	for {
		path, err := GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return "", err
		}
		switch path {
		case "":
			return current, nil
		case "-":
			return "", nil
		}

		uri, err := readImage(path)
		if err == nil {
			return uri, nil
		}
		fmt.Fprintln(a.out, "Cannot use that file:", err)
	}
}

// readImage loads the photo at path as a data URI.
func readImage(path string) (string, error) {
	data, err := filex.ReadLimited(filex.ExpandHome(path), maxImageSize)
	if err != nil {
		return "", err
	}
	uri := datauri.Encode(data)
	if !datauri.IsImage(uri) {
		return "", errors.New("not an image")
	}
	return uri, nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	id, err := a.askID(id, "Enter module id to delete")
	if err != nil {
		return err
	}
	m, err := a.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s %s?", m.Brand, m.Model), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	out, err := a.catalog.Delete(ctx, id)
	if err != nil {
		return err
	}
	printOutcome(a.out, out)
	return nil
}

func (a *App) FixBrands(ctx context.Context) error {
	n, err := a.catalog.FixAppleBrands(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Corrected the brand of %d module(s).\n", n)
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	rep, err := a.engine.Pull(ctx)
	if err != nil {
		return err
	}
	printPullReport(a.out, rep)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	if a.engine.RemoteEnabled() {
		a.checkOnline(ctx)
	}
	fmt.Fprintln(a.out, "Mode:", a.Mode())

	modules, err := a.catalog.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Modules stored locally: %d\n", len(modules))

	if a.vision.Enabled() {
		fmt.Fprintln(a.out, "Photo identification: enabled")
	} else {
		fmt.Fprintln(a.out, "Photo identification: disabled (no API key)")
	}
	return nil
}
