package catalog

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/modcatalog/internal/models"
	"github.com/dmitrijs2005/modcatalog/internal/syncer"
)

// ImportFailure describes one rejected draft. Index is 0-based in the input.
type ImportFailure struct {
	Index int
	Model string
	Err   error
}

// ImportReport summarises an Import.
type ImportReport struct {
	Loaded   int
	Pending  int
	Failures []ImportFailure
}

// Import inserts drafts one by one and never stops at a bad row. progress, if
// set, is called after each draft with the number processed so far.
func (s *Service) Import(ctx context.Context, drafts []models.Draft, progress func(done int)) ImportReport {
	var rep ImportReport
	for i, d := range drafts {
		if ctx.Err() != nil {
			rep.Failures = append(rep.Failures, ImportFailure{Index: i, Model: d.Model, Err: ctx.Err()})
			break
		}

		_, out, err := s.Insert(ctx, d)
		switch {
		case err != nil:
			rep.Failures = append(rep.Failures, ImportFailure{Index: i, Model: d.Model, Err: err})
		case out.State == syncer.StatePendingSync:
			rep.Loaded++
			rep.Pending++
		default:
			rep.Loaded++
		}

		if progress != nil {
			progress(i + 1)
		}
	}

	s.log.Info(ctx, "import finished", "loaded", rep.Loaded, "pending", rep.Pending, "failed", len(rep.Failures))
	return rep
}

// AttachImageIfMissing stores image on the first module whose model equals
// model exactly, provided it has no image yet. It reports whether a module
// was updated.
func (s *Service) AttachImageIfMissing(ctx context.Context, model, image string) (bool, error) {
	all, err := s.List(ctx)
	if err != nil {
		return false, err
	}

	for _, m := range all {
		if m.Model != model {
			continue
		}
		if m.ImageData != "" {
			return false, nil
		}
		m.ImageData = image
		if _, _, err := s.Update(ctx, m); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// FixAppleBrands re-brands as Apple every module whose model mentions an
// iPhone but whose brand says otherwise. It returns the number of fixes.
func (s *Service) FixAppleBrands(ctx context.Context) (int, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, m := range all {
		if !strings.Contains(strings.ToLower(m.Model), "iphone") || strings.EqualFold(m.Brand, "apple") {
			continue
		}
		s.log.Info(ctx, "fixing brand", "id", m.ID, "model", m.Model, "from", m.Brand)
		m.Brand = "Apple"
		if _, _, err := s.Update(ctx, m); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}

// KnownModels returns the distinct model names in List order.
func (s *Service) KnownModels(ctx context.Context) ([]string, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))
	names := make([]string, 0, len(all))
	for _, m := range all {
		if _, ok := seen[m.Model]; ok {
			continue
		}
		seen[m.Model] = struct{}{}
		names = append(names, m.Model)
	}
	return names, nil
}
