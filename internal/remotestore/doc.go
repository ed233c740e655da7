// Package remotestore is the shared cloud side of the catalog: a PostgreSQL
// table reached through pgx and an S3-compatible bucket for images.
//
// All operations return *Error. Callers decide what to do from the class:
//
//	if errors.Is(err, common.ErrRemoteMisconfigured) {
//	    log.Warn(ctx, "remote setup problem", "hint", remotestore.Hint(err))
//	}
//
// Nothing in this package retries.
package remotestore
