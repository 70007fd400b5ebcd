package sync

import (
	"context"
	"fmt"
)

// upsertWithFallback resolves a row id through the store's upsert, falling
// back to the select-by-key lookup when the upsert's conflict path returned
// no representation. An upsert error is a per-record failure and is not
// retried through the lookup.
func upsertWithFallback(
	ctx context.Context,
	upsert func(context.Context) (string, error),
	lookup func(context.Context) (string, error),
) (string, error) {
	id, err := upsert(ctx)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id, err = lookup(ctx)
	if err != nil {
		return "", fmt.Errorf("fallback lookup: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("fallback lookup returned no id")
	}
	return id, nil
}
