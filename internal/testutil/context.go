package testutil

import (
	"context"

	"github.com/hidecraft/storefront-webhooks/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
