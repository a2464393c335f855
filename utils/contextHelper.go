package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/rentnotice_backend/appctx"
)

var (
	ContextKeyAccountId     = appctx.ContextKeyAccountId
	ContextKeyAccountName   = appctx.ContextKeyAccountName
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetAccountIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyAccountId)
}

func GetAccountNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyAccountName)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetAccountIdInContext(ctx context.Context, accountId string) context.Context {
	return appctx.Set(ctx, ContextKeyAccountId, accountId)
}

func SetAccountNameInContext(ctx context.Context, accountName string) context.Context {
	return appctx.Set(ctx, ContextKeyAccountName, accountName)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
