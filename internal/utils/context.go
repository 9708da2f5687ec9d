package utils

import (
	"context"
)

type CustomContext struct {
	AppSource string
	RunId     string
	Trigger   string
}

type customContextKey struct{}

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey{}, customContext)
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey{}).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetContext(ctx).AppSource
}

func GetRunIdFromContext(ctx context.Context) string {
	return GetContext(ctx).RunId
}

func GetTriggerFromContext(ctx context.Context) string {
	return GetContext(ctx).Trigger
}

// WithRunId and WithTrigger copy the parent custom context; the parent is never mutated.
func WithRunId(ctx context.Context, runId string) context.Context {
	customContext := *GetContext(ctx)
	customContext.RunId = runId
	return WithCustomContext(ctx, &customContext)
}

func WithTrigger(ctx context.Context, trigger string) context.Context {
	customContext := *GetContext(ctx)
	customContext.Trigger = trigger
	return WithCustomContext(ctx, &customContext)
}

func SetAppSourceInContext(ctx context.Context, appSource string) context.Context {
	customContext := *GetContext(ctx)
	customContext.AppSource = appSource
	return WithCustomContext(ctx, &customContext)
}
