package slogutil

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

type data map[string]slog.Attr

type dataKey struct{}

func cloneData(ctx context.Context) data {
	d, ok := ctx.Value(dataKey{}).(data)
	if !ok {
		return data{}
	}

	return maps.Clone(d)
}

// WithAttrs returns a new context with the given attributes.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}

	d := cloneData(ctx)
	for _, attr := range attrs {
		d[attr.Key] = attr
	}

	return context.WithValue(ctx, dataKey{}, d)
}

// With returns a new context with the given key-value pairs.
func With(ctx context.Context, kvargs ...any) context.Context {
	if len(kvargs) == 0 {
		return ctx
	}

	var r slog.Record
	r.Add(kvargs...)

	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	return WithAttrs(ctx, attrs...)
}

// Attrs returns the attributes in the context, sorted by key.
func Attrs(ctx context.Context) []slog.Attr {
	d, ok := ctx.Value(dataKey{}).(data)
	if !ok {
		return nil
	}

	keys := slices.Sorted(maps.Keys(d))
	attrs := make([]slog.Attr, 0, len(d))
	for _, k := range keys {
		attrs = append(attrs, d[k])
	}

	return attrs
}

type dataHook struct{}

func (dataHook) Run(ctx context.Context, r *slog.Record) {
	r.AddAttrs(Attrs(ctx)...)
}
