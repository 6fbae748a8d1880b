// Package hydrate decodes merged option fragments into typed structs.
package hydrate

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/goliatone/go-buildopts/layering"
)

// Context identifies the resolution a payload belongs to.
type Context struct {
	ID     string
	Target string
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated struct after decoding.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default mapstructure decoding when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts option payloads into strongly typed structs.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	configure []func(*mapstructure.DecoderConfig)
	custom    CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithWeaklyTypedInput lets "true" decode into a bool, "8" into an int and so
// on.
func WithWeaklyTypedInput[T any]() DecoderOption[T] {
	return WithDecoderConfig[T](func(cfg *mapstructure.DecoderConfig) {
		cfg.WeaklyTypedInput = true
	})
}

// WithErrorUnused fails decoding when the payload has keys T does not map.
func WithErrorUnused[T any]() DecoderOption[T] {
	return WithDecoderConfig[T](func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	})
}

// WithDecoderConfig allows callers to adjust the mapstructure configuration.
func WithDecoderConfig[T any](configure func(*mapstructure.DecoderConfig)) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if configure != nil {
			d.configure = append(d.configure, configure)
		}
	}
}

// WithCustomDecoder replaces the default decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T applying the configured hooks. The payload
// is copied first; hooks never see the caller's map.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for resolution %q", ctx.ID)
	}

	current := layering.Clone(payload)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for resolution %q failed: %w", ctx.ID, err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.custom != nil {
		decoded, err := d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for resolution %q failed: %w", ctx.ID, err)
		}
		result = decoded
	} else {
		cfg := &mapstructure.DecoderConfig{
			Result:  &result,
			TagName: "mapstructure",
		}
		for _, configure := range d.configure {
			configure(cfg)
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return zero, fmt.Errorf("hydrate: decoder for resolution %q: %w", ctx.ID, err)
		}
		if err := decoder.Decode(current); err != nil {
			return zero, fmt.Errorf("hydrate: decode resolution %q: %w", ctx.ID, err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for resolution %q failed: %w", ctx.ID, err)
		}
	}

	return result, nil
}
