package buildopts

import (
	"context"

	"github.com/goliatone/go-buildopts/pkg/activity"
)

// WithActivityHooks attaches hooks notified of every resolution. Hooks are
// cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *resolverConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel sets the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *resolverConfig) {
		cfg.activityChannel = channel
	}
}

// ActivityHooks returns a copy of the configured hooks.
func (r *Resolver) ActivityHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return activity.CloneHooks(r.cfg.activityHooks)
}

// emitResolution notifies hooks of every applied layer, weakest first, then
// of the resolution itself. Hook failures never fail the resolution.
func (r *Resolver) emitResolution(ctx context.Context, res *Resolution) {
	if !r.emitter.Enabled() {
		return
	}
	layers := res.stack.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		r.emit(ctx, activity.BuildLayerAppliedEvent(activity.ResolutionEventInput{
			ResolutionID: res.ID,
			Target:       res.targetRef,
			Layer: activity.LayerContext{
				Name:     layer.Scope.Name,
				Label:    layer.Scope.Label,
				Priority: layer.Scope.Priority,
				Source:   layer.Source,
				Keys:     layer.Fragment.Keys(),
			},
		}))
	}
	r.emit(ctx, activity.BuildResolvedEvent(activity.ResolutionEventInput{
		ResolutionID: res.ID,
		Target:       res.targetRef,
		Keys:         res.Options.Keys(),
	}))
}

func (r *Resolver) emitFailure(ctx context.Context, id, target string, err error) {
	if !r.emitter.Enabled() {
		return
	}
	r.emit(ctx, activity.BuildResolveFailedEvent(activity.ResolutionEventInput{
		ResolutionID: id,
		Target:       target,
		Err:          err,
	}))
}

func (r *Resolver) emit(ctx context.Context, event activity.Event) {
	_ = r.emitter.Emit(ctx, event)
}
