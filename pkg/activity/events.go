package activity

import (
	"strings"
	"time"
)

const (
	VerbResolved      = "buildopts.resolved"
	VerbResolveFailed = "buildopts.resolve.failed"
	VerbLayerApplied  = "buildopts.layer.applied"

	ObjectResolution = "buildopts.resolution"
	ObjectLayer      = "buildopts.layer"
)

// LayerContext describes the layer an event refers to.
type LayerContext struct {
	Name     string
	Label    string
	Priority int
	Source   string
	Keys     []string
}

// ResolutionEventInput holds the fields shared by resolution events.
type ResolutionEventInput struct {
	ResolutionID string
	Target       string
	Channel      string
	Keys         []string
	Layer        LayerContext
	Err          error
	Metadata     map[string]any
	OccurredAt   time.Time
}

// BuildResolvedEvent describes a completed resolution.
func BuildResolvedEvent(input ResolutionEventInput) Event {
	return buildResolutionEvent(VerbResolved, ObjectResolution, input)
}

// BuildResolveFailedEvent describes a resolution aborted by input.Err.
func BuildResolveFailedEvent(input ResolutionEventInput) Event {
	return buildResolutionEvent(VerbResolveFailed, ObjectResolution, input)
}

// BuildLayerAppliedEvent describes one layer merged into a resolution.
func BuildLayerAppliedEvent(input ResolutionEventInput) Event {
	return buildResolutionEvent(VerbLayerApplied, ObjectLayer, input)
}

func buildResolutionEvent(verb, objectType string, input ResolutionEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if target := strings.TrimSpace(input.Target); target != "" {
		set("target", target)
	}
	if len(input.Keys) > 0 {
		set("keys", append([]string{}, input.Keys...))
	}
	if input.Layer.Name != "" {
		set("layer_name", input.Layer.Name)
		set("layer_priority", input.Layer.Priority)
		if input.Layer.Label != "" {
			set("layer_label", input.Layer.Label)
		}
		if input.Layer.Source != "" {
			set("layer_source", input.Layer.Source)
		}
		if len(input.Layer.Keys) > 0 {
			set("layer_keys", append([]string{}, input.Layer.Keys...))
		}
	}
	if input.Err != nil {
		set("error", input.Err.Error())
	}

	objectID := strings.TrimSpace(input.ResolutionID)
	if objectType == ObjectLayer && input.Layer.Name != "" {
		objectID = strings.Trim(objectID+"/"+input.Layer.Name, "/")
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
