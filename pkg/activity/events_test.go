package activity

import (
	"context"
	"errors"
	"testing"
)

func TestBuildLayerAppliedEventIncludesLayerMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	keys := []string{"assets", "outputPath"}
	input := ResolutionEventInput{
		ResolutionID: " res-1 ",
		Target:       "app:build:production",
		Metadata:     meta,
		Layer: LayerContext{
			Name:     "target",
			Label:    "Target options",
			Priority: 100,
			Source:   "app:build:production",
			Keys:     keys,
		},
	}

	event := BuildLayerAppliedEvent(input)

	if event.Verb != VerbLayerApplied {
		t.Fatalf("expected verb %s got %s", VerbLayerApplied, event.Verb)
	}
	if event.ObjectType != ObjectLayer || event.ObjectID != "res-1/target" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.Metadata["layer_name"] != "target" || event.Metadata["layer_priority"] != 100 {
		t.Fatalf("expected layer metadata, got %+v", event.Metadata)
	}
	if event.Metadata["layer_label"] != "Target options" || event.Metadata["layer_source"] != "app:build:production" {
		t.Fatalf("expected label and source, got %+v", event.Metadata)
	}
	if event.Metadata["target"] != "app:build:production" || event.Metadata["custom"] != "value" {
		t.Fatalf("expected target and custom metadata, got %+v", event.Metadata)
	}
	layerKeys, ok := event.Metadata["layer_keys"].([]string)
	if !ok || len(layerKeys) != 2 {
		t.Fatalf("expected layer keys, got %v", event.Metadata["layer_keys"])
	}
	layerKeys[0] = "changed"
	if keys[0] != "assets" {
		t.Fatalf("expected input keys untouched")
	}
	if _, ok := meta["target"]; ok {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildResolvedEventUsesFallbackObjectID(t *testing.T) {
	event := BuildResolvedEvent(ResolutionEventInput{})
	if event.ObjectID != ObjectResolution {
		t.Fatalf("expected fallback object ID %q, got %q", ObjectResolution, event.ObjectID)
	}
	if event.Metadata != nil {
		t.Fatalf("expected no metadata, got %+v", event.Metadata)
	}
}

func TestBuildResolveFailedEventRecordsError(t *testing.T) {
	event := BuildResolveFailedEvent(ResolutionEventInput{ResolutionID: "r", Err: errors.New("target not found")})
	if event.Verb != VerbResolveFailed || event.ObjectID != "r" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Metadata["error"] != "target not found" {
		t.Fatalf("expected error metadata, got %+v", event.Metadata)
	}
}

func TestResolutionEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	event := BuildResolvedEvent(ResolutionEventInput{ResolutionID: "r", Keys: []string{"aot"}})
	if err := hooks.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected capture to record event, got %d", len(capture.Events))
	}
	if capture.Events[0].Verb != VerbResolved {
		t.Fatalf("expected verb %s, got %s", VerbResolved, capture.Events[0].Verb)
	}
}
