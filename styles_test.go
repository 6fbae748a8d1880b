package buildopts

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeStyleEntry(t *testing.T) {
	cases := []struct {
		name       string
		entry      LazyStyleEntry
		wantBundle string
		wantInputs []string
	}{
		{
			name:       "single input uses default bundle",
			entry:      LazyStyleEntry{Input: "x.scss"},
			wantBundle: "main",
			wantInputs: []string{"x.scss"},
		},
		{
			name:       "list input with bundle name",
			entry:      LazyStyleEntry{BundleName: "b", Input: []string{"x.scss", "y.scss"}},
			wantBundle: "b",
			wantInputs: []string{"x.scss", "y.scss"},
		},
		{
			name:       "decoded list",
			entry:      LazyStyleEntry{Input: []any{"x.scss", "y.scss"}},
			wantBundle: "main",
			wantInputs: []string{"x.scss", "y.scss"},
		},
		{
			name:       "paths are not validated",
			entry:      LazyStyleEntry{Input: "does/not/exist.css"},
			wantBundle: "main",
			wantInputs: []string{"does/not/exist.css"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			bundle, inputs := NormalizeStyleEntry(tc.entry, "main")
			if bundle != tc.wantBundle {
				t.Fatalf("expected bundle %q, got %q", tc.wantBundle, bundle)
			}
			if diff := cmp.Diff(tc.wantInputs, inputs); diff != "" {
				t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveBundleName(t *testing.T) {
	if got := (LazyStyleEntry{}).ResolveBundleName("styles"); got != "styles" {
		t.Fatalf("expected default bundle, got %q", got)
	}
	if got := (LazyStyleEntry{BundleName: "theme"}).ResolveBundleName("styles"); got != "theme" {
		t.Fatalf("expected explicit bundle, got %q", got)
	}
}

func TestExtraEntryPointsGroupsByBundle(t *testing.T) {
	entries := []LazyStyleEntry{
		{BundleName: "dark", Input: "dark.scss"},
		{Input: []string{"a.scss", "b.scss"}},
		{BundleName: "dark", Input: []any{"dark-extra.scss"}},
	}

	got := ExtraEntryPoints(entries, "lazy")
	want := []EntryPoint{
		{Bundle: "dark", Inputs: []string{"dark.scss", "dark-extra.scss"}},
		{Bundle: "lazy", Inputs: []string{"a.scss", "b.scss"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry points mismatch (-want +got):\n%s", diff)
	}
	if ExtraEntryPoints(nil, "lazy") != nil {
		t.Fatalf("expected no entry points for no entries")
	}
}
