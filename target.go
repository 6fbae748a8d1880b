package buildopts

import (
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
)

// Target identifies a registered build target: project, target name and an
// optional (possibly comma separated) configuration.
type Target struct {
	Project       string `json:"project"`
	Target        string `json:"target"`
	Configuration string `json:"configuration,omitempty"`
}

// MalformedReferenceError reports a target reference missing a required
// segment.
type MalformedReferenceError struct {
	Reference string
	Segment   string
}

func (e *MalformedReferenceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("buildopts: malformed target reference %q: missing %s", e.Reference, e.Segment)
}

// Unwrap maps the error onto errdefs.ErrInvalidArgument.
func (e *MalformedReferenceError) Unwrap() error {
	return errdefs.ErrInvalidArgument
}

// ParseTarget parses "project:target[:configuration]". The configuration
// segment may be missing; anything after the second colon belongs to it.
func ParseTarget(reference string) (Target, error) {
	parts := strings.SplitN(strings.TrimSpace(reference), ":", 3)
	target := Target{Project: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		target.Target = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		target.Configuration = strings.TrimSpace(parts[2])
	}
	if target.Project == "" {
		return Target{}, &MalformedReferenceError{Reference: reference, Segment: "project"}
	}
	if target.Target == "" {
		return Target{}, &MalformedReferenceError{Reference: reference, Segment: "target"}
	}
	return target, nil
}

// Configurations splits the configuration segment on commas, dropping blanks.
func (t Target) Configurations() []string {
	if t.Configuration == "" {
		return nil
	}
	var out []string
	for _, name := range strings.Split(t.Configuration, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (t Target) String() string {
	if t.Configuration == "" {
		return t.Project + ":" + t.Target
	}
	return t.Project + ":" + t.Target + ":" + t.Configuration
}

// NotFoundError reports a target reference the execution context does not
// know about.
type NotFoundError struct {
	Target Target
	What   string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.What == "" {
		return fmt.Sprintf("buildopts: target %q not found", e.Target.String())
	}
	return fmt.Sprintf("buildopts: %s not found for target %q", e.What, e.Target.String())
}

// Unwrap maps the error onto errdefs.ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return errdefs.ErrNotFound
}
