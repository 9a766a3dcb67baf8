package version_test

import (
	"testing"

	"github.com/zannabianca1997/dices/pkg/version"
)

func TestCompatibleSameVersion(t *testing.T) {
	v := version.New(1, 2, 0, "matchlang")
	r := version.Compatible(v, v)
	if !r.Compatible {
		t.Fatalf("expected a version to be compatible with itself, got %v", r)
	}
}

func TestIncompatibleMajorMismatch(t *testing.T) {
	local := version.New(1, 0, 0)
	remote := version.New(2, 0, 0)
	r := version.Compatible(local, remote)
	if r.Compatible || r.Reason != version.MajorMismatch {
		t.Fatalf("expected MajorMismatch, got %v", r)
	}
}

func TestLocalMinorMustNotExceedRemote(t *testing.T) {
	local := version.New(1, 5, 0)
	remote := version.New(1, 3, 0)
	r := version.Compatible(local, remote)
	if r.Compatible || r.Reason != version.LocalMinorTooNew {
		t.Fatalf("expected LocalMinorTooNew, got %v", r)
	}
}

func TestLocalMinorLessThanRemoteIsCompatible(t *testing.T) {
	local := version.New(1, 1, 0)
	remote := version.New(1, 9, 0)
	r := version.Compatible(local, remote)
	if !r.Compatible {
		t.Fatalf("expected compatible, got %v", r)
	}
}

func TestPatchNeverAffectsCompatibility(t *testing.T) {
	local := version.New(1, 2, 99)
	remote := version.New(1, 2, 0)
	r := version.Compatible(local, remote)
	if !r.Compatible {
		t.Fatalf("expected patch differences to be ignored, got %v", r)
	}
}

func TestMissingRemoteFeature(t *testing.T) {
	local := version.New(1, 0, 0, "matchlang")
	remote := version.New(1, 0, 0)
	r := version.Compatible(local, remote)
	if r.Compatible || r.Reason != version.MissingRemoteFeature || r.Feature != "matchlang" {
		t.Fatalf("expected MissingRemoteFeature(matchlang), got %v", r)
	}
}

func TestMissingLocalFeature(t *testing.T) {
	local := version.New(1, 0, 0)
	remote := version.New(1, 0, 0, "matchlang")
	r := version.Compatible(local, remote)
	if r.Compatible || r.Reason != version.MissingLocalFeature || r.Feature != "matchlang" {
		t.Fatalf("expected MissingLocalFeature(matchlang), got %v", r)
	}
}

func TestHasFeature(t *testing.T) {
	v := version.New(1, 0, 0, "a", "b")
	if !v.HasFeature("a") || v.HasFeature("c") {
		t.Fatalf("HasFeature behaved unexpectedly for %v", v)
	}
}
