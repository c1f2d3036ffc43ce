package buildinfo

import "testing"

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "v0.3.0", "1a2b3c4", ""
	if got := String(); got != "v0.3.0 (1a2b3c4)" {
		t.Fatalf("String() = %q", got)
	}
	Date = "2026-10-01T08:00:00Z"
	if got := String(); got != "v0.3.0 (1a2b3c4, 2026-10-01T08:00:00Z)" {
		t.Fatalf("String() = %q", got)
	}
}
