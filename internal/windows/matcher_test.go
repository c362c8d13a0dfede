package windows

import (
	"testing"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/platform"
)

func TestMatchScore(t *testing.T) {
	base := geom.Rect{X: 100, Y: 200, Width: 800, Height: 600}
	tests := []struct {
		name string
		tree platform.TreeWindow
		cand candidate
		want int
	}{
		{
			name: "title only",
			tree: platform.TreeWindow{Title: "Report", Bounds: base},
			cand: candidate{
				surface: platform.SurfaceWindow{Title: "Report"},
				bounds:  geom.Rect{X: 900, Y: 900, Width: 100, Height: 100},
			},
			want: 100,
		},
		{
			name: "position and size only",
			tree: platform.TreeWindow{Title: "Report", Bounds: base},
			cand: candidate{
				surface: platform.SurfaceWindow{Title: "Other"},
				bounds:  base,
			},
			want: 75,
		},
		{
			name: "all three",
			tree: platform.TreeWindow{Title: "Report", Bounds: base},
			cand: candidate{
				surface: platform.SurfaceWindow{Title: "Report"},
				bounds:  base,
			},
			want: 175,
		},
		{
			name: "empty titles never match on title",
			tree: platform.TreeWindow{Title: "", Bounds: base},
			cand: candidate{
				surface: platform.SurfaceWindow{Title: ""},
				bounds:  geom.Rect{X: 900, Y: 900, Width: 100, Height: 100},
			},
			want: 0,
		},
		{
			name: "position at exact tolerance",
			tree: platform.TreeWindow{Title: "A", Bounds: base},
			cand: candidate{
				surface: platform.SurfaceWindow{Title: "B"},
				bounds:  geom.Rect{X: base.X + 10, Y: base.Y - 10, Width: base.Width, Height: base.Height},
			},
			want: 75,
		},
		{
			name: "size one past tolerance",
			tree: platform.TreeWindow{Title: "A", Bounds: base},
			cand: candidate{
				surface: platform.SurfaceWindow{Title: "B"},
				bounds:  geom.Rect{X: base.X, Y: base.Y, Width: base.Width + 11, Height: base.Height},
			},
			want: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchScore(tt.tree, tt.cand, 10, 10); got != tt.want {
				t.Errorf("matchScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClaimBestFirstWinsTie(t *testing.T) {
	tree := platform.TreeWindow{Title: "Term", Bounds: geom.Rect{X: 0, Y: 0, Width: 600, Height: 400}}
	cands := []candidate{
		{surface: platform.SurfaceWindow{ID: 21, Title: "Term"}, bounds: geom.Rect{X: 900, Y: 900, Width: 100, Height: 100}},
		{surface: platform.SurfaceWindow{ID: 22, Title: "Term"}, bounds: geom.Rect{X: 900, Y: 700, Width: 100, Height: 100}},
	}

	if got := claimBest(tree, cands, 10, 10); got != 0 {
		t.Fatalf("claimBest() = %d, want the first of two equal-scored candidates", got)
	}
	if got := claimBest(tree, cands, 10, 10); got != 1 {
		t.Fatalf("claimBest() second call = %d, want the remaining candidate", got)
	}
	if got := claimBest(tree, cands, 10, 10); got != -1 {
		t.Fatalf("claimBest() with all claimed = %d, want -1", got)
	}
}

func TestClaimBestRejectsZeroScores(t *testing.T) {
	tree := platform.TreeWindow{Title: "Mail", Bounds: geom.Rect{X: 0, Y: 0, Width: 600, Height: 400}}
	cands := []candidate{
		{surface: platform.SurfaceWindow{ID: 31, Title: "Unrelated"}, bounds: geom.Rect{X: 900, Y: 900, Width: 100, Height: 100}},
	}

	if got := claimBest(tree, cands, 10, 10); got != -1 {
		t.Fatalf("claimBest() = %d, want -1 when nothing scores", got)
	}
	if cands[0].claimed {
		t.Error("unmatched candidate marked claimed, want it left available")
	}
}
