package windows

import (
	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/platform"
)

// candidate is a surface window still available for pairing, with its
// bounds already normalized into the tree coordinate convention.
type candidate struct {
	surface platform.SurfaceWindow
	bounds  geom.Rect
	claimed bool
}

// matchScore rates how likely a tree window and a surface candidate are
// the same on-screen window: exact title equality scores 100, position
// within tolerance 50, size within tolerance 25. Untitled tree windows
// never score on title, or every minimized window would pair with every
// unnamed surface.
func matchScore(tree platform.TreeWindow, cand candidate, posTol, sizeTol int) int {
	score := 0
	if tree.Title != "" && tree.Title == cand.surface.Title {
		score += 100
	}
	if abs(tree.Bounds.X-cand.bounds.X) <= posTol && abs(tree.Bounds.Y-cand.bounds.Y) <= posTol {
		score += 50
	}
	if abs(tree.Bounds.Width-cand.bounds.Width) <= sizeTol && abs(tree.Bounds.Height-cand.bounds.Height) <= sizeTol {
		score += 25
	}
	return score
}

// claimBest picks the highest-scoring unclaimed candidate for a tree
// window and marks it claimed, returning its index or -1. Greedy with
// first-wins ties: two windows of one app with identical titles and
// near-identical geometry can swap images. Known limitation, the pair is
// visually interchangeable anyway.
func claimBest(tree platform.TreeWindow, cands []candidate, posTol, sizeTol int) int {
	best := -1
	bestScore := 0
	for i := range cands {
		if cands[i].claimed {
			continue
		}
		if s := matchScore(tree, cands[i], posTol, sizeTol); s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best >= 0 {
		cands[best].claimed = true
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
