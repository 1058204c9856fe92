package benchmark

import (
	"github.com/searchroi/search-roi/internal/backend"
)

// FuseHits merges vector and lexical hit lists into one ranked list.
//
// This is a rank-preserving union, not a re-ranked blend: every vector hit is
// appended first in its returned order, then every lexical hit whose ID was
// not already seen, in its returned order. Vector hits win ties by ID. Scores
// are carried through untouched; no normalization across sources occurs. The
// fused list is truncated to limit.
func FuseHits(vector, lexical []backend.SearchHit, limit int) []backend.SearchHit {
	seen := make(map[string]bool, len(vector))
	fused := make([]backend.SearchHit, 0, len(vector)+len(lexical))

	for _, hit := range vector {
		if seen[hit.ID] {
			continue
		}
		seen[hit.ID] = true
		fused = append(fused, hit)
	}
	for _, hit := range lexical {
		if seen[hit.ID] {
			continue
		}
		seen[hit.ID] = true
		fused = append(fused, hit)
	}

	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
