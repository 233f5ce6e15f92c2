package analysis

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity a candidate
// must clear to be offered as a "did you mean" suggestion.
const suggestionThreshold = 0.80

// maxSuggestions bounds how many candidates SuggestProcedure returns.
const maxSuggestions = 3

// Suggestion is a candidate replacement for an unresolved call target.
type Suggestion struct {
	Object     string
	Procedure  string
	Similarity float64
}

// SuggestProcedure finds the local definitions whose (object, procedure)
// name most resembles the unresolved (object, procedure) pair, using
// Jaro-Winkler string similarity. Intended for priority-4 calls (a literal
// receiver with no local, external, or variable-bound resolution) where the
// most likely cause is a typo in the callee name.
func SuggestProcedure(graph *callgraph.Graph, object, procedure string) []Suggestion {
	var candidates []Suggestion

	graph.IterDefinitions(func(q callgraph.QName, d callgraph.Definition) {
		candObj, _ := graph.Resolve(q.Object)
		candProc, _ := graph.Resolve(q.Procedure)

		objSim := similarity(object, candObj)
		procSim := similarity(procedure, candProc)
		combined := (objSim + procSim) / 2

		if combined >= suggestionThreshold {
			candidates = append(candidates, Suggestion{
				Object:     candObj,
				Procedure:  candProc,
				Similarity: combined,
			})
		}
	})

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0.0
	}
	return float64(score)
}
