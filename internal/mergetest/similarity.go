package mergetest

import (
	"math"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

// identifierLabels maps every canonical identifier appearing on f's
// nodes to the ordinal position of the node that carries it. Two
// identifiers sharing a label are grouped onto the same node within f.
func identifierLabels(f *model.File) map[string]int {
	out := make(map[string]int)
	for i, n := range f.Nodes {
		for _, id := range n.Identifiers {
			out[id.Canonical()] = i
		}
	}
	return out
}

// alignedLabels builds parallel label slices over the identifiers common
// to both files — the only ones whose grouping can be compared across a
// and b. An identifier present in only one file carries no information
// about whether the two files agree on grouping, so it is excluded
// rather than assigned an arbitrary label.
func alignedLabels(a, b *model.File) (labelsA, labelsB []int) {
	idsA := identifierLabels(a)
	idsB := identifierLabels(b)
	for canonical, la := range idsA {
		if lb, ok := idsB[canonical]; ok {
			labelsA = append(labelsA, la)
			labelsB = append(labelsB, lb)
		}
	}
	return labelsA, labelsB
}

// AdjustedRandIndex scores how well two files agree on node grouping,
// over the identifiers that appear in both. 1.0 is perfect agreement
// (every pair of identifiers grouped together on one side is grouped
// together on the other, and vice versa); 0 is what random grouping
// would produce; negative values mean worse than random.
// SamePartition/SameConnectivity give a yes/no answer to the algebraic
// laws in §8.1; this gives a graded answer for comparing two merges
// that are expected to differ somewhat — two runs against snapshots
// taken weeks apart, where some identifiers appeared or were retired
// between runs. Fewer than two identifiers in common returns 1.0: there
// is nothing to disagree about.
//
// ARI = (RI - Expected_RI) / (Max_RI - Expected_RI)
func AdjustedRandIndex(a, b *model.File) float64 {
	labelsA, labelsB := alignedLabels(a, b)
	n := len(labelsA)
	if n < 2 {
		return 1.0
	}

	groupsA := uniqueLabels(labelsA)
	groupsB := uniqueLabels(labelsB)
	indexA := make(map[int]int, len(groupsA))
	for i, l := range groupsA {
		indexA[l] = i
	}
	indexB := make(map[int]int, len(groupsB))
	for i, l := range groupsB {
		indexB[l] = i
	}

	contingency := make([][]int, len(groupsA))
	for i := range contingency {
		contingency[i] = make([]int, len(groupsB))
	}
	for k := 0; k < n; k++ {
		contingency[indexA[labelsA[k]]][indexB[labelsB[k]]]++
	}

	rowSums := make([]int, len(groupsA))
	colSums := make([]int, len(groupsB))
	for i := range contingency {
		for j := range contingency[i] {
			rowSums[i] += contingency[i][j]
			colSums[j] += contingency[i][j]
		}
	}

	sumNijC2 := 0.0
	for i := range contingency {
		for j := range contingency[i] {
			sumNijC2 += comb2(contingency[i][j])
		}
	}
	sumAiC2 := 0.0
	for _, v := range rowSums {
		sumAiC2 += comb2(v)
	}
	sumBjC2 := 0.0
	for _, v := range colSums {
		sumBjC2 += comb2(v)
	}
	nC2 := comb2(n)
	if nC2 == 0 {
		return 1.0
	}

	expectedIndex := (sumAiC2 * sumBjC2) / nC2
	maxIndex := 0.5 * (sumAiC2 + sumBjC2)
	denominator := maxIndex - expectedIndex
	if math.Abs(denominator) < 1e-12 {
		return 1.0
	}
	return (sumNijC2 - expectedIndex) / denominator
}

// VariationOfInformation is the information-theoretic counterpart to
// AdjustedRandIndex: the bits of information lost and gained moving from
// a's grouping of the shared identifiers to b's. 0 means identical
// grouping; larger is more disagreement. Unlike ARI it is an unbounded
// distance rather than a normalized score, useful when comparing the
// magnitude of disagreement across several file pairs rather than just
// its sign.
func VariationOfInformation(a, b *model.File) float64 {
	labelsA, labelsB := alignedLabels(a, b)
	n := len(labelsA)
	if n < 2 {
		return 0.0
	}
	nf := float64(n)

	groupsA := uniqueLabels(labelsA)
	groupsB := uniqueLabels(labelsB)
	indexA := make(map[int]int, len(groupsA))
	for i, l := range groupsA {
		indexA[l] = i
	}
	indexB := make(map[int]int, len(groupsB))
	for i, l := range groupsB {
		indexB[l] = i
	}

	contingency := make([][]int, len(groupsA))
	for i := range contingency {
		contingency[i] = make([]int, len(groupsB))
	}
	for k := 0; k < n; k++ {
		contingency[indexA[labelsA[k]]][indexB[labelsB[k]]]++
	}

	rowSums := make([]int, len(groupsA))
	colSums := make([]int, len(groupsB))
	for i := range contingency {
		for j := range contingency[i] {
			rowSums[i] += contingency[i][j]
			colSums[j] += contingency[i][j]
		}
	}

	hAgivenB := 0.0
	for i := range contingency {
		for j := range contingency[i] {
			if contingency[i][j] > 0 && colSums[j] > 0 {
				pij := float64(contingency[i][j]) / nf
				hAgivenB -= pij * math.Log2(float64(contingency[i][j])/float64(colSums[j]))
			}
		}
	}
	hBgivenA := 0.0
	for i := range contingency {
		for j := range contingency[i] {
			if contingency[i][j] > 0 && rowSums[i] > 0 {
				pij := float64(contingency[i][j]) / nf
				hBgivenA -= pij * math.Log2(float64(contingency[i][j])/float64(rowSums[i]))
			}
		}
	}
	return hAgivenB + hBgivenA
}

func comb2(n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(n) * float64(n-1) / 2.0
}

func uniqueLabels(labels []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
