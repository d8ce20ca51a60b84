package validate

import (
	"context"
	"fmt"
	"sort"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

var l3Rules = []func(context.Context, *ValidationContext, ExternalDataSource) []Diagnostic{
	ruleXRF01GLEIFVerification,
	ruleXRF02OwnershipPercentageSum,
	ruleXRF03LegalParentageForest,
}

func infoDiag(id RuleID, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{RuleID: id, Severity: model.SeverityInfo, Location: loc, Message: fmt.Sprintf(format, args...)}
}

func ruleXRF01GLEIFVerification(ctx context.Context, vc *ValidationContext, eds ExternalDataSource) []Diagnostic {
	if eds == nil {
		return nil
	}
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeLEI {
			return
		}
		rec, err := eds.LEIStatus(ctx, id.TrimmedValue())
		if err != nil {
			diags = append(diags, infoDiag(RuleXRF01, IdentifierLocation(n.ID, idx, "value"),
				"LEI %q on node %q could not be verified against GLEIF: %v", id.Value, n.ID, err))
			return
		}
		if !rec.Found {
			diags = append(diags, infoDiag(RuleXRF01, IdentifierLocation(n.ID, idx, "value"),
				"LEI %q on node %q was not found in GLEIF reference data", id.Value, n.ID))
			return
		}
		if rec.Status == "ANNULLED" {
			diags = append(diags, Diagnostic{
				RuleID:   RuleXRF01,
				Severity: model.SeverityError,
				Location: IdentifierLocation(n.ID, idx, "value"),
				Message:  fmt.Sprintf("LEI %q on node %q is ANNULLED per GLEIF", id.Value, n.ID),
			})
			return
		}
		if declared := id.EntityStatus(); declared != "" && declared != rec.Status {
			diags = append(diags, infoDiag(RuleXRF01, IdentifierLocation(n.ID, idx, "value"),
				"LEI %q on node %q declares status %q but GLEIF reports %q", id.Value, n.ID, declared, rec.Status))
		}
	})
	return diags
}

// intervalsOverlap reports whether two temporal intervals, each
// expressed as an optional from/to pair (nil meaning open-ended), are
// compatible in the sense used throughout the identity predicates: they
// overlap unless both carry a finite valid_to/valid_from pair that
// proves they can't.
func intervalsOverlap(aFrom, aTo, bFrom, bTo *string) bool {
	if aTo != nil && bFrom != nil && *aTo < *bFrom {
		return false
	}
	if bTo != nil && aFrom != nil && *bTo < *aFrom {
		return false
	}
	return true
}

// dsu is a small disjoint-set structure over dense integer indices,
// local to this file's overlap-clustering use. It has the path-halving
// and union-by-rank shape of pkg/dsu, the union-find the merge and diff
// engines use, but not pkg/dsu's lower-ordinal tie-break on equal ranks.
type dsu struct {
	parent []int
	rank   []int
}

func newDSU(n int) *dsu {
	d := &dsu{parent: make([]int, n), rank: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

func (d *dsu) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}

func ruleXRF02OwnershipPercentageSum(_ context.Context, vc *ValidationContext, _ ExternalDataSource) []Diagnostic {
	var diags []Diagnostic

	byTarget := make(map[string][]int)
	for i, e := range vc.File.Edges {
		if e.Type != model.EdgeOwnership || e.Properties.Percentage == nil {
			continue
		}
		byTarget[e.Target] = append(byTarget[e.Target], i)
	}

	targets := make([]string, 0, len(byTarget))
	for t := range byTarget {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	for _, target := range targets {
		idxs := byTarget[target]
		d := newDSU(len(idxs))
		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				ea, eb := vc.File.Edges[idxs[a]], vc.File.Edges[idxs[b]]
				if intervalsOverlap(ea.Properties.ValidFrom, ea.Properties.ValidTo, eb.Properties.ValidFrom, eb.Properties.ValidTo) {
					d.union(a, b)
				}
			}
		}

		groups := make(map[int][]int)
		for a := range idxs {
			root := d.find(a)
			groups[root] = append(groups[root], a)
		}

		roots := make([]int, 0, len(groups))
		for r := range groups {
			roots = append(roots, r)
		}
		sort.Ints(roots)

		for _, root := range roots {
			sum := 0.0
			for _, a := range groups[root] {
				sum += *vc.File.Edges[idxs[a]].Properties.Percentage
			}
			if sum > 100 {
				diags = append(diags, infoDiag(RuleXRF02, NodeLocation(target, "identifiers"),
					"node %q has overlapping ownership edges summing to %.4f%%, exceeding 100%%", target, sum))
			}
		}
	}

	return diags
}

func ruleXRF03LegalParentageForest(_ context.Context, vc *ValidationContext, _ ExternalDataSource) []Diagnostic {
	inDegree := make(map[string]int)
	adjacency := make(map[string][]string)
	involved := make(map[string]bool)

	for _, e := range vc.File.Edges {
		if e.Type != model.EdgeLegalParentage {
			continue
		}
		if !vc.NodeIDs[e.Source] || !vc.NodeIDs[e.Target] {
			continue // already reported by GDM-03
		}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
		if _, ok := inDegree[e.Source]; !ok {
			inDegree[e.Source] = 0
		}
		involved[e.Source] = true
		involved[e.Target] = true
	}
	if len(involved) == 0 {
		return nil
	}

	// Kahn's algorithm: repeatedly remove zero-in-degree nodes. Anything
	// left afterward sits on a cycle.
	queue := make([]string, 0, len(involved))
	for id := range involved {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)
	visited := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		next := append([]string(nil), adjacency[cur]...)
		sort.Strings(next)
		for _, n := range next {
			inDegree[n]--
			if inDegree[n] == 0 {
				queue = append(queue, n)
				sort.Strings(queue)
			}
		}
	}

	if visited == len(involved) {
		return nil
	}

	var cycleMembers []string
	for id := range involved {
		if inDegree[id] > 0 {
			cycleMembers = append(cycleMembers, id)
		}
	}
	sort.Strings(cycleMembers)

	return []Diagnostic{infoDiag(RuleXRF03, GlobalLocation(),
		"legal_parentage edges contain a cycle among nodes %v", cycleMembers)}
}
