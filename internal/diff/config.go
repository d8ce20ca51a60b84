package diff

// DiffFilter narrows a diff to a subset of node/edge types and lets the
// caller silence noisy fields. Empty NodeTypes/EdgeTypes mean "no
// filtering" rather than "exclude everything" — the zero value of
// DiffFilter is the unfiltered diff.
type DiffFilter struct {
	NodeTypes    []string
	EdgeTypes    []string
	IgnoreFields []string
}

func (f DiffFilter) nodeAllowed(nodeType string) bool {
	if len(f.NodeTypes) == 0 {
		return true
	}
	for _, t := range f.NodeTypes {
		if t == nodeType {
			return true
		}
	}
	return false
}

func (f DiffFilter) edgeAllowed(edgeType string) bool {
	if len(f.EdgeTypes) == 0 {
		return true
	}
	for _, t := range f.EdgeTypes {
		if t == edgeType {
			return true
		}
	}
	return false
}

func (f DiffFilter) ignored(field string) bool {
	for _, i := range f.IgnoreFields {
		if i == field {
			return true
		}
	}
	return false
}
