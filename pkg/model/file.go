package model

import "encoding/json"

// File is the top-level record: a snapshot of a supply-chain graph plus
// the salt used to derive opaque boundary-reference identifiers from it.
type File struct {
	OmtsfVersion    string         `json:"omtsf_version"`
	SnapshotDate    string         `json:"snapshot_date"`
	FileSalt        string         `json:"file_salt"`
	DisclosureScope string         `json:"disclosure_scope,omitempty"`
	ReportingEntity string         `json:"reporting_entity,omitempty"`
	Nodes           []Node         `json:"nodes"`
	Edges           []Edge         `json:"edges"`
	MergeMetadata   *MergeMetadata `json:"merge_metadata,omitempty"`
	Extra           map[string]any `json:"-"`
}

var fileKnownFields = []string{
	"omtsf_version", "snapshot_date", "file_salt", "disclosure_scope",
	"reporting_entity", "nodes", "edges", "merge_metadata",
}

type fileAlias File

// MergeMetadata records provenance for a file produced by the merge
// engine. Absent on any file that was not itself a merge output.
type MergeMetadata struct {
	SourceFiles       []string `json:"source_files"`
	ReportingEntities []string `json:"reporting_entities,omitempty"`
	Timestamp         string   `json:"timestamp"`
	MergedNodeCount   int      `json:"merged_node_count"`
	MergedEdgeCount   int      `json:"merged_edge_count"`
	ConflictCount     int      `json:"conflict_count"`
}

// NodeByID builds a lookup index over the file's nodes. Later nodes with
// a duplicate id win, matching linear scan order; callers validating
// uniqueness do so separately via L1-GDM-01.
func (f File) NodeByID() map[string]*Node {
	idx := make(map[string]*Node, len(f.Nodes))
	for i := range f.Nodes {
		idx[f.Nodes[i].ID] = &f.Nodes[i]
	}
	return idx
}

// EdgeByID mirrors NodeByID for edges.
func (f File) EdgeByID() map[string]*Edge {
	idx := make(map[string]*Edge, len(f.Edges))
	for i := range f.Edges {
		idx[f.Edges[i].ID] = &f.Edges[i]
	}
	return idx
}

func (f File) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(fileAlias(f))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, f.Extra)
}

func (f *File) UnmarshalJSON(data []byte) error {
	var alias fileAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*f = File(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := splitExtra(raw, fileKnownFields...)
	if err != nil {
		return err
	}
	f.Extra = extra
	return nil
}
