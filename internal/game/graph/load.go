package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
)

// NeighborList decodes a JSON array of node ids. Older definitions end the
// list with a non-numeric entry such as false; decoding stops at a boolean,
// null or string. Any other entry must be an integer id.
type NeighborList []int

func (nl *NeighborList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ids := make([]int, 0, len(raw))
	for i, r := range raw {
		if isTerminator(r) {
			break
		}
		var id int
		if err := json.Unmarshal(r, &id); err != nil {
			return errors.Wrapf(err, "neighbor %d: %s is not a node id", i, bytes.TrimSpace(r))
		}
		ids = append(ids, id)
	}
	*nl = ids
	return nil
}

func isTerminator(r json.RawMessage) bool {
	r = bytes.TrimSpace(r)
	if len(r) == 0 {
		return false
	}
	switch r[0] {
	case 'f', 't', 'n', '"':
		return true
	}
	return false
}

// Load reads a JSON graph definition and builds the mesh. source names the
// input in error messages.
func Load(r io.Reader, source string) (*NavigationMesh, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &ParseError{Source: source, Msg: "malformed graph definition", Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Source: source, Msg: "graph definition has no nodes"}
	}

	m, err := Build(records)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = source
		}
		return nil, err
	}

	for _, ie := range m.IrregularEdges() {
		log.Warnf("GRAPH: edge %d->%d has non-integral length %.3f, milestones on it may be skipped", ie.From, ie.To, ie.Length)
	}
	log.Infof("GRAPH: loaded %d nodes from %s", m.Size(), source)
	return m, nil
}

func LoadFile(path string) (*NavigationMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open graph definition")
	}
	defer f.Close()
	return Load(f, path)
}
