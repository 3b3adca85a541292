package topo

import (
	"encoding/xml"
	"io"

	"github.com/entglab/swapnet/pkg/errors"
	"github.com/entglab/swapnet/pkg/geo"
)

// GraphML decoding targets. Only the subset needed for topologies is
// mapped: keys (to locate coordinate attributes), nodes with data
// values, and edges.
type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	AttrName string `xml:"attr.name,attr"`
}

type graphmlGraph struct {
	Nodes []graphmlNode `xml:"node"`
	Edges []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

type graphmlData struct {
	Key   string  `xml:"key,attr"`
	Value float64 `xml:",chardata"`
}

// ReadGraphML reads an undirected topology from a GraphML document.
// Nodes are numbered in document order; the returned coordinates are
// aligned with that numbering. Coordinates come from node data entries
// whose key declares attr.name "x"/"y" (or "Longitude"/"Latitude");
// nodes without position data sit at the origin.
func ReadGraphML(r io.Reader) ([]Link, []geo.Coordinate, error) {
	var doc graphmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidArgument, err, "decoding GraphML")
	}

	xKey, yKey := coordinateKeys(doc.Keys)

	index := make(map[string]int, len(doc.Graph.Nodes))
	coordinates := make([]geo.Coordinate, 0, len(doc.Graph.Nodes))
	for i, n := range doc.Graph.Nodes {
		if _, dup := index[n.ID]; dup {
			return nil, nil, errors.New(errors.ErrCodeInvalidArgument, "duplicate GraphML node id %q", n.ID)
		}
		index[n.ID] = i
		var c geo.Coordinate
		for _, d := range n.Data {
			switch d.Key {
			case xKey:
				c.X = d.Value
			case yKey:
				c.Y = d.Value
			}
		}
		coordinates = append(coordinates, c)
	}

	links := make([]Link, 0, len(doc.Graph.Edges))
	for _, e := range doc.Graph.Edges {
		a, okA := index[e.Source]
		b, okB := index[e.Target]
		if !okA || !okB {
			return nil, nil, errors.New(errors.ErrCodeInvalidArgument,
				"GraphML edge (%s, %s) references an unknown node", e.Source, e.Target)
		}
		if a == b {
			continue // self-loops carry no capacity
		}
		links = append(links, Link{A: a, B: b})
	}
	return links, coordinates, nil
}

// coordinateKeys resolves the data key ids that carry node positions.
func coordinateKeys(keys []graphmlKey) (xKey, yKey string) {
	for _, k := range keys {
		switch k.AttrName {
		case "x", "Longitude":
			xKey = k.ID
		case "y", "Latitude":
			yKey = k.ID
		}
	}
	return xKey, yKey
}
