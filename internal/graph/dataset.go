package graph

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// Blob file names inside a dataset directory.
const (
	MetaFile    = "meta.json"
	EdgesFile   = "edges.bin"
	NodesFile   = "nodes.bin"
	NormalsFile = "normals.bin"

	edgeRecordSize   = 12
	vectorRecordSize = 12
)

// ErrMalformed marks a dataset whose blobs disagree with meta.json.
var ErrMalformed = errors.New("malformed navigation dataset")

// Meta describes the blob sizes.
type Meta struct {
	NumNodes      int `json:"num_nodes"`
	NumDirections int `json:"num_directions"`
	NumEdges      int `json:"num_edges"`
}

// NumVertices is NumNodes·NumDirections.
func (m Meta) NumVertices() int { return m.NumNodes * m.NumDirections }

// Dataset is the decoded navigation data. It is owned by whoever loaded it and
// handed to NewNavigator; nothing else keeps a reference.
type Dataset struct {
	Meta      Meta
	Edges     []Edge
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
}

type edgeRecord struct {
	Src    int32
	Dst    int32
	Weight float32
}

// Validate checks the counts against Meta.
func (d *Dataset) Validate() error {
	switch {
	case d.Meta.NumDirections <= 0:
		return fmt.Errorf("%w: %d direction buckets", ErrMalformed, d.Meta.NumDirections)
	case len(d.Positions) != d.Meta.NumNodes:
		return fmt.Errorf("%w: %d positions, meta says %d", ErrMalformed, len(d.Positions), d.Meta.NumNodes)
	case d.Normals != nil && len(d.Normals) != d.Meta.NumNodes:
		return fmt.Errorf("%w: %d normals, meta says %d", ErrMalformed, len(d.Normals), d.Meta.NumNodes)
	case len(d.Edges) != d.Meta.NumEdges:
		return fmt.Errorf("%w: %d edges, meta says %d", ErrMalformed, len(d.Edges), d.Meta.NumEdges)
	}
	return nil
}

// ReadDataset reads meta.json, then the three blobs concurrently.
func ReadDataset(ctx context.Context, dir string) (*Dataset, error) {
	raw, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", MetaFile, err)
	}
	ds := &Dataset{}
	if err := json.Unmarshal(raw, &ds.Meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, MetaFile, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		edges, err := readEdges(ctx, filepath.Join(dir, EdgesFile), ds.Meta.NumEdges)
		ds.Edges = edges
		return err
	})
	g.Go(func() error {
		pos, err := readVectors(ctx, filepath.Join(dir, NodesFile), ds.Meta.NumNodes)
		ds.Positions = pos
		return err
	})
	g.Go(func() error {
		path := filepath.Join(dir, NormalsFile)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		normals, err := readVectors(ctx, path, ds.Meta.NumNodes)
		ds.Normals = normals
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func readBlob(ctx context.Context, path string, count, recordSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if len(data) != count*recordSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d records of %d",
			ErrMalformed, filepath.Base(path), len(data), count, recordSize)
	}
	return data, nil
}

func readEdges(ctx context.Context, path string, count int) ([]Edge, error) {
	data, err := readBlob(ctx, path, count, edgeRecordSize)
	if err != nil {
		return nil, err
	}
	records := make([]edgeRecord, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	edges := make([]Edge, count)
	for i, r := range records {
		edges[i] = Edge(r)
	}
	return edges, nil
}

func readVectors(ctx context.Context, path string, count int) ([]mgl64.Vec3, error) {
	data, err := readBlob(ctx, path, count, vectorRecordSize)
	if err != nil {
		return nil, err
	}
	records := make([][3]float32, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	out := make([]mgl64.Vec3, count)
	for i, r := range records {
		out[i] = mgl64.Vec3{float64(r[0]), float64(r[1]), float64(r[2])}
	}
	return out, nil
}

// WriteDataset writes ds as meta.json plus the three blobs.
func WriteDataset(dir string, ds *Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	meta, err := json.MarshalIndent(ds.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFile), meta, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MetaFile, err)
	}

	records := make([]edgeRecord, len(ds.Edges))
	for i, e := range ds.Edges {
		records[i] = edgeRecord(e)
	}
	if err := writeBlob(filepath.Join(dir, EdgesFile), records); err != nil {
		return err
	}
	if err := writeBlob(filepath.Join(dir, NodesFile), toFloat32(ds.Positions)); err != nil {
		return err
	}
	if ds.Normals != nil {
		return writeBlob(filepath.Join(dir, NormalsFile), toFloat32(ds.Normals))
	}
	return nil
}

func writeBlob(path string, data any) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func toFloat32(vs []mgl64.Vec3) [][3]float32 {
	out := make([][3]float32, len(vs))
	for i, v := range vs {
		out[i] = [3]float32{float32(v.X()), float32(v.Y()), float32(v.Z())}
	}
	return out
}
