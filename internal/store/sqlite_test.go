package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-engine/internal/code"
	"level-engine/internal/mapgraph"
)

func openRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "level.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background()))
	// Повторный Init не должен падать.
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func squareMap(name string) *mapgraph.Map {
	m := mapgraph.New()
	m.Name = name
	ids := []uint32{
		m.AddVertexAt(0, 0),
		m.AddVertexAt(2, 0),
		m.AddVertexAt(2, 2),
		m.AddVertexAt(0, 2),
	}
	for i := range ids {
		m.CreateLinedef(ids[i], ids[(i+1)%len(ids)])
	}
	m.Sanitize()
	return m
}

func TestMapRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	m := squareMap("cellar")

	require.NoError(t, repo.SaveMap(ctx, m))
	got, err := repo.LoadMap(ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "cellar", got.Name)
	if diff := cmp.Diff(m.Vertices, got.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Linedefs, got.Linedefs); diff != "" {
		t.Errorf("linedefs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Sectors, got.Sectors); diff != "" {
		t.Errorf("sectors mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, got.Surfaces, 1)
}

func TestSaveMapUpserts(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	m := squareMap("draft")
	require.NoError(t, repo.SaveMap(ctx, m))

	m.Name = "final"
	require.NoError(t, repo.SaveMap(ctx, m))
	require.NoError(t, repo.SaveMap(ctx, squareMap("another")))

	list, err := repo.ListMaps(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "another", list[0].Name)
	assert.Equal(t, "final", list[1].Name)
	assert.Equal(t, m.ID, list[1].ID)
}

func TestLoadMapSanitizes(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	m := squareMap("broken")
	m.Linedefs = append(m.Linedefs, mapgraph.NewLinedef(99, 0, 42))
	require.NoError(t, repo.SaveMap(ctx, m))

	got, err := repo.LoadMap(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FindLinedef(99))
	assert.Len(t, got.Sectors, 1)
}

func TestMissingRows(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	_, err := repo.LoadMap(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.LoadPackage(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteMap(ctx, uuid.New()), ErrNotFound)

	m := squareMap("gone")
	require.NoError(t, repo.SaveMap(ctx, m))
	require.NoError(t, repo.DeleteMap(ctx, m.ID))
	_, err = repo.LoadMap(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func samplePackage() code.PackageSource {
	return code.PackageSource{
		ID:   uuid.New(),
		Name: "npc",
		Modules: []code.ModuleSource{{
			ID:         uuid.New(),
			CodegridID: uuid.New(),
			Name:       "main",
			Instructions: []code.Instruction{
				code.At(0, 0, code.Literal(code.Int(2))),
				code.At(1, 0, code.Literal(code.Int(3))),
				code.At(2, 0, code.Op(code.AtomMultiply)),
				code.At(3, 0, code.Op(code.AtomReturn)),
			},
		}},
	}
}

func TestPackageRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	src := samplePackage()

	require.NoError(t, repo.SavePackage(ctx, src))
	got, err := repo.LoadPackage(ctx, src.ID)
	require.NoError(t, err)

	want, _ := json.Marshal(src)
	have, _ := json.Marshal(got)
	assert.JSONEq(t, string(want), string(have))

	p, err := code.NewCompiler().CompilePackage(got)
	require.NoError(t, err)
	m, ok := p.ModuleByName("main")
	require.True(t, ok)
	stack, err := m.Clone().Execute(code.NewSandbox())
	require.NoError(t, err)
	assert.Equal(t, code.Stack{code.Int(6)}, stack)
}

func TestFileStorage(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStorage(root)

	m := squareMap("export")
	path, err := fs.ExportMap(m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, m.ID.String(), "map.json"), path)

	got, err := ReadMap(path)
	require.NoError(t, err)
	assert.Equal(t, m.Info(), got.Info())

	pkgPath, err := fs.ExportPackage(samplePackage())
	require.NoError(t, err)
	src, err := ReadPackageSource(pkgPath)
	require.NoError(t, err)
	assert.Len(t, src.Modules, 1)

	segPath := filepath.Join(root, "walls.json")
	require.NoError(t, os.WriteFile(segPath, []byte(`[{"id":"a","p1":{"x":0,"y":0},"p2":{"x":3,"y":0},"wall_height":2.5}]`), 0o644))
	segments, err := ReadSegments(segPath)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "a", segments[0].ID)
	assert.InDelta(t, 3, segments[0].P2.X, 1e-9)

	_, err = ReadSegments(filepath.Join(root, "missing.json"))
	assert.Error(t, err)
}
