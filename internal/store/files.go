package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"level-engine/internal/code"
	"level-engine/internal/importer"
	"level-engine/internal/mapgraph"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage раскладывает экспорт по каталогам: <root>/<id>/map.json.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) Dir(id uuid.UUID) string {
	return filepath.Join(s.root, id.String())
}

func (s *FileStorage) MapPath(id uuid.UUID) string {
	return filepath.Join(s.Dir(id), "map.json")
}

func (s *FileStorage) PackagePath(id uuid.UUID) string {
	return filepath.Join(s.Dir(id), "package.json")
}

func (s *FileStorage) EnsureDir(id uuid.UUID) error {
	if err := os.MkdirAll(s.Dir(id), 0o755); err != nil {
		return fmt.Errorf("mkdir export dir: %w", err)
	}
	return nil
}

func (s *FileStorage) ExportMap(m *mapgraph.Map) (string, error) {
	if err := s.EnsureDir(m.ID); err != nil {
		return "", err
	}
	path := s.MapPath(m.ID)
	if err := writeJSON(path, m); err != nil {
		return "", err
	}
	return path, nil
}

func (s *FileStorage) ExportPackage(src code.PackageSource) (string, error) {
	if err := s.EnsureDir(src.ID); err != nil {
		return "", err
	}
	path := s.PackagePath(src.ID)
	if err := writeJSON(path, src); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSegments читает JSON-массив стен для импорта.
func ReadSegments(path string) ([]importer.Segment, error) {
	var segments []importer.Segment
	if err := readJSON(path, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func ReadPackageSource(path string) (code.PackageSource, error) {
	var src code.PackageSource
	if err := readJSON(path, &src); err != nil {
		return code.PackageSource{}, err
	}
	return src, nil
}

// ReadMap читает карту из файла экспорта и восстанавливает инварианты.
func ReadMap(path string) (*mapgraph.Map, error) {
	m := mapgraph.New()
	if err := readJSON(path, m); err != nil {
		return nil, err
	}
	m.Sanitize()
	return m, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
