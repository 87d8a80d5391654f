package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/sirupsen/logrus"

	"level-engine/internal/code"
	"level-engine/internal/common/logging"
	"level-engine/internal/mapgraph"
)

var log = logging.Named("store")

var ErrNotFound = errors.New("not found")

//go:embed migrations/*.sql
var migrations embed.FS

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет встроенные миграции по порядку имен файлов.
func (r *Repository) Init(ctx context.Context) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// MapInfo строка списка карт без геометрии.
type MapInfo struct {
	ID        uuid.UUID
	Name      string
	UpdatedAt string
}

// ============================================================
// Maps
// ============================================================

func (r *Repository) SaveMap(ctx context.Context, m *mapgraph.Map) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode map %s: %w", m.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO maps (id, name, data)
        VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            data = excluded.data,
            updated_at = datetime('now')
    `, m.ID.String(), m.Name, data)
	if err != nil {
		return fmt.Errorf("save map %s: %w", m.ID, err)
	}

	log.WithField("map_id", m.ID).Info("map saved")
	return nil
}

// LoadMap читает карту и прогоняет Sanitize: сохраненные данные могли быть
// изменены вне редактора.
func (r *Repository) LoadMap(ctx context.Context, id uuid.UUID) (*mapgraph.Map, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data FROM maps WHERE id = ?`, id.String())

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("map %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	m := mapgraph.New()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode map %s: %w", id, err)
	}
	m.Sanitize()
	return m, nil
}

func (r *Repository) ListMaps(ctx context.Context) ([]MapInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, updated_at FROM maps ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	var out []MapInfo
	for rows.Next() {
		var (
			info MapInfo
			id   string
		)
		if err := rows.Scan(&id, &info.Name, &info.UpdatedAt); err != nil {
			return nil, err
		}
		if info.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("map id %q: %w", id, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteMap(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM maps WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete map %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("map %s: %w", id, ErrNotFound)
	}
	return nil
}

// ============================================================
// Script packages
// ============================================================

func (r *Repository) SavePackage(ctx context.Context, src code.PackageSource) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode package %s: %w", src.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO packages (id, name, data)
        VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            data = excluded.data,
            updated_at = datetime('now')
    `, src.ID.String(), src.Name, data)
	if err != nil {
		return fmt.Errorf("save package %s: %w", src.ID, err)
	}

	log.WithFields(logrus.Fields{"package_id": src.ID, "modules": len(src.Modules)}).Info("package saved")
	return nil
}

func (r *Repository) LoadPackage(ctx context.Context, id uuid.UUID) (code.PackageSource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data FROM packages WHERE id = ?`, id.String())

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return code.PackageSource{}, fmt.Errorf("package %s: %w", id, ErrNotFound)
		}
		return code.PackageSource{}, err
	}

	var src code.PackageSource
	if err := json.Unmarshal(data, &src); err != nil {
		return code.PackageSource{}, fmt.Errorf("decode package %s: %w", id, err)
	}
	return src, nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
