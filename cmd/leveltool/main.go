package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"level-engine/internal/code"
	"level-engine/internal/common/config"
	"level-engine/internal/common/logging"
	"level-engine/internal/importer"
	"level-engine/internal/store"
)

var log = logging.Named("leveltool")

// ============================================================
// Level Tool
// ============================================================

type options struct {
	cmd     string
	mapID   string
	name    string
	in      string
	out     string
	pkg     string
	module  string
	verbose bool
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "list", "command: list|info|sanitize|import|export|run")
	flag.StringVar(&opts.mapID, "map", "", "map id")
	flag.StringVar(&opts.name, "name", "imported", "name of a new map for import")
	flag.StringVar(&opts.in, "in", "", "input JSON file (wall segments for import)")
	flag.StringVar(&opts.out, "out", "export", "export directory")
	flag.StringVar(&opts.pkg, "package", "", "package id or path to package JSON")
	flag.StringVar(&opts.module, "module", "main", "module name to run")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	cfg := config.Load()
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("log level: %v", err)
	}

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := store.New(db)
	if err := repo.Init(ctx); err != nil {
		log.Fatalf("init db: %v", err)
	}

	log.WithFields(logrus.Fields{"cmd": opts.cmd, "env": cfg.Environment, "db": cfg.DBPath}).Debug("starting")

	if err := run(ctx, cfg, repo, opts); err != nil {
		log.Errorf("%s: %v", opts.cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, repo *store.Repository, opts options) error {
	switch opts.cmd {
	case "list":
		return listMaps(ctx, repo)
	case "info":
		return mapInfo(ctx, repo, opts)
	case "sanitize":
		return sanitizeMap(ctx, repo, opts)
	case "import":
		return importWalls(ctx, cfg, repo, opts)
	case "export":
		return exportMap(ctx, repo, opts)
	case "run":
		return runModule(ctx, cfg, repo, opts)
	}
	return fmt.Errorf("unknown command %q", opts.cmd)
}

// ============================================================
// Map commands
// ============================================================

func listMaps(ctx context.Context, repo *store.Repository) error {
	maps, err := repo.ListMaps(ctx)
	if err != nil {
		return err
	}
	for _, m := range maps {
		fmt.Printf("%s  %-24s %s\n", m.ID, m.Name, m.UpdatedAt)
	}
	return nil
}

func parseMapID(opts options) (uuid.UUID, error) {
	if opts.mapID == "" {
		return uuid.Nil, errors.New("-map is required")
	}
	id, err := uuid.Parse(opts.mapID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("map id: %w", err)
	}
	return id, nil
}

func mapInfo(ctx context.Context, repo *store.Repository, opts options) error {
	id, err := parseMapID(opts)
	if err != nil {
		return err
	}
	m, err := repo.LoadMap(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s): %s\n", m.Name, m.ID, m.Info())
	if bbox := m.BoundingBox(); !bbox.IsEmpty() {
		fmt.Printf("bounds: (%.2f, %.2f) - (%.2f, %.2f)\n", bbox.Min.X, bbox.Min.Y, bbox.Max.X, bbox.Max.Y)
	}
	for _, sid := range m.SortedSectorsByArea() {
		s := m.FindSector(sid)
		fmt.Printf("  sector %d: %d linedefs, area %.2f\n", s.ID, len(s.Linedefs), s.Area(m))
	}
	return nil
}

// sanitizeMap загружает карту (LoadMap чинит ее) и сохраняет результат.
func sanitizeMap(ctx context.Context, repo *store.Repository, opts options) error {
	id, err := parseMapID(opts)
	if err != nil {
		return err
	}
	m, err := repo.LoadMap(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.SaveMap(ctx, m); err != nil {
		return err
	}
	fmt.Println(m.Info())
	return nil
}

func importWalls(ctx context.Context, cfg *config.Config, repo *store.Repository, opts options) error {
	if opts.in == "" {
		return errors.New("-in is required")
	}
	segments, err := store.ReadSegments(opts.in)
	if err != nil {
		return err
	}

	m := cfg.NewMap(opts.name)
	if opts.mapID != "" {
		id, err := parseMapID(opts)
		if err != nil {
			return err
		}
		if m, err = repo.LoadMap(ctx, id); err != nil {
			return err
		}
	}

	importOpts := importer.DefaultOptions()
	importOpts.MergeTolerance = cfg.ImportMergeTolerance
	report, err := importer.New(importOpts).Import(m, segments)
	if err != nil {
		return err
	}
	if err := repo.SaveMap(ctx, m); err != nil {
		return err
	}

	fmt.Printf("%s: +%d vertices, +%d linedefs, +%d sectors (%d dangling walls)\n",
		m.ID, report.Vertices, report.Linedefs, report.Sectors, report.Dangling)
	return nil
}

func exportMap(ctx context.Context, repo *store.Repository, opts options) error {
	id, err := parseMapID(opts)
	if err != nil {
		return err
	}
	m, err := repo.LoadMap(ctx, id)
	if err != nil {
		return err
	}
	path, err := store.NewFileStorage(opts.out).ExportMap(m)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// ============================================================
// Script commands
// ============================================================

// loadPackage принимает uuid пакета в базе или путь к JSON. Пакет из файла
// сохраняется в базу.
func loadPackage(ctx context.Context, repo *store.Repository, ref string) (code.PackageSource, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return repo.LoadPackage(ctx, id)
	}
	src, err := store.ReadPackageSource(ref)
	if err != nil {
		return code.PackageSource{}, err
	}
	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	if err := repo.SavePackage(ctx, src); err != nil {
		return code.PackageSource{}, err
	}
	return src, nil
}

func runModule(ctx context.Context, cfg *config.Config, repo *store.Repository, opts options) error {
	if opts.pkg == "" {
		return errors.New("-package is required")
	}
	src, err := loadPackage(ctx, repo, opts.pkg)
	if err != nil {
		return err
	}
	pkg, err := code.NewCompiler().CompilePackage(src)
	if err != nil {
		return err
	}
	module, ok := pkg.ModuleByName(opts.module)
	if !ok {
		return fmt.Errorf("module %q not found in package %s", opts.module, pkg.Name)
	}

	sb := cfg.NewSandbox()
	sb.InsertPackage(pkg)
	stack, err := module.Clone().Execute(sb)
	if err != nil {
		return err
	}

	values := make([]string, len(stack))
	for i, v := range stack {
		values[i] = v.Describe()
	}
	fmt.Printf("stack: [%s]\n", strings.Join(values, ", "))

	if dm, ok := sb.DebugModule(module.ID); ok && dm.Errors.Size() > 0 {
		fmt.Printf("runtime errors at %d locations\n", dm.Errors.Size())
	}
	return nil
}
