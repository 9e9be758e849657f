// Package tzdb locates and decodes compiled zone files from an installed
// time zone database.
//
// Zones are searched in the directories a tzdata installation conventionally
// uses, such as /usr/share/zoneinfo, or in a zoneinfo.zip archive as shipped
// with Go toolchains. The ZONEINFO environment variable, if set, takes
// precedence over the built-in search path.
package tzdb

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tzkit/zoneinfo/tz"
	"github.com/tzkit/zoneinfo/tzif"
)

var (
	// ErrZoneNotFound is returned when a zone name is not present in any
	// of the searched locations.
	ErrZoneNotFound = errors.New("tzdb: zone not found")
	// ErrInvalidName is returned for zone names that are empty, absolute,
	// or try to escape the database directory.
	ErrInvalidName = errors.New("tzdb: invalid zone name")
)

// DefaultDB is the default database handle. It searches the conventional
// locations and is used by the top-level functions [ReadZone], [LoadZone]
// and [DecodeAll] in this package.
var DefaultDB = &DB{}

// DB is a handle to an installed time zone database. The zero value is
// ready to use and searches [DefaultDirs].
type DB struct {
	// Dirs is the list of locations to search, in order. An entry ending
	// in ".zip" is read as a zip archive of zone files; any other entry
	// is a directory. If Dirs is nil, DefaultDirs is used.
	Dirs []string
	// Limits is applied to every decode. The zero value decodes without
	// limits; callers dealing with untrusted databases should set
	// tzif.SensibleLimits.
	Limits tzif.Limits
}

// DefaultDirs returns the conventional search path. If the ZONEINFO
// environment variable is set, its value is the sole entry.
func DefaultDirs() []string {
	if env := os.Getenv("ZONEINFO"); env != "" {
		return []string{env}
	}
	return []string{
		"/usr/share/zoneinfo",
		"/usr/share/lib/zoneinfo",
		"/usr/lib/locale/TZ",
		"/etc/zoneinfo",
	}
}

func (db *DB) dirs() []string {
	if db.Dirs != nil {
		return db.Dirs
	}
	return DefaultDirs()
}

// ReadZone returns the raw contents of the named zone file from the
// default database.
//
// ReadZone is a wrapper around DefaultDB.ReadZone.
func ReadZone(name string) ([]byte, error) {
	return DefaultDB.ReadZone(name)
}

// ReadZone returns the raw contents of the named zone file. Names use
// forward slashes regardless of platform, for example "America/New_York".
func (db *DB) ReadZone(name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, dir := range db.dirs() {
		var (
			buf []byte
			err error
		)
		if strings.HasSuffix(dir, ".zip") {
			buf, err = readFromZip(dir, name)
		} else {
			buf, err = os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		}
		if err == nil {
			return buf, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading zone %q: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrZoneNotFound, name)
}

// LoadZone reads and decodes the named zone from the default database.
//
// LoadZone is a wrapper around DefaultDB.LoadZone.
func LoadZone(name string) (*tz.Zone, error) {
	return DefaultDB.LoadZone(name)
}

// LoadZone reads and decodes the named zone.
func (db *DB) LoadZone(name string) (*tz.Zone, error) {
	buf, err := db.ReadZone(name)
	if err != nil {
		return nil, err
	}
	z, err := tz.DecodeLimits(buf, db.Limits)
	if err != nil {
		return nil, fmt.Errorf("zone %q: %w", name, err)
	}
	return z, nil
}

// LoadFile decodes the zone file at the given filesystem path, bypassing
// the search path entirely.
func LoadFile(p string) (*tz.Zone, error) {
	buf, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	z, err := tz.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return z, nil
}

// Zones returns the sorted names of all zones found in the search path.
// Files are identified by their magic, so auxiliary files like zone.tab or
// leapseconds that live alongside the compiled zones are skipped.
func (db *DB) Zones() ([]string, error) {
	seen := make(map[string]bool)
	for _, dir := range db.dirs() {
		var err error
		if strings.HasSuffix(dir, ".zip") {
			err = zipZoneNames(dir, seen)
		} else {
			err = dirZoneNames(dir, seen)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DecodeAll decodes every zone in the default database.
//
// DecodeAll is a wrapper around DefaultDB.DecodeAll.
func DecodeAll(ctx context.Context) (map[string]*tz.Zone, error) {
	return DefaultDB.DecodeAll(ctx)
}

// DecodeAll decodes every zone found in the search path, using one worker
// per CPU. The first decode error aborts the remaining work and is
// returned with the zone name attached.
func (db *DB) DecodeAll(ctx context.Context) (map[string]*tz.Zone, error) {
	names, err := db.Zones()
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		zones = make(map[string]*tz.Zone, len(names))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			z, err := db.LoadZone(name)
			if err != nil {
				return err
			}
			mu.Lock()
			zones[name] = z
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return zones, nil
}

// validName reports whether name is a well-formed zone name: relative,
// slash-separated, and free of "." and ".." components.
func validName(name string) bool {
	if name == "" || name[0] == '/' || strings.ContainsAny(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

var magic = []byte("TZif")

// hasMagic reports whether the first four octets of the file identify it
// as a compiled zone file.
func hasMagic(r io.Reader) bool {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false
	}
	return bytes.Equal(buf[:], magic)
}

func dirZoneNames(dir string, seen map[string]bool) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		ok := hasMagic(f)
		f.Close()
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		seen[filepath.ToSlash(rel)] = true
		return nil
	})
}

func zipZoneNames(name string, seen map[string]bool) error {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		ok := hasMagic(rc)
		rc.Close()
		if ok {
			seen[f.Name] = true
		}
	}
	return nil
}

func readFromZip(archive, name string) ([]byte, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if path.Clean(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fs.ErrNotExist
}
