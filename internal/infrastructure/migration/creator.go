package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// VersionWidth is the zero-padded width of sequential migration versions
const VersionWidth = 6

var (
	migrationFileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)
	nonSlugRe       = regexp.MustCompile(`[^a-z0-9]+`)
)

var migrationTemplate = template.Must(template.New("migration").Parse(`-- {{.Version}}_{{.Name}} ({{.Direction}})
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// Migration is one versioned up/down pair
type Migration struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Creator writes new migration pairs into a directory
type Creator struct {
	dir string
	now func() time.Time
}

// NewCreator returns a Creator for dir
func NewCreator(dir string) *Creator {
	return &Creator{dir: dir, now: time.Now}
}

// Create writes an empty up/down pair numbered after the highest existing version
func (c *Creator) Create(name, description string) (*Migration, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(c.dir)
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if n := len(existing); n > 0 {
		version = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", VersionWidth, version, slug)
	m := &Migration{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(c.dir, base+".up.sql"),
		DownPath: filepath.Join(c.dir, base+".down.sql"),
	}

	header := struct {
		Version     string
		Name        string
		Direction   string
		Created     string
		Description string
	}{
		Version:     fmt.Sprintf("%0*d", VersionWidth, version),
		Name:        slug,
		Created:     c.now().UTC().Format(time.RFC3339),
		Description: strings.TrimSpace(description),
	}

	header.Direction = "up"
	if err := writeTemplate(m.UpPath, header); err != nil {
		return nil, err
	}
	header.Direction = "down"
	if err := writeTemplate(m.DownPath, header); err != nil {
		_ = os.Remove(m.UpPath)
		return nil, err
	}
	return m, nil
}

func writeTemplate(path string, data any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := migrationTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Slugify lower-cases name and joins its alphanumeric runs with underscores
func Slugify(name string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}

// List returns the migration pairs of dir ordered by version. A missing
// directory yields no migrations.
func List(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 0)
		if err != nil {
			continue
		}
		version := uint(v)
		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: match[2]}
			byVersion[version] = m
		}
		path := filepath.Join(dir, entry.Name())
		if match[3] == "up" {
			m.UpPath = path
		} else {
			m.DownPath = path
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}
