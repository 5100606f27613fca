package packaging

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultVolumeLabel is the image volume label.
const DefaultVolumeLabel = "FORESTER"

// Sources are the three independent artifact groups.
type Sources struct {
	Binaries string `yaml:"binaries"`
	Addons   string `yaml:"addons"`
	Scripts  string `yaml:"scripts"`
}

// Manifest describes one packaging run.
type Manifest struct {
	StagingDir  string  `yaml:"staging_dir"`
	Output      string  `yaml:"output"`
	VolumeLabel string  `yaml:"volume_label"`
	Sources     Sources `yaml:"sources"`
}

// DefaultManifest returns the conventional layout relative to root.
func DefaultManifest(root string) Manifest {
	return Manifest{
		StagingDir:  filepath.Join(root, "build", "staging"),
		Output:      filepath.Join(root, "build", "forester-installer.iso"),
		VolumeLabel: DefaultVolumeLabel,
		Sources: Sources{
			Binaries: filepath.Join(root, "dist", "forester"),
			Addons:   filepath.Join(root, "addons"),
			Scripts:  filepath.Join(root, "scripts"),
		},
	}
}

// LoadManifest reads a YAML manifest. Relative paths are resolved against
// the manifest's directory and unset fields keep their defaults.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err = yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	root := filepath.Dir(path)
	m.StagingDir = resolveAgainst(root, m.StagingDir)
	m.Output = resolveAgainst(root, m.Output)
	m.Sources.Binaries = resolveAgainst(root, m.Sources.Binaries)
	m.Sources.Addons = resolveAgainst(root, m.Sources.Addons)
	m.Sources.Scripts = resolveAgainst(root, m.Sources.Scripts)

	return m.WithDefaults(DefaultManifest(root)), nil
}

// WithDefaults fills empty fields of m from def.
func (m Manifest) WithDefaults(def Manifest) Manifest {
	m.StagingDir = firstNonEmpty(m.StagingDir, def.StagingDir)
	m.Output = firstNonEmpty(m.Output, def.Output)
	m.VolumeLabel = firstNonEmpty(m.VolumeLabel, def.VolumeLabel)
	m.Sources.Binaries = firstNonEmpty(m.Sources.Binaries, def.Sources.Binaries)
	m.Sources.Addons = firstNonEmpty(m.Sources.Addons, def.Sources.Addons)
	m.Sources.Scripts = firstNonEmpty(m.Sources.Scripts, def.Sources.Scripts)
	return m
}

func resolveAgainst(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
