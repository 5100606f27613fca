package packaging

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/dfm-setup/internal/bundle"
	"github.com/rshade/dfm-setup/internal/platform"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const readmeFilePerm = 0o644

type readmePlatform struct {
	Name       string
	Executable string
	Present    bool
}

type readmeData struct {
	Platforms []readmePlatform
	Addons    []string
	Scripts   []string
	Readme    string
	Files     string
	Bytes     string
}

// writeReadme renders README.txt describing what was staged.
func writeReadme(staging string) error {
	data, err := collectReadmeData(staging)
	if err != nil {
		return err
	}

	titler := cases.Title(language.English)
	tmpl, err := template.New("README.txt.tmpl").Funcs(template.FuncMap{
		"title": titler.String,
		"rule":  func() string { return strings.Repeat("=", 72) },
	}).ParseFS(templatesFS, "templates/README.txt.tmpl")
	if err != nil {
		return fmt.Errorf("parsing readme template: %w", err)
	}

	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering readme: %w", err)
	}

	if err = os.WriteFile(filepath.Join(staging, bundle.ReadmeName), buf.Bytes(), readmeFilePerm); err != nil {
		return fmt.Errorf("writing readme: %w", err)
	}
	return nil
}

func collectReadmeData(staging string) (readmeData, error) {
	data := readmeData{Readme: bundle.ReadmeName}

	for _, osName := range bundle.PlatformDirs {
		p := platform.Profile{OS: osName}
		_, err := os.Stat(bundle.Binary(staging, p))
		data.Platforms = append(data.Platforms, readmePlatform{
			Name:       string(osName),
			Executable: p.ExecutableName(bundle.ExecutableBase),
			Present:    err == nil,
		})
	}

	addonRoot := filepath.Join(staging, bundle.AddonsDir)
	if hosts, err := os.ReadDir(addonRoot); err == nil {
		for _, host := range hosts {
			if !host.IsDir() {
				continue
			}
			addons, _ := os.ReadDir(filepath.Join(addonRoot, host.Name()))
			for _, a := range addons {
				if a.IsDir() {
					data.Addons = append(data.Addons, host.Name()+"/"+a.Name())
				}
			}
		}
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return data, fmt.Errorf("reading staging tree: %w", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && e.Name() != bundle.ReadmeName {
			data.Scripts = append(data.Scripts, e.Name())
		}
	}
	sort.Strings(data.Scripts)

	var files, size int64
	err = filepath.WalkDir(staging, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		files++
		size += info.Size()
		return nil
	})
	if err != nil {
		return data, fmt.Errorf("measuring staging tree: %w", err)
	}

	printer := message.NewPrinter(language.English)
	data.Files = printer.Sprintf("%d", files)
	data.Bytes = printer.Sprintf("%d", size)
	return data, nil
}
