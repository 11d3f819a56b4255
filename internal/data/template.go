package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/registry"
)

type templateFile struct {
	Templates []danmaku.Template `yaml:"templates"`
}

// TemplateTable holds danmaku templates in file order.
type TemplateTable struct {
	reg *registry.Registry[*danmaku.Template]
}

// Registry exposes the templates for phase and script lookups.
func (t *TemplateTable) Registry() *registry.Registry[*danmaku.Template] { return t.reg }

// Get returns the named template, or the default one.
func (t *TemplateTable) Get(name string) danmaku.Template {
	if tmpl, ok := t.reg.Get(name); ok {
		return *tmpl
	}
	return danmaku.DefaultTemplate
}

// Count returns the number of loaded templates.
func (t *TemplateTable) Count() int { return t.reg.Len() }

// LoadTemplateTable loads danmaku templates from a YAML file. Shots left
// empty in the file take the default shot.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read danmaku_templates: %w", err)
	}
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse danmaku_templates: %w", err)
	}
	t := &TemplateTable{reg: registry.New[*danmaku.Template]("template")}
	for i := range f.Templates {
		tmpl := f.Templates[i]
		if tmpl.Name == "" {
			return nil, fmt.Errorf("danmaku_templates: entry %d has no name", i)
		}
		if tmpl.Shot == (danmaku.ShotData{}) {
			tmpl.Shot = danmaku.DefaultShot
		}
		if tmpl.Speed == 0 {
			tmpl.Speed = danmaku.DefaultTemplate.Speed
		}
		if err := t.reg.Register(tmpl.Name, &tmpl); err != nil {
			return nil, fmt.Errorf("danmaku_templates: %w", err)
		}
	}
	return t, nil
}
