package validation

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds form definitions keyed by form identity.
type Catalog struct {
	forms   map[string]Definition
	sources map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{forms: map[string]Definition{}, sources: map[string]string{}}
}

// LoadFS walks fsys and parses every JSON/YAML definition file. Files declare
// forms under a top-level "forms" key:
//
//	forms:
//	  signup:
//	    rules:
//	      email: [required, email]
//	      password: required,min=8
//	    messages:
//	      email.required: We need your email.
//
// A nil fsys yields an empty catalog.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := NewCatalog()
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("validation: read %s: %w", path, err)
		}
		forms, err := ParseDefinitions(data, path)
		if err != nil {
			return err
		}
		for _, identity := range sortedIdentities(forms) {
			if err := catalog.add(identity, forms[identity], path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// ParseDefinitions decodes one definition document. JSON is tried first and
// YAML second; source is only used in error messages.
func ParseDefinitions(data []byte, source string) (map[string]Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("validation: file %s is empty", source)
	}

	var doc definitionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = definitionFile{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("validation: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}

	out := make(map[string]Definition, len(doc.Forms))
	for rawID, def := range doc.Forms {
		identity := strings.TrimSpace(rawID)
		if identity == "" {
			return nil, fmt.Errorf("validation: file %s defines an empty form identity", source)
		}
		def.Identity = identity
		def.Rules = def.Rules.Compact()
		out[identity] = def
	}
	return out, nil
}

type definitionFile struct {
	Forms map[string]Definition `json:"forms" yaml:"forms"`
}

// Add registers def under identity.
func (c *Catalog) Add(identity string, def Definition) error {
	return c.add(identity, def, "")
}

func (c *Catalog) add(identity string, def Definition, source string) error {
	if c.forms == nil {
		c.forms = map[string]Definition{}
		c.sources = map[string]string{}
	}
	if _, exists := c.forms[identity]; exists {
		if prev := c.sources[identity]; prev != "" || source != "" {
			return fmt.Errorf("validation: duplicate form %q (%s, %s)", identity, prev, source)
		}
		return fmt.Errorf("validation: duplicate form %q", identity)
	}
	def.Identity = identity
	def.Rules = def.Rules.Clone()
	def.Messages = def.Messages.Clone()
	c.forms[identity] = def
	c.sources[identity] = source
	return nil
}

// Lookup returns the definition registered for identity.
func (c *Catalog) Lookup(identity string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	def, ok := c.forms[identity]
	if !ok {
		return Definition{}, false
	}
	def.Rules = def.Rules.Clone()
	def.Messages = def.Messages.Clone()
	return def, true
}

// Source reports the file identity was loaded from, if any.
func (c *Catalog) Source(identity string) string {
	if c == nil {
		return ""
	}
	return c.sources[identity]
}

// Identities lists every registered form, sorted.
func (c *Catalog) Identities() []string {
	if c == nil {
		return nil
	}
	return sortedIdentities(c.forms)
}

// Len reports how many forms are registered.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.forms)
}

func sortedIdentities(forms map[string]Definition) []string {
	ids := make([]string, 0, len(forms))
	for id := range forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
