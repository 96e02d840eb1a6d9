package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// librarySchema constrains library documents before any row is touched.
const librarySchema = `{
  "type": "object",
  "properties": {
    "templates": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "text": {"type": "string", "minLength": 1},
          "favorite": {"type": "boolean"},
          "tags": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["text"]
      }
    },
    "variables": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "values": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name", "values"]
      }
    }
  }
}`

// Library is the interchange document for sharing templates and value
// pools between installs.
type Library struct {
	Templates []LibraryTemplate `json:"templates,omitempty"`
	Variables []LibraryVariable `json:"variables,omitempty"`
}

// LibraryTemplate is one template entry in a library document.
type LibraryTemplate struct {
	Text     string   `json:"text"`
	Favorite bool     `json:"favorite,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// LibraryVariable is one value pool entry in a library document.
type LibraryVariable struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ImportReport summarizes what an import touched.
type ImportReport struct {
	TemplatesImported int `json:"templates_imported"`
	VariablesImported int `json:"variables_imported"`
}

// ImportLibrary validates a library document and upserts its entries.
// Templates merge by text and variables by name, through the same paths as
// interactive saves, so importing the same document twice is safe. Entries
// are applied one at a time; an entry failure stops the import but earlier
// entries stay applied.
func (s *Store) ImportLibrary(data []byte) (*ImportReport, error) {
	if err := validateLibrary(data); err != nil {
		return nil, err
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to decode library: %w", err)
	}

	report := &ImportReport{}
	for _, t := range lib.Templates {
		p, err := s.SaveTemplate(t.Text)
		if err != nil {
			return report, fmt.Errorf("import template: %w", err)
		}
		if t.Favorite {
			if err := s.SetFavorite(p.ID, true); err != nil {
				return report, fmt.Errorf("import template: %w", err)
			}
		}
		if len(t.Tags) > 0 {
			if err := s.SetTags(p.ID, t.Tags); err != nil {
				return report, fmt.Errorf("import template: %w", err)
			}
		}
		report.TemplatesImported++
	}

	for _, v := range lib.Variables {
		if _, err := s.SaveVariable(v.Name, v.Values); err != nil {
			return report, fmt.Errorf("import variable %q: %w", v.Name, err)
		}
		report.VariablesImported++
	}

	s.logger.Info("library imported",
		"templates", report.TemplatesImported, "variables", report.VariablesImported)
	return report, nil
}

// ExportLibrary serializes every template and value pool as an indented
// library document.
func (s *Store) ExportLibrary() ([]byte, error) {
	templates, err := s.ListPrompts(PromptFilter{TemplatesOnly: true})
	if err != nil {
		return nil, err
	}
	variables, err := s.ListVariables()
	if err != nil {
		return nil, err
	}

	lib := Library{}
	for _, t := range templates {
		lib.Templates = append(lib.Templates, LibraryTemplate{
			Text:     t.PromptText,
			Favorite: t.Favorite,
			Tags:     t.TagList(),
		})
	}
	for _, v := range variables {
		lib.Variables = append(lib.Variables, LibraryVariable{
			Name:   v.Name,
			Values: v.Values(),
		})
	}

	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode library: %w", err)
	}
	return data, nil
}

// validateLibrary checks a raw document against the library schema.
func validateLibrary(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("library.json", bytes.NewReader([]byte(librarySchema))); err != nil {
		return fmt.Errorf("failed to load library schema: %w", err)
	}
	schema, err := compiler.Compile("library.json")
	if err != nil {
		return fmt.Errorf("failed to compile library schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("library is not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("library does not match schema: %w", err)
	}
	return nil
}
