package api

import (
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects the encoding for CLI data output.
type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// globalOutputFormat is set once from the root --output flag.
var globalOutputFormat = OutputFormatYAML

// SetOutputFormat selects the CLI output encoding. Anything but "json"
// keeps the yaml default.
func SetOutputFormat(format string) {
	if format == string(OutputFormatJSON) {
		globalOutputFormat = OutputFormatJSON
		return
	}
	globalOutputFormat = OutputFormatYAML
}

// Output writes data to stdout in the selected format.
func Output(data any) error {
	return encode(os.Stdout, globalOutputFormat, data)
}

// encode writes data as indented JSON or two-space YAML.
func encode(w io.Writer, format OutputFormat, data any) error {
	if format == OutputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(data)
}
