// Package template parses {{name}} placeholders in prompt templates.
package template

import (
	"regexp"
	"strings"
)

// placeholderPattern matches placeholder references like {{name}}.
// The name is any run of non-brace characters and is NOT trimmed:
// {{color}} and {{ color }} are distinct placeholders.
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// emptyPattern matches placeholders with an empty or whitespace-only name.
var emptyPattern = regexp.MustCompile(`\{\{\s*\}\}`)

// nestedPattern matches a placeholder that opens again before closing.
var nestedPattern = regexp.MustCompile(`\{\{[^}]*\{\{`)

// ExtractVariables extracts placeholder names from a template string.
// For example, "A {{animal}} in a {{environment}}" returns
// ["animal", "environment"]. Names are unique and returned in order of
// first appearance; a placeholder repeated N times contributes one name.
func ExtractVariables(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string

	for _, match := range matches {
		if len(match) > 1 {
			varName := match[1]
			if !seen[varName] {
				seen[varName] = true
				vars = append(vars, varName)
			}
		}
	}

	return vars
}

// HasPlaceholders reports whether the text contains at least one placeholder.
func HasPlaceholders(text string) bool {
	return placeholderPattern.MatchString(text)
}

// Placeholder returns the literal token for a placeholder name, with the
// name preserved exactly as extracted (including internal whitespace).
func Placeholder(name string) string {
	return "{{" + name + "}}"
}

// Validate checks template syntax. It rejects exactly three classes of
// malformed input and accepts everything else:
//   - unbalanced {{ and }} counts
//   - an empty placeholder ({{}} or {{ }})
//   - a placeholder that opens again before the previous one closes
//
// Returns (true, "") for valid templates and (false, reason) otherwise.
func Validate(text string) (bool, string) {
	if strings.Count(text, "{{") != strings.Count(text, "}}") {
		return false, "unbalanced braces"
	}
	if emptyPattern.MatchString(text) {
		return false, "empty variable name"
	}
	if nestedPattern.MatchString(text) {
		return false, "nested variables not allowed"
	}
	return true, ""
}
