package template

import (
	"reflect"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no placeholders",
			text: "A plain prompt with no variables",
			want: nil,
		},
		{
			name: "single placeholder",
			text: "A {{animal}} portrait",
			want: []string{"animal"},
		},
		{
			name: "multiple placeholders in order",
			text: "A {{animal}} in a {{environment}} at {{time}}",
			want: []string{"animal", "environment", "time"},
		},
		{
			name: "repeated placeholder counted once",
			text: "{{animal}} meets {{animal}} in a {{environment}}",
			want: []string{"animal", "environment"},
		},
		{
			name: "whitespace makes names distinct",
			text: "{{color}} and {{ color }}",
			want: []string{"color", " color "},
		},
		{
			name: "adjacent placeholders",
			text: "{{a}}{{b}}",
			want: []string{"a", "b"},
		},
		{
			name: "name with internal spaces",
			text: "{{art style}} painting",
			want: []string{"art style"},
		},
		{
			name: "unclosed placeholder extracts nothing",
			text: "A {{animal",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractVariables(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantValid  bool
		wantReason string
	}{
		{
			name:      "plain text",
			text:      "A cat in a forest",
			wantValid: true,
		},
		{
			name:      "well formed placeholders",
			text:      "A {{animal}} in a {{environment}}",
			wantValid: true,
		},
		{
			name:       "unclosed placeholder",
			text:       "{{foo",
			wantValid:  false,
			wantReason: "unbalanced braces",
		},
		{
			name:       "extra closing braces",
			text:       "foo}} bar",
			wantValid:  false,
			wantReason: "unbalanced braces",
		},
		{
			name:       "empty placeholder",
			text:       "A {{}} prompt",
			wantValid:  false,
			wantReason: "empty variable name",
		},
		{
			name:       "whitespace-only placeholder",
			text:       "A {{ }} prompt",
			wantValid:  false,
			wantReason: "empty variable name",
		},
		{
			name:       "nested opening",
			text:       "{{outer {{inner}} }}",
			wantValid:  false,
			wantReason: "nested variables not allowed",
		},
		{
			name:      "reversed braces accepted",
			text:      "}}backwards{{",
			wantValid: true,
		},
		{
			name:      "single braces accepted",
			text:      "a {lone} brace pair",
			wantValid: true,
		},
		{
			name:      "empty text",
			text:      "",
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := Validate(tt.text)
			if valid != tt.wantValid {
				t.Errorf("Validate(%q) valid = %v, want %v", tt.text, valid, tt.wantValid)
			}
			if reason != tt.wantReason {
				t.Errorf("Validate(%q) reason = %q, want %q", tt.text, reason, tt.wantReason)
			}
		})
	}
}

func TestHasPlaceholders(t *testing.T) {
	if !HasPlaceholders("a {{b}} c") {
		t.Error("expected placeholders in templated text")
	}
	if HasPlaceholders("plain text") {
		t.Error("expected no placeholders in plain text")
	}
	if HasPlaceholders("{{}}") {
		t.Error("empty placeholder should not count")
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Placeholder("animal"); got != "{{animal}}" {
		t.Errorf("Placeholder(animal) = %q", got)
	}
	if got := Placeholder(" color "); got != "{{ color }}" {
		t.Errorf("Placeholder preserves whitespace, got %q", got)
	}
}
