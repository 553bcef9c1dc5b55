package textfilter

import (
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bold markers",
			input:    "**Muito bem**, Ana!",
			expected: "Muito bem, Ana!",
		},
		{
			name:     "double and single quotes",
			input:    `Ele disse "talvez" e 'depois'`,
			expected: "Ele disse talvez e depois",
		},
		{
			name:     "typographic quotes",
			input:    "“Vamos conversar” disse ‘ela’",
			expected: "Vamos conversar disse ela",
		},
		{
			name:     "headings and backticks",
			input:    "## Resumo `final`",
			expected: "Resumo final",
		},
		{
			name:     "surrounding whitespace and space runs",
			input:    "   texto    com   espacos  ",
			expected: "texto com espacos",
		},
		{
			name:     "accents survive",
			input:    "Comunicação Não Violenta",
			expected: "Comunicação Não Violenta",
		},
		{
			name:     "decomposed accents are composed",
			input:    "Comunicac\u0327a\u0303o",
			expected: "Comunicação",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clean(tt.input)
			if result != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCleanProse(t *testing.T) {
	input := "Parabéns, **Ana**!\n\n\nVocê foi bem.\n  \nContinue."
	expected := "Parabéns, Ana!\nVocê foi bem.\nContinue."

	if got := CleanProse(input); got != expected {
		t.Errorf("CleanProse() = %q, expected %q", got, expected)
	}
}

func TestContainsMarkup(t *testing.T) {
	if !ContainsMarkup("*x*") {
		t.Error("expected markup to be detected")
	}
	if ContainsMarkup(Clean(`"x" *y* 'z'`)) {
		t.Error("Clean output should contain no markup")
	}
}
