package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jwebster45206/cnv-trainer/pkg/parser"
	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <batch.json> [count]\n", os.Args[0])
		os.Exit(1)
	}

	want := 0
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "count must be a positive integer, got %q\n", os.Args[2])
			os.Exit(1)
		}
		want = n
	}

	validator := &BatchValidator{}
	if err := validator.validateFile(os.Args[1], want); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scenario batch is valid! (%d scenarios)\n", validator.count)
}

// BatchValidator checks a captured scenario batch, the raw text a model
// returned for a scenario request.
type BatchValidator struct {
	errors []string
	count  int
}

func (v *BatchValidator) validateFile(filename string, want int) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") && !strings.HasSuffix(baseName, ".txt") {
		return fmt.Errorf("batch file must have .json or .txt extension: %s", baseName)
	}
	nameWithoutExt := strings.TrimSuffix(strings.TrimSuffix(baseName, ".json"), ".txt")
	if !isValidBatchFilename(nameWithoutExt) {
		return fmt.Errorf("batch filename '%s' must be lowercase snake_case (e.g., team_batch.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return v.validateText(string(data), want)
}

func (v *BatchValidator) validateText(text string, want int) error {
	v.errors = nil
	v.count = 0

	scenarios, err := parser.ParseScenarios(text, want)
	if err != nil {
		return err
	}
	v.count = len(scenarios)

	seen := make(map[string]int, len(scenarios))
	for i, s := range scenarios {
		v.validateScenario(i, s)
		key := strings.ToLower(s.Situation)
		if prev, ok := seen[key]; ok {
			v.addError(fmt.Sprintf("scenario %d repeats the situation of scenario %d", i+1, prev+1))
		}
		seen[key] = i
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *BatchValidator) validateScenario(i int, s scenario.Scenario) {
	if err := s.Validate(); err != nil {
		v.addError(fmt.Sprintf("scenario %d: %v", i+1, err))
		return
	}

	// Options must be distinguishable, since a selection is mapped back by text
	texts := make(map[string]scenario.OptionCategory, len(scenario.Categories))
	for _, c := range scenario.Categories {
		opt, _ := s.Option(c)
		if other, ok := texts[opt]; ok {
			v.addError(fmt.Sprintf("scenario %d: %s and %s options are identical", i+1, other, c))
		}
		texts[opt] = c
	}
}

func (v *BatchValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidBatchFilename(name string) bool {
	// Allow 'x.' prefix for experimental batches
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
