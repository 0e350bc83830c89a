// Package config loads and resolves quiz configuration files.
//
// A quiz is configured by one YAML file per quiz id, conventionally
// configs/quiz<N>.yaml, holding the question-group definitions the pipeline
// needs: variant tags, rubric line ranges, subpart counts, page-break
// policy, and optional figure image maps.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	quiz2pdf "github.com/alnah/go-quiz2pdf"
	"github.com/alnah/go-quiz2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrRubricNotFound = errors.New("rubric file not found")
)

// rubric filename suffixes, tried in order: the solutions rubric carries the
// reference answers and is preferred when both exist.
var rubricSuffixes = []string{"_solutions_rubric.tex", "_rubric.tex"}

// LoadQuiz loads and validates the config for one quiz id from dir.
// Tries quiz<N>.yaml then quiz<N>.yml.
func LoadQuiz(dir string, quizID int) (*quiz2pdf.QuizConfig, error) {
	var tried []string
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, fmt.Sprintf("quiz%d%s", quizID, ext))
		if fileExists(path) {
			return Load(path)
		}
		tried = append(tried, path)
	}
	return nil, fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// Load loads and validates a quiz config from an explicit path.
func Load(path string) (*quiz2pdf.QuizConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg quiz2pdf.QuizConfig
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ResolveRubric returns the path of the quiz's LaTeX rubric source.
// An explicit rubric_file in the config wins; otherwise the rubrics
// directory is searched for *_solutions_rubric.tex, then *_rubric.tex.
// Multiple candidates for one suffix resolve to the lexicographically first,
// which keeps discovery deterministic.
func ResolveRubric(rubricsDir string, cfg *quiz2pdf.QuizConfig) (string, error) {
	if cfg.RubricFile != "" {
		path := cfg.RubricFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(rubricsDir, path)
		}
		if !fileExists(path) {
			return "", fmt.Errorf("%w: %s", ErrRubricNotFound, path)
		}
		return path, nil
	}

	for _, suffix := range rubricSuffixes {
		matches, err := filepath.Glob(filepath.Join(rubricsDir, "*"+suffix))
		if err != nil {
			return "", fmt.Errorf("searching rubrics: %w", err)
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], nil
		}
	}

	return "", fmt.Errorf("%w: no *%s or *%s under %s",
		ErrRubricNotFound, rubricSuffixes[0], rubricSuffixes[1], rubricsDir)
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
