package main

import (
	"fmt"
	"path/filepath"

	"github.com/alnah/go-quiz2pdf/internal/config"
	"github.com/alnah/go-quiz2pdf/internal/ziputil"
)

// runZipCmd executes the zip command: archive an earlier run's PDFs without
// regenerating anything.
func runZipCmd(flags *zipFlags, env *Environment) error {
	if flags.quiz == 0 {
		printZipUsage(env.Stderr)
		return fmt.Errorf("%w: --quiz is required", config.ErrConfigNotFound)
	}

	cfg, err := config.LoadQuiz(flags.dirs.configDir, flags.quiz)
	if err != nil {
		return err
	}

	groups := make([]ziputil.GroupDir, 0, len(cfg.Groups))
	for i, g := range cfg.Groups {
		groups = append(groups, ziputil.GroupDir{
			Index: i + 1,
			Path:  filepath.Join(groupOutDir(flags.dirs.outputDir, cfg.QuizID, g), "pdf"),
		})
	}

	name := flags.output
	if name == "" {
		name = fmt.Sprintf("quiz%dpdfs.zip", cfg.QuizID)
	}
	outPath := filepath.Join(flags.dirs.outputDir, name)

	count, err := ziputil.CreateArchive(outPath, groups)
	if err != nil {
		return err
	}

	env.Logger.Info("archive created", "path", outPath, "files", count)
	return nil
}
