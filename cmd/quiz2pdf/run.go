package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	quiz2pdf "github.com/alnah/go-quiz2pdf"
	"github.com/alnah/go-quiz2pdf/internal/canvascsv"
	"github.com/alnah/go-quiz2pdf/internal/config"
	"github.com/alnah/go-quiz2pdf/internal/fileutil"
	"github.com/alnah/go-quiz2pdf/internal/ziputil"
)

// Sentinel errors for CLI operations.
var (
	ErrCSVNotFound        = errors.New("CSV export not found")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrNoStudentMatch     = errors.New("no student matches filter")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// renderJob is one (student, question group) document to produce.
type renderJob struct {
	rec      quiz2pdf.StudentRecord
	group    quiz2pdf.QuestionGroup
	template string
	htmlPath string
	pdfPath  string
}

// renderOutcome records the result of one job for the run summary.
type renderOutcome struct {
	job      renderJob
	partial  bool
	err      error
	duration time.Duration
}

// runQuizCmd executes the run command.
func runQuizCmd(ctx context.Context, flags *runFlags, env *Environment) error {
	if flags.workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, flags.workers)
	}
	if flags.quiz == 0 {
		printRunUsage(env.Stderr)
		return fmt.Errorf("%w: --quiz is required", config.ErrConfigNotFound)
	}
	if flags.csv == "" {
		printRunUsage(env.Stderr)
		return fmt.Errorf("%w: --csv is required", ErrCSVNotFound)
	}
	if !fileutil.FileExists(flags.csv) {
		return fmt.Errorf("%w: %s", ErrCSVNotFound, flags.csv)
	}

	cfg, err := config.LoadQuiz(flags.dirs.configDir, flags.quiz)
	if err != nil {
		return err
	}

	opts, err := serviceOptions(flags.timeout)
	if err != nil {
		return err
	}

	env.Logger.Info("starting run", "quiz", cfg.QuizID, "name", cfg.Name, "groups", len(cfg.Groups))

	templates, err := loadOrBuildTemplates(ctx, cfg, flags, env, opts)
	if err != nil {
		return err
	}

	export, err := canvascsv.Load(flags.csv)
	if err != nil {
		return err
	}

	records, err := quiz2pdf.BuildRecords(export, cfg, env.Logger)
	if err != nil {
		return err
	}
	env.Logger.Info("parsed export", "csv", filepath.Base(flags.csv), "students", len(records))

	records, err = filterRecords(records, flags.student, flags.limit)
	if err != nil {
		return err
	}
	if flags.limit > 0 {
		env.Logger.Info("limited student set", "students", len(records))
	}

	jobs, err := prepareJobs(cfg, records, templates, flags)
	if err != nil {
		return err
	}

	outcomes := renderAll(ctx, jobs, flags, opts, env)

	printSummary(env, cfg, records, outcomes)

	if !flags.noZip && !flags.htmlOnly {
		if err := archiveRun(cfg, flags, env); err != nil {
			return err
		}
	}

	for _, o := range outcomes {
		if o.err != nil {
			return fmt.Errorf("run finished with failures: %w", o.err)
		}
	}
	return nil
}

// serviceOptions translates the --timeout flag into service options.
func serviceOptions(timeout string) ([]quiz2pdf.Option, error) {
	if timeout == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("invalid --timeout %q: must be a positive duration", timeout)
	}
	return []quiz2pdf.Option{quiz2pdf.WithTimeout(d)}, nil
}

// templatePath is the persisted location of one group's template, keyed by
// quiz id and group id.
func templatePath(templatesDir string, quizID int, groupID string) string {
	return filepath.Join(templatesDir, fmt.Sprintf("quiz%d", quizID), groupID+"_template.html")
}

// loadOrBuildTemplates returns one assembled template per group, reading
// persisted files when present and building from the rubric otherwise.
// --regenerate forces a rebuild of every template.
func loadOrBuildTemplates(ctx context.Context, cfg *quiz2pdf.QuizConfig, flags *runFlags, env *Environment, opts []quiz2pdf.Option) (map[string]string, error) {
	templates := make(map[string]string, len(cfg.Groups))

	// Work out which groups actually need a build before touching the
	// rubric or pandoc.
	var missing []quiz2pdf.QuestionGroup
	for _, g := range cfg.Groups {
		path := templatePath(flags.dirs.templatesDir, cfg.QuizID, g.ID)
		if !flags.regenerate && fileutil.FileExists(path) {
			data, err := os.ReadFile(path) // #nosec G304 -- path derived from config
			if err != nil {
				return nil, fmt.Errorf("reading template %s: %w", path, err)
			}
			if err := quiz2pdf.ValidateTemplate(string(data), g); err != nil {
				env.Logger.Warn("cached template invalid, rebuilding", "group", g.ID, "error", err)
				missing = append(missing, g)
				continue
			}
			templates[g.ID] = string(data)
			env.Logger.Debug("loaded cached template", "group", g.ID, "path", path)
			continue
		}
		missing = append(missing, g)
	}

	if len(missing) == 0 {
		return templates, nil
	}

	rubricPath, err := config.ResolveRubric(flags.dirs.rubricsDir, cfg)
	if err != nil {
		return nil, err
	}
	rubric, err := os.ReadFile(rubricPath) // #nosec G304 -- resolved from config
	if err != nil {
		return nil, fmt.Errorf("reading rubric %s: %w", rubricPath, err)
	}
	env.Logger.Info("building templates", "rubric", filepath.Base(rubricPath), "groups", len(missing))

	svc := quiz2pdf.New(opts...)
	defer svc.Close()

	for _, g := range missing {
		tmpl, err := svc.BuildTemplate(ctx, string(rubric), g)
		if err != nil {
			return nil, fmt.Errorf("building template for group %s: %w", g.ID, err)
		}

		path := templatePath(flags.dirs.templatesDir, cfg.QuizID, g.ID)
		if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		if err := os.WriteFile(path, []byte(tmpl), filePermissions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		templates[g.ID] = tmpl
		env.Logger.Info("template built", "group", g.ID, "path", path)
	}

	return templates, nil
}

// filterRecords applies --student and --limit pre-filters.
func filterRecords(records []quiz2pdf.StudentRecord, student string, limit int) ([]quiz2pdf.StudentRecord, error) {
	if student != "" {
		needle := strings.ToLower(student)
		var matched []quiz2pdf.StudentRecord
		for _, r := range records {
			if strings.Contains(strings.ToLower(r.Name), needle) {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoStudentMatch, student)
		}
		records = matched
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// groupOutDir is one group's output directory, e.g. output/quiz5/q1_max_flow.
func groupOutDir(outputDir string, quizID int, g quiz2pdf.QuestionGroup) string {
	name := strings.ToLower(strings.ReplaceAll(g.Name, " ", "_"))
	if name == "" {
		return filepath.Join(outputDir, fmt.Sprintf("quiz%d", quizID), g.ID)
	}
	return filepath.Join(outputDir, fmt.Sprintf("quiz%d", quizID), g.ID+"_"+name)
}

// prepareJobs lays out output directories, copies template images next to
// the HTML output so relative references resolve, and builds the job list.
// Output names are deterministic and collision-free:
// <group>v<variant>_<abbr>_<NameSlug>.
func prepareJobs(cfg *quiz2pdf.QuizConfig, records []quiz2pdf.StudentRecord, templates map[string]string, flags *runFlags) ([]renderJob, error) {
	abbr := cfg.AbbrOrDefault()
	templateImages := filepath.Join(flags.dirs.templatesDir, fmt.Sprintf("quiz%d", cfg.QuizID), "images")

	var jobs []renderJob
	for _, g := range cfg.Groups {
		base := groupOutDir(flags.dirs.outputDir, cfg.QuizID, g)
		htmlDir := filepath.Join(base, "html")
		pdfDir := filepath.Join(base, "pdf")
		for _, dir := range []string{htmlDir, pdfDir} {
			if err := os.MkdirAll(dir, dirPermissions); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
			}
		}
		if err := copyImages(templateImages, filepath.Join(htmlDir, "images")); err != nil {
			return nil, err
		}

		for _, rec := range records {
			result := rec.Groups[g.ID]
			name := fmt.Sprintf("%sv%d_%s_%s", g.ID, result.Variant, abbr, fileutil.Slug(rec.Name))
			jobs = append(jobs, renderJob{
				rec:      rec,
				group:    g,
				template: templates[g.ID],
				htmlPath: filepath.Join(htmlDir, name+".html"),
				pdfPath:  filepath.Join(pdfDir, name+".pdf"),
			})
		}
	}
	return jobs, nil
}

// copyImages mirrors the template image directory into the output HTML
// directory. Missing source is fine: not every quiz has figures.
func copyImages(srcDir, dstDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", srcDir, err)
	}

	if err := os.MkdirAll(dstDir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(srcDir, e.Name()), filepath.Join(dstDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- path comes from a directory scan
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions) // #nosec G304
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return out.Close()
}

// renderAll binds and renders every job through a bounded worker pool.
// Failures are best-effort-continue: a failed job is recorded and the rest
// keep going.
func renderAll(ctx context.Context, jobs []renderJob, flags *runFlags, opts []quiz2pdf.Option, env *Environment) []renderOutcome {
	poolSize := quiz2pdf.ResolvePoolSize(flags.workers)
	if flags.htmlOnly {
		poolSize = 1 // no browsers involved
	}
	env.Logger.Debug("render pool", "workers", poolSize)

	pool := quiz2pdf.NewServicePool(poolSize, opts...)
	defer pool.Close()

	jobCh := make(chan renderJob)
	outCh := make(chan renderOutcome)

	var wg sync.WaitGroup
	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				outCh <- runJob(ctx, job, flags.htmlOnly, pool)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			jobCh <- job
		}
		close(jobCh)
		wg.Wait()
		close(outCh)
	}()

	outcomes := make([]renderOutcome, 0, len(jobs))
	for o := range outCh {
		if o.err != nil {
			env.Logger.Error("job failed", "student", o.job.rec.Name, "group", o.job.group.ID, "error", o.err)
		} else {
			env.Logger.Debug("job done", "student", o.job.rec.Name, "group", o.job.group.ID,
				"partial", o.partial, "duration", o.duration.Round(time.Millisecond))
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// runJob produces one document: bind answers, write HTML, and unless
// --html-only, rasterize through a pooled service.
func runJob(ctx context.Context, job renderJob, htmlOnly bool, pool *quiz2pdf.ServicePool) renderOutcome {
	start := time.Now()
	outcome := renderOutcome{job: job}

	bound, err := quiz2pdf.BindAnswers(job.template, job.rec, job.group)
	if err != nil {
		outcome.err = err
		return outcome
	}

	if err := os.WriteFile(job.htmlPath, []byte(bound), filePermissions); err != nil {
		outcome.err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return outcome
	}

	if htmlOnly {
		outcome.duration = time.Since(start)
		return outcome
	}

	svc := pool.Acquire()
	result, err := svc.RenderFile(ctx, job.htmlPath)
	pool.Release(svc)
	if err != nil {
		outcome.err = err
		return outcome
	}

	if err := os.WriteFile(job.pdfPath, result.PDF, filePermissions); err != nil {
		outcome.err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return outcome
	}

	outcome.partial = result.PartialRender
	outcome.duration = time.Since(start)
	return outcome
}

// printSummary reports expected vs produced documents per group, partial
// renders, extraction warnings, and per-failure detail.
func printSummary(env *Environment, cfg *quiz2pdf.QuizConfig, records []quiz2pdf.StudentRecord, outcomes []renderOutcome) {
	type tally struct{ expected, produced, partial, failed int }
	tallies := make(map[string]*tally, len(cfg.Groups))
	for _, g := range cfg.Groups {
		tallies[g.ID] = &tally{expected: len(records)}
	}

	var failures []renderOutcome
	for _, o := range outcomes {
		tl := tallies[o.job.group.ID]
		if o.err != nil {
			tl.failed++
			failures = append(failures, o)
			continue
		}
		tl.produced++
		if o.partial {
			tl.partial++
		}
	}

	rows := make([][]string, 0, len(cfg.Groups))
	for _, g := range cfg.Groups {
		tl := tallies[g.ID]
		rows = append(rows, []string{
			g.ID,
			g.Name,
			strconv.Itoa(tl.expected),
			strconv.Itoa(tl.produced),
			strconv.Itoa(tl.partial),
			strconv.Itoa(tl.failed),
		})
	}

	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, renderTable(
		[]string{"Group", "Name", "Expected", "Produced", "Partial", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))

	var warned int
	for _, rec := range records {
		warned += len(rec.Warnings)
	}
	if warned > 0 {
		fmt.Fprintf(env.Stdout, "\nExtraction warnings (%d):\n", warned)
		for _, rec := range records {
			for _, w := range rec.Warnings {
				fmt.Fprintf(env.Stdout, "  %s: %s\n", rec.Name, w)
			}
		}
	}

	if len(failures) > 0 {
		fmt.Fprintf(env.Stdout, "\nFailed documents (%d):\n", len(failures))
		for _, o := range failures {
			fmt.Fprintf(env.Stdout, "  %s / %s: %v\n", o.job.rec.Name, o.job.group.ID, o.err)
			fmt.Fprintf(env.Stdout, "    re-run: quiz2pdf run --quiz %d --csv \"<export>\" --student %q\n",
				cfg.QuizID, o.job.rec.Name)
		}
	}
}

// archiveRun zips the quiz's PDF output, one folder per question group.
func archiveRun(cfg *quiz2pdf.QuizConfig, flags *runFlags, env *Environment) error {
	groups := make([]ziputil.GroupDir, 0, len(cfg.Groups))
	for i, g := range cfg.Groups {
		groups = append(groups, ziputil.GroupDir{
			Index: i + 1,
			Path:  filepath.Join(groupOutDir(flags.dirs.outputDir, cfg.QuizID, g), "pdf"),
		})
	}

	outPath := filepath.Join(flags.dirs.outputDir, fmt.Sprintf("quiz%dpdfs.zip", cfg.QuizID))
	count, err := ziputil.CreateArchive(outPath, groups)
	if err != nil {
		if errors.Is(err, ziputil.ErrNoPDFs) {
			env.Logger.Warn("no PDFs to archive")
			return nil
		}
		return err
	}

	env.Logger.Info("archive created", "path", outPath, "files", count)
	return nil
}
