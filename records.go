package quiz2pdf

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-quiz2pdf/internal/canvascsv"
)

// tagPattern matches a bracketed variant tag anywhere in a column header,
// e.g. "[1.1] What is the max flow?" -> "1.1".
var tagPattern = regexp.MustCompile(`\[(\d+\.\d+)\]`)

// notShownStatus is the Canvas sentinel for a question the student never saw.
const notShownStatus = "not shown"

// ExtractTag returns the bracketed tag from a header cell, if any.
func ExtractTag(header string) (string, bool) {
	m := tagPattern.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// answerColumn is one answer cell location plus its Status companion.
// Status is -1 when the export carries no companion for the column.
type answerColumn struct {
	Answer int
	Status int
}

// variantColumns holds every export column bearing one variant tag, in
// column order. Canvas repeats a tag once per subpart in older exports, so
// Cols[0] is subpart "a", Cols[1] subpart "b", and so on when the group's
// subparts use the tagged-column strategy.
type variantColumns struct {
	Tag     string
	Variant int // 1-based position in the group's tag list
	Cols    []answerColumn
}

// columnMap is the result of resolving an export header against a quiz
// config: identity columns plus, per group, the tagged variant columns and
// any shared prefix-matched subpart columns.
type columnMap struct {
	name  int
	id    int
	sisID int

	// group id -> variant-ordered tagged columns
	variants map[string][]variantColumns

	// group id -> subpart letter -> shared column (prefix strategy)
	shared map[string]map[string]answerColumn
}

// mapColumns scans the export header and resolves every tagged and
// prefix-matched column against the config. A missing name column or a
// group with no tagged columns at all is fatal: nothing downstream can
// recover from an export that does not carry the quiz.
func mapColumns(exp *canvascsv.Export, cfg *QuizConfig) (*columnMap, error) {
	cm := &columnMap{
		name:     exp.Column("name"),
		id:       exp.Column("id"),
		sisID:    exp.Column("sis_id"),
		variants: make(map[string][]variantColumns),
		shared:   make(map[string]map[string]answerColumn),
	}

	if cm.name < 0 {
		return nil, fmt.Errorf("%w: name", ErrMissingColumn)
	}

	// tag -> (group id, 1-based variant index)
	type tagOwner struct {
		groupID string
		variant int
	}
	owners := make(map[string]tagOwner)
	for _, g := range cfg.Groups {
		for i, tag := range g.Tags {
			owners[tag] = tagOwner{groupID: g.ID, variant: i + 1}
		}
	}

	statusOffsets := make(map[string]int, len(cfg.Groups))
	for _, g := range cfg.Groups {
		statusOffsets[g.ID] = g.SubpartFor("a").StatusOffset
	}

	for idx, header := range exp.Header {
		tag, ok := ExtractTag(header)
		if !ok {
			continue
		}
		owner, ok := owners[tag]
		if !ok {
			continue // tagged but not part of this quiz
		}

		col := answerColumn{
			Answer: idx,
			Status: statusColumnAt(exp.Header, idx, statusOffsets[owner.groupID]),
		}

		cols := cm.variants[owner.groupID]
		if i := indexOfTag(cols, tag); i >= 0 {
			cols[i].Cols = append(cols[i].Cols, col)
		} else {
			cols = append(cols, variantColumns{Tag: tag, Variant: owner.variant, Cols: []answerColumn{col}})
		}
		cm.variants[owner.groupID] = cols
	}

	for gi := range cfg.Groups {
		g := &cfg.Groups[gi]
		if len(cm.variants[g.ID]) == 0 {
			return nil, fmt.Errorf("%w: group %q", ErrNoTaggedCols, g.ID)
		}
		sortByVariant(cm.variants[g.ID])

		for letter, src := range g.Subparts {
			if src.Source != SourcePrefix {
				continue
			}
			idx := prefixColumn(exp.Header, src.Prefix)
			if idx < 0 {
				return nil, fmt.Errorf("%w: group %q subpart %q: no header starts with %q",
					ErrMissingColumn, g.ID, letter, src.Prefix)
			}
			if cm.shared[g.ID] == nil {
				cm.shared[g.ID] = make(map[string]answerColumn)
			}
			offset := src.StatusOffset
			if offset == 0 {
				offset = defaultStatusOffset
			}
			cm.shared[g.ID][letter] = answerColumn{
				Answer: idx,
				Status: statusColumnAt(exp.Header, idx, offset),
			}
		}
	}

	return cm, nil
}

// statusColumnAt returns idx+offset when that header cell looks like a
// Status companion, else -1. Canvas lays question columns out as
// (answer, earned points, status).
func statusColumnAt(header []string, idx, offset int) int {
	at := idx + offset
	if at >= len(header) {
		return -1
	}
	if !strings.Contains(header[at], "Status") {
		return -1
	}
	return at
}

func indexOfTag(cols []variantColumns, tag string) int {
	for i := range cols {
		if cols[i].Tag == tag {
			return i
		}
	}
	return -1
}

// sortByVariant orders tagged columns by their 1-based variant index.
// Insertion sort: groups have at most a dozen variants.
func sortByVariant(cols []variantColumns) {
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j-1].Variant > cols[j].Variant; j-- {
			cols[j-1], cols[j] = cols[j], cols[j-1]
		}
	}
}

// prefixColumn returns the first header cell starting with prefix,
// case-insensitively, or -1.
func prefixColumn(header []string, prefix string) int {
	for i, h := range header {
		if len(h) >= len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return i
		}
	}
	return -1
}

// shown reports whether a Status cell value means the student saw the
// question. An absent or blank status is indeterminate and treated as not
// shown.
func shown(status string) bool {
	s := strings.TrimSpace(status)
	return s != "" && !strings.EqualFold(s, notShownStatus)
}

// BuildRecords resolves every export row against the quiz config and
// returns one immutable record per student. Extraction gaps (undetermined
// variant, missing subpart column) never fail the run: they fall back per
// policy, are logged, and are carried on the record's Warnings for the run
// summary.
func BuildRecords(exp *canvascsv.Export, cfg *QuizConfig, logger *slog.Logger) ([]StudentRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cm, err := mapColumns(exp, cfg)
	if err != nil {
		return nil, err
	}

	records := make([]StudentRecord, 0, len(exp.Rows))
	for _, row := range exp.Rows {
		rec := StudentRecord{
			Name:   strings.TrimSpace(canvascsv.Cell(row, cm.name)),
			ID:     strings.TrimSpace(canvascsv.Cell(row, cm.id)),
			SISID:  strings.TrimSpace(canvascsv.Cell(row, cm.sisID)),
			Groups: make(map[string]GroupResult, len(cfg.Groups)),
		}
		if rec.Name == "" {
			continue // trailing blank row
		}

		for gi := range cfg.Groups {
			g := &cfg.Groups[gi]
			result, warnings := buildGroupResult(row, cm, g)
			rec.Groups[g.ID] = result
			for _, w := range warnings {
				logger.Warn("extraction gap", "student", rec.Name, "group", g.ID, "detail", w)
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s: %s", g.ID, w))
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// buildGroupResult determines the variant one student received for one
// group and extracts their subpart answers.
func buildGroupResult(row []string, cm *columnMap, g *QuestionGroup) (GroupResult, []string) {
	var warnings []string

	cols := cm.variants[g.ID]

	// Variant detection: first tagged column whose status says the student
	// saw it. Detection uses the subpart-a column; shared subpart columns
	// carry no variant information.
	var chosen *variantColumns
	for i := range cols {
		first := cols[i].Cols[0]
		if first.Status >= 0 && shown(canvascsv.Cell(row, first.Status)) {
			chosen = &cols[i]
			break
		}
	}
	if chosen == nil {
		chosen = &cols[0]
		warnings = append(warnings, "variant undetermined, defaulting to "+chosen.Tag)
	}

	result := GroupResult{
		Tag:     chosen.Tag,
		Variant: chosen.Variant,
		Answers: make(map[string]string, g.NumParts),
	}

	for i := 0; i < g.NumParts; i++ {
		letter := SubpartLetter(i)
		src := g.SubpartFor(letter)

		var col answerColumn
		switch src.Source {
		case SourcePrefix:
			shared, ok := cm.shared[g.ID][letter]
			if !ok {
				warnings = append(warnings, "subpart "+letter+": no shared column resolved")
				continue
			}
			col = shared
		default:
			// Tagged strategy: the Nth occurrence of the variant's tag is
			// subpart N.
			if i >= len(chosen.Cols) {
				warnings = append(warnings, "subpart "+letter+": variant "+strconv.Itoa(chosen.Variant)+" has no tagged column")
				continue
			}
			col = chosen.Cols[i]
		}

		// Omit subparts the student never saw; a blank cell with a shown
		// status is an explicit empty answer, rendered as the no-answer
		// marker downstream.
		if col.Status >= 0 && !shown(canvascsv.Cell(row, col.Status)) {
			continue
		}
		result.Answers[letter] = canvascsv.Cell(row, col.Answer)
	}

	return result, warnings
}
