// Package knowledge loads the planner's startup snapshot: course lists,
// access rules and guideline documents. The snapshot is immutable for
// the life of the process; a missing or broken file degrades to empty
// data so the planner can still produce an answer.
package knowledge

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

const (
	primaryCoursesFile  = "jeju_hotel_halftime_courses.csv"
	fallbackCoursesFile = "jeju_sample_halfday_courses.csv"
	blacklistFile       = "jeju_access_blacklist.csv"
	congestionFile      = "jeju_congestion_rules.csv"

	// Guideline docs are folded into the LLM system prompt, so each one
	// is capped to keep the prompt within budget.
	maxDocChars = 4000
)

// guidelineDocs are looked up in the docs directory, then in ./docs and
// the working directory, mirroring how deployments have historically
// shipped them next to the binary.
var guidelineDocs = []Document{
	{Label: "README", File: "README_jeju_planner_v1.md"},
	{Label: "RULE_ENGINE", File: "jeju_rule_engine_spec.md"},
	{Label: "ARRIVED_HOOK", File: "jeju_arrived_mode_prompt_hook.md"},
}

// POI is one point-of-interest row from a course list.
type POI struct {
	ID    string
	Name  string
	Title string
	Area  string
}

// Key returns the identifier used for blacklist matching: the poi_id
// when present, otherwise the name.
func (p POI) Key() string {
	if k := strings.TrimSpace(p.ID); k != "" {
		return k
	}
	return strings.TrimSpace(p.Name)
}

// DisplayName returns the user-facing name for a course line.
func (p POI) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Title != "" {
		return p.Title
	}
	return "추천 코스"
}

// BlacklistEntry bars a POI from recommendations at a given severity.
type BlacklistEntry struct {
	Key      string
	Severity string
}

// CongestionRule marks an area with an observed congestion level.
type CongestionRule struct {
	Area  string
	Level string
}

// Document is one guideline doc folded into the system prompt.
type Document struct {
	Label string
	File  string
	Text  string
}

// Store is the read-only knowledge snapshot taken at process start.
type Store struct {
	primary    []POI
	fallback   []POI
	blacklist  []BlacklistEntry
	congestion []CongestionRule
	docs       []Document

	logger *logging.Logger
}

// NewStore reads every knowledge file once. Missing files are logged
// and skipped; NewStore never fails.
func NewStore(dataDir, docsDir string, logger *logging.Logger) *Store {
	if logger == nil {
		panic("knowledge: logger is required")
	}

	s := &Store{logger: logger}
	s.primary = s.readCourses(filepath.Join(dataDir, primaryCoursesFile))
	s.fallback = s.readCourses(filepath.Join(dataDir, fallbackCoursesFile))
	s.blacklist = s.readBlacklist(filepath.Join(dataDir, blacklistFile))
	s.congestion = s.readCongestion(filepath.Join(dataDir, congestionFile))
	s.docs = s.readDocs(docsDir)

	logger.Info("knowledge snapshot loaded",
		"courses", len(s.primary),
		"sample_courses", len(s.fallback),
		"blacklist", len(s.blacklist),
		"congestion_rules", len(s.congestion),
		"docs", countLoadedDocs(s.docs),
	)
	return s
}

// TopCourses returns up to n candidate courses, preferring the primary
// list and falling back to the sample list when the primary is empty.
func (s *Store) TopCourses(n int) []POI {
	src := s.primary
	if len(src) == 0 {
		src = s.fallback
	}
	if n > len(src) {
		n = len(src)
	}
	out := make([]POI, n)
	copy(out, src[:n])
	return out
}

// Blacklist returns the access blacklist. Callers must not mutate it.
func (s *Store) Blacklist() []BlacklistEntry {
	return s.blacklist
}

// CongestionRules returns the congestion rules. Callers must not mutate.
func (s *Store) CongestionRules() []CongestionRule {
	return s.congestion
}

// Guidelines renders the loaded docs as labeled sections for the LLM
// system prompt. Docs that failed to load are omitted.
func (s *Store) Guidelines() string {
	var b strings.Builder
	for _, d := range s.docs {
		if d.Text == "" {
			continue
		}
		b.WriteString("[" + d.Label + "]\n")
		b.WriteString(d.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Counts reports how many records each table holds, for diagnostics.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		"courses":          len(s.primary),
		"sample_courses":   len(s.fallback),
		"blacklist":        len(s.blacklist),
		"congestion_rules": len(s.congestion),
		"docs":             countLoadedDocs(s.docs),
	}
}

func countLoadedDocs(docs []Document) int {
	n := 0
	for _, d := range docs {
		if d.Text != "" {
			n++
		}
	}
	return n
}

func (s *Store) readCourses(path string) []POI {
	rows := s.readTable(path)
	out := make([]POI, 0, len(rows))
	for _, r := range rows {
		out = append(out, POI{
			ID:    r["poi_id"],
			Name:  r["name"],
			Title: r["title"],
			Area:  r["area"],
		})
	}
	return out
}

func (s *Store) readBlacklist(path string) []BlacklistEntry {
	rows := s.readTable(path)
	out := make([]BlacklistEntry, 0, len(rows))
	for _, r := range rows {
		key := r["poi_id"]
		if key == "" {
			key = r["name"]
		}
		if key == "" {
			continue
		}
		out = append(out, BlacklistEntry{Key: key, Severity: r["severity"]})
	}
	return out
}

func (s *Store) readCongestion(path string) []CongestionRule {
	rows := s.readTable(path)
	out := make([]CongestionRule, 0, len(rows))
	for _, r := range rows {
		if r["area"] == "" {
			continue
		}
		out = append(out, CongestionRule{Area: r["area"], Level: r["level"]})
	}
	return out
}

// readTable parses a CSV file into lowercase-header keyed records.
// Any failure returns nil after a warning.
func (s *Store) readTable(path string) []map[string]string {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("knowledge table unavailable", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		s.logger.Warn("knowledge table unreadable", "path", path, "error", err)
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	// Excel exports prefix the first header cell with a BOM.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, rec)
	}
	return out
}

func (s *Store) readDocs(docsDir string) []Document {
	docs := make([]Document, len(guidelineDocs))
	copy(docs, guidelineDocs)

	searchPath := []string{docsDir, "docs", "."}
	for i := range docs {
		for _, dir := range searchPath {
			content, err := os.ReadFile(filepath.Join(dir, docs[i].File))
			if err != nil {
				continue
			}
			text := strings.TrimSpace(string(content))
			if len(text) > maxDocChars {
				cut := maxDocChars
				// back up to a rune boundary so Hangul is not split
				for cut > 0 && !utf8.RuneStart(text[cut]) {
					cut--
				}
				text = text[:cut]
			}
			docs[i].Text = text
			break
		}
		if docs[i].Text == "" {
			s.logger.Warn("guideline doc not found", "doc", docs[i].File)
		}
	}
	return docs
}
