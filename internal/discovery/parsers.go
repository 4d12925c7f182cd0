package discovery

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gocql/gocql"

	"piazza-qa/internal/store"
)

// Parsers are small scripts that know how to list a course's published
// lectures. They live in Cassandra so courses can be added without a
// redeploy; each cycle mirrors them to disk before running them.

// Sync writes the current parser set to dir, removes parsers deleted
// from Cassandra, and registers the course each parser declares in its
// comment header.
func Sync(session *gocql.Session, dir string) error {
	parsers, err := store.FetchParsers(session)
	if err != nil {
		return fmt.Errorf("fetching parsers: %w", err)
	}

	if err := cleanupDeleted(parsers, dir); err != nil {
		log.Printf("Error cleaning up deleted parsers: %v", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating parsers directory: %w", err)
	}

	for _, parser := range parsers {
		filename := filepath.Join(dir, parser.ParserName+".py")
		if err := os.WriteFile(filename, []byte(parser.CodeText), 0644); err != nil {
			log.Printf("Error writing parser %s: %v", parser.ParserName, err)
			continue
		}

		cfg, err := ExtractCourseConfig(parser.CodeText)
		if err != nil {
			log.Printf("Parser %s has no course header: %v", parser.ParserName, err)
			continue
		}
		if err := store.UpsertCourseConfig(session, cfg); err != nil {
			log.Printf("Error registering course for %s: %v", parser.ParserName, err)
		}
	}

	return nil
}

// cleanupDeleted removes parser files no longer present in Cassandra.
func cleanupDeleted(parsers []store.Parser, dir string) error {
	valid := make(map[string]bool)
	for _, p := range parsers {
		valid[p.ParserName] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading parsers directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".py") {
			continue
		}
		if !valid[strings.TrimSuffix(name, ".py")] {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				log.Printf("Error deleting parser %s: %v", name, err)
			} else {
				log.Printf("  Deleted %s (no longer in Cassandra)", name)
			}
		}
	}

	return nil
}

// ListParsers returns the parser names currently mirrored in dir.
func ListParsers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading parsers directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".py") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".py"))
		}
	}
	return names, nil
}

// ExtractCourseConfig reads the course declaration from a parser's
// comment header.
func ExtractCourseConfig(codeText string) (*store.CourseConfig, error) {
	extract := func(pattern string) string {
		re := regexp.MustCompile(pattern)
		match := re.FindStringSubmatch(codeText)
		if len(match) > 1 {
			return strings.TrimSpace(match[1])
		}
		return ""
	}

	cfg := &store.CourseConfig{
		NetworkID: extract(`#\s*PIAZZA_NETWORK_ID:\s*(.+)`),
		Course: store.Course{
			ClassName: extract(`#\s*CLASS_NAME:\s*(.+)`),
			Professor: extract(`#\s*PROFESSOR:\s*(.+)`),
			Semester:  extract(`#\s*SEMESTER:\s*(.+)`),
		},
		Email:    extract(`#\s*PIAZZA_EMAIL:\s*(.+)`),
		Password: extract(`#\s*PIAZZA_PASSWORD:\s*(.+)`),
	}

	if cfg.NetworkID == "" || cfg.Course.ClassName == "" || cfg.Course.Professor == "" || cfg.Course.Semester == "" {
		return nil, fmt.Errorf("missing required course fields")
	}

	return cfg, nil
}
