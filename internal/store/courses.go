package store

import (
	"fmt"

	"github.com/gocql/gocql"
)

// FetchCourseConfigs retrieves every monitored course from piazza_config.
func FetchCourseConfigs(session *gocql.Session) ([]CourseConfig, error) {
	query := `SELECT network_id, class_name, professor, semester, email, password, created_at FROM piazza_config`

	iter := session.Query(query).Iter()
	defer iter.Close()

	var configs []CourseConfig
	var c CourseConfig
	for iter.Scan(&c.NetworkID, &c.Course.ClassName, &c.Course.Professor, &c.Course.Semester,
		&c.Email, &c.Password, &c.CreatedAt) {
		configs = append(configs, c)
		c = CourseConfig{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("error fetching course configs: %w", err)
	}

	return configs, nil
}

// UpsertCourseConfig registers a monitored course. Re-registration updates
// credentials but keeps the original created_at; the registration time
// anchors the new-course grace period and must not move on later syncs.
func UpsertCourseConfig(session *gocql.Session, cfg *CourseConfig) error {
	var existing string
	err := session.Query(
		`SELECT network_id FROM piazza_config WHERE network_id = ?`, cfg.NetworkID,
	).Scan(&existing)

	if err == nil {
		update := `
			UPDATE piazza_config
			SET class_name = ?, professor = ?, semester = ?, email = ?, password = ?
			WHERE network_id = ?
		`
		if err := session.Query(update,
			cfg.Course.ClassName, cfg.Course.Professor, cfg.Course.Semester,
			cfg.Email, cfg.Password, cfg.NetworkID,
		).Exec(); err != nil {
			return fmt.Errorf("failed to update course config: %w", err)
		}
		return nil
	}
	if err != gocql.ErrNotFound {
		return fmt.Errorf("failed to check course config: %w", err)
	}

	insert := `
		INSERT INTO piazza_config (network_id, class_name, professor, semester, email, password, created_at)
		VALUES (?, ?, ?, ?, ?, ?, toTimestamp(now()))
	`
	if err := session.Query(insert,
		cfg.NetworkID, cfg.Course.ClassName, cfg.Course.Professor, cfg.Course.Semester,
		cfg.Email, cfg.Password,
	).Exec(); err != nil {
		return fmt.Errorf("failed to insert course config: %w", err)
	}

	return nil
}

// FetchParsers retrieves all discovery parsers from Cassandra.
func FetchParsers(session *gocql.Session) ([]Parser, error) {
	query := `SELECT parser_name, code_text FROM parsers`

	iter := session.Query(query).Iter()
	defer iter.Close()

	var parsers []Parser
	var p Parser
	for iter.Scan(&p.ParserName, &p.CodeText) {
		parsers = append(parsers, p)
		p = Parser{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("error fetching parsers: %w", err)
	}

	return parsers, nil
}
