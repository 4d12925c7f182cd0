package discovery

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"

	"piazza-qa/internal/frontier"
)

// RunParser executes one parser and collects the lectures it prints as
// JSON lines on stdout.
func RunParser(parserName, dir string) ([]frontier.Lecture, error) {
	parserPath := filepath.Join(dir, parserName+".py")

	cmd := exec.Command("python3", parserPath)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start parser: %w", err)
	}

	var lectures []frontier.Lecture
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var lecture frontier.Lecture
		if err := json.Unmarshal([]byte(line), &lecture); err != nil {
			log.Printf("    Warning: failed to parse JSON: %s", line)
			continue
		}
		lectures = append(lectures, lecture)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading parser output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("parser execution failed: %w", err)
	}

	return lectures, nil
}
