package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadKeywordsFile loads search keywords from a text file, one per
// line. Lines are trimmed; blank lines are kept so the run summary
// reports them as skipped, matching keywords passed on the command
// line.
func ReadKeywordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords file: %w", err)
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		keywords = append(keywords, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	return keywords, nil
}
