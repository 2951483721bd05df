// Package jobs reads job files and drives them through the process
// pool. A job file holds one shell-style command per line; blank lines
// and #-comments are skipped.
package jobs

import (
	"fmt"
	"os"
	"strings"
)

// Job is one parsed command line from a job file.
type Job struct {
	ID   int // 1-based position among the file's jobs
	Argv []string
	Line string
}

// ParseFile reads a job file and returns its jobs in file order.
func ParseFile(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}

	var jobs []Job
	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		argv, err := ParseLine(trimmed)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		jobs = append(jobs, Job{ID: len(jobs) + 1, Argv: argv, Line: trimmed})
	}
	return jobs, nil
}

// ParseLine splits a command line into arguments.
// Handles quoted strings and basic escaping.
func ParseLine(command string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	command = strings.TrimSpace(command)
	runes := []rune(command)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			switch {
			case !inQuote:
				inQuote = true
				quoteChar = r
			case r == quoteChar:
				inQuote = false
				quoteChar = 0
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		case r == '\\' && i+1 < len(runes):
			// Escape: take the next rune literally
			i++
			current.WriteRune(runes[i])
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	if inQuote {
		return nil, fmt.Errorf("unclosed quote in command")
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	return args, nil
}
