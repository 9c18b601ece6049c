package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedInput holds the structured fields extracted from one line of task text.
type ParsedInput struct {
	Title       string
	Priority    *int
	DueAt       *time.Time
	Description *string
}

// annotation patterns, applied in declaration order.
var (
	priorityPattern    = regexp.MustCompile(`!\s*(\d+)`)
	dueDatePattern     = regexp.MustCompile(`\bdue:\s*(\d{4}-\d{2}-\d{2})\b`)
	descriptionPattern = regexp.MustCompile(`\{([^}]*)\}`)
)

// ParseInput extracts priority, due date, and inline description annotations from
// input using the local time zone for due dates.
func ParseInput(input string) (ParsedInput, error) {
	return ParseInputIn(input, time.Local)
}

// ParseInputIn is ParseInput with an explicit location for due-date normalization.
func ParseInputIn(input string, loc *time.Location) (ParsedInput, error) {
	var out ParsedInput
	rest := input

	// Each pass strips its own spans before the next pattern runs.
	if m := priorityPattern.FindStringSubmatch(rest); m != nil {
		p, err := parsePriority(m[1])
		if err != nil {
			return ParsedInput{}, err
		}
		out.Priority = &p
	}
	rest = priorityPattern.ReplaceAllString(rest, " ")

	if m := dueDatePattern.FindStringSubmatch(rest); m != nil {
		due, err := parseDueDate(m[1], loc)
		if err != nil {
			return ParsedInput{}, err
		}
		out.DueAt = &due
	}
	rest = dueDatePattern.ReplaceAllString(rest, " ")

	if m := descriptionPattern.FindStringSubmatch(rest); m != nil {
		if desc := strings.TrimSpace(m[1]); desc != "" {
			out.Description = &desc
		}
	}
	rest = descriptionPattern.ReplaceAllString(rest, " ")

	out.Title = collapseWhitespace(rest)
	return out, nil
}

// parsePriority validates captured priority digits.
func parsePriority(digits string) (int, error) {
	p, err := strconv.Atoi(digits)
	if err != nil || !ValidPriority(p) {
		return 0, &ParseError{Kind: InvalidPriority, Value: digits}
	}
	return p, nil
}

// parseDueDate validates a YYYY-MM-DD date and moves it to the end of that day.
func parseDueDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, &ParseError{Kind: InvalidDueDate, Value: raw}
	}
	return EndOfDay(day.Year(), day.Month(), day.Day(), loc), nil
}

// collapseWhitespace joins whitespace-separated fields with single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
