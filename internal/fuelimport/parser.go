package fuelimport

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultDelimiter separates cells when ParseOptions leaves Delimiter unset.
const DefaultDelimiter = ','

// candidateDelimiters are tried by DetectDelimiter, most preferred first.
var candidateDelimiters = []rune{',', '\t', ';', '|'}

// ParseOptions configures Parse.
type ParseOptions struct {
	// Delimiter separates cells. Zero means DefaultDelimiter.
	Delimiter rune
	// AutoDelimiter picks the delimiter from the header line with
	// DetectDelimiter, overriding Delimiter.
	AutoDelimiter bool
	// Logger receives a warning for every dropped row. Nil discards.
	Logger *slog.Logger
}

// ParseResult is the output of a successful Parse.
type ParseResult struct {
	// Header is the trimmed header row as it appeared in the file.
	Header []string
	// Delimiter is the delimiter actually used.
	Delimiter rune
	// Candidates holds one entry per well-formed data row, in file order.
	Candidates []Candidate
	// Dropped lists data rows skipped because their cell count did not
	// match the header.
	Dropped []DroppedRow
}

// DroppedRow describes a data line skipped for having the wrong number of cells.
type DroppedRow struct {
	RowNumber int `json:"row_number"`
	Cells     int `json:"cells"`
	Expected  int `json:"expected"`
}

// numberedLine is a non-blank source line with its 1-based line number.
type numberedLine struct {
	number int
	text   string
}

// Parse converts the full text of an import file into candidates.
//
// Blank lines are ignored but still counted, so RowNumber is the line number
// an editor would show (the header is normally line 1). The first non-blank
// line is the header. Parse fails with *EmptyFileError when there is no data
// row and with *MissingHeaderError when any required column is absent; in
// both cases no candidates are returned. A data line whose cell count differs
// from the header's is skipped and reported in ParseResult.Dropped.
func Parse(text string, opts ParseOptions) (ParseResult, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var lines []numberedLine
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, numberedLine{number: i + 1, text: line})
	}
	if len(lines) < 2 {
		return ParseResult{}, &EmptyFileError{Lines: len(lines)}
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}
	if opts.AutoDelimiter {
		delim = DetectDelimiter(lines[0].text)
	}

	header := splitLine(lines[0].text, delim)
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return ParseResult{}, &MissingHeaderError{Missing: missing}
	}

	result := ParseResult{
		Header:     header,
		Delimiter:  delim,
		Candidates: make([]Candidate, 0, len(lines)-1),
	}
	for _, line := range lines[1:] {
		cells := splitLine(line.text, delim)
		if len(cells) != len(header) {
			log.Warn("dropping row with wrong cell count",
				"row", line.number,
				"cells", len(cells),
				"expected", len(header),
			)
			result.Dropped = append(result.Dropped, DroppedRow{
				RowNumber: line.number,
				Cells:     len(cells),
				Expected:  len(header),
			})
			continue
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			values[name] = cleanCell(cells[i])
		}
		result.Candidates = append(result.Candidates, NewCandidate(line.number, values))
	}

	return result, nil
}

// DetectDelimiter returns the candidate delimiter occurring most often in
// headerLine, or DefaultDelimiter if none occurs. Ties go to the earlier
// entry of ',', tab, ';', '|'.
func DetectDelimiter(headerLine string) rune {
	best, bestCount := DefaultDelimiter, 0
	for _, d := range candidateDelimiters {
		if n := strings.Count(headerLine, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// missingColumns returns the required column names absent from header,
// in required-column order.
func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, f := range requiredColumns {
		if !present[f.String()] {
			missing = append(missing, f.String())
		}
	}
	return missing
}

func splitLine(line string, delim rune) []string {
	return strings.Split(line, string(delim))
}

// cleanCell trims surrounding whitespace and removes every double quote.
func cleanCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), `"`, "")
}

// Counts tallies the parsed candidates by status.
func (r ParseResult) Counts() Counts {
	return countCandidates(r.Candidates)
}

// delimiterNames maps the names accepted by DelimiterOption to delimiters.
var delimiterNames = map[string]rune{
	"comma":     ',',
	",":         ',',
	"tab":       '\t',
	`\t`:        '\t',
	"semicolon": ';',
	";":         ';',
	"pipe":      '|',
	"|":         '|',
}

// DelimiterOption sets the delimiter fields of opts from a user-supplied
// name: "auto", one of comma, tab, semicolon, pipe, or the character itself.
// Blank leaves opts unchanged.
func DelimiterOption(opts ParseOptions, name string) (ParseOptions, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return opts, nil
	case "auto":
		opts.AutoDelimiter = true
		return opts, nil
	}
	d, ok := delimiterNames[name]
	if !ok {
		return opts, fmt.Errorf("fuelimport: unknown delimiter %q", name)
	}
	opts.Delimiter = d
	opts.AutoDelimiter = false
	return opts, nil
}
