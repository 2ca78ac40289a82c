package report

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const fileStampLayout = "20060102_150405"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SafeEventName replaces anything outside [a-zA-Z0-9_-] with '_'.
func SafeEventName(event string) string {
	return unsafeFileChars.ReplaceAllString(event, "_")
}

// FileSet names the output files of one batch report.
type FileSet struct {
	CSV     string
	Summary string
	XLSX    string
	PDF     string
}

// BatchFileNames returns file names of the form <event>_<YYYYMMDD_HHMMSS>_expenses.csv.
func BatchFileNames(event string, at time.Time) FileSet {
	prefix := SafeEventName(event) + "_" + at.Format(fileStampLayout)
	return FileSet{
		CSV:     prefix + "_expenses.csv",
		Summary: prefix + "_summary.txt",
		XLSX:    prefix + "_expenses.xlsx",
		PDF:     prefix + "_summary.pdf",
	}
}

// SingleSummaryName returns <image base name without extension>_summary.txt.
func SingleSummaryName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_summary.txt"
}
