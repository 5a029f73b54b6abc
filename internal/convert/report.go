package convert

import "time"

// SkippedFile records a file left out of the output and why.
type SkippedFile struct {
	Path   string
	Stage  string
	Reason string
}

// Report summarizes one conversion run.
type Report struct {
	RunID        string
	Dataset      string
	StartedAt    time.Time
	FilesSeen    int
	Scanners     int
	Usages       int
	Acquisitions int
	Warnings     int
	Skipped      []SkippedFile
	Duration     time.Duration
}

// Converted is the number of files that contributed fully to the output.
func (r Report) Converted() int {
	return r.FilesSeen - len(r.Skipped)
}
