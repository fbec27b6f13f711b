package run

// Report lists the files written for a run. Paths are empty for files
// that were not produced.
type Report struct {
	CSVPath     string
	ChartPath   string
	SummaryPath string
}

// HasRecords reports whether the record table and chart were written.
func (r Report) HasRecords() bool {
	return r.CSVPath != ""
}
