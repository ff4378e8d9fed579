package indexer

// ProgressReporter provides callbacks for reporting pipeline progress.
// Implementations can display progress bars, log messages, or remain silent.
// OnFileExtracted and OnFileDocumented are called from worker goroutines.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnExtractionStart is called before files are parsed.
	OnExtractionStart(totalFiles int)

	// OnFileExtracted is called after each file is parsed.
	OnFileExtracted(path string)

	// OnResolutionStart is called once every file is parsed and the
	// project-wide tables are built.
	OnResolutionStart(totalFiles int)

	// OnSynthesisStart is called before documents are generated.
	OnSynthesisStart(totalFiles int)

	// OnFileDocumented is called after each document is generated.
	OnFileDocumented(path string)

	// OnComplete is called when the run finishes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)    {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileExtracted(path string)      {}
func (n *NoOpProgressReporter) OnResolutionStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnSynthesisStart(totalFiles int)  {}
func (n *NoOpProgressReporter) OnFileDocumented(path string)     {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)          {}
