package storage

// Row types returned by Store queries. These are lightweight data transfer
// structs mirroring the tables in schema.go, not ORM models.

// CallRecord is one stored call edge.
type CallRecord struct {
	FilePath         string
	Caller           string
	CalleeExpression string
	ResolvedCallee   *string // nil when unresolved
	CallType         string
	ArgumentCount    int
	Confidence       string
	StartLine        int
	EndLine          int
}

// SymbolRecord is one stored declaration.
type SymbolRecord struct {
	FilePath      string
	QualifiedName string
	Name          string
	Kind          string
	Visibility    string
	Signature     string
	DocComment    *string
	Container     string
	StartLine     int
	EndLine       int
	Score         int
}

// InheritanceRecord is one stored parent edge.
type InheritanceRecord struct {
	FilePath string
	Child    string
	Parent   string
	Kind     string
}

// FileRecord is one stored file summary.
type FileRecord struct {
	FilePath      string
	Language      string
	Namespace     string
	LineCount     int
	Unsupported   int
	Unresolved    int
	LowConfidence int
	RunID         string
	IndexedAt     string
}

// DocumentRecord is one stored synthesized document.
type DocumentRecord struct {
	FilePath    string
	Strategy    string
	Fallback    string
	Content     string
	GeneratedAt string
}
