package model

// ExtractionMethod records how a file's text was obtained.
type ExtractionMethod string

const (
	// MethodText means the file was read as plain text.
	MethodText ExtractionMethod = "text"
	// MethodPDF means text came from the PDF text layer.
	MethodPDF ExtractionMethod = "pdf"
	// MethodOCR means text came from optical character recognition.
	MethodOCR ExtractionMethod = "ocr"
	// MethodOffice means text came from an Office Open XML document.
	MethodOffice ExtractionMethod = "office"
	// MethodVision means the category came from image classification.
	MethodVision ExtractionMethod = "vision"
	// MethodFilename means only the filename was available.
	MethodFilename ExtractionMethod = "filename"
	// MethodSkip means a required tool was unavailable.
	MethodSkip ExtractionMethod = "skip"
	// MethodError means extraction failed; see FileRecord.Error.
	MethodError ExtractionMethod = "error"
)

// FolderKind distinguishes folder-level move units.
type FolderKind string

const (
	// KindAppBundle is an application bundle directory.
	KindAppBundle FolderKind = "app_bundle"
	// KindCohesive is a directory whose contents share one category.
	KindCohesive FolderKind = "cohesive_folder"
)

// FileRecord is the analysis result for a single file. It is built once
// during analysis and not modified afterwards.
type FileRecord struct {
	SourcePath  string           `json:"source_path"`
	Filename    string           `json:"filename"`
	Extension   string           `json:"extension"`
	Method      ExtractionMethod `json:"method"`
	Text        string           `json:"text,omitempty"`
	Category    CategoryID       `json:"category"`
	Destination string           `json:"destination"`
	Subfolder   string           `json:"subfolder,omitempty"`
	VisionLabel string           `json:"vision_label,omitempty"`
	Error       string           `json:"error,omitempty"`
	Matches     []string         `json:"matches,omitempty"`
	Confidence  Confidence       `json:"confidence"`
	Size        int64            `json:"size"`
}

// FolderRecord is a directory that moves as a single unit.
type FolderRecord struct {
	Path        string     `json:"path"`
	Name        string     `json:"name"`
	Category    CategoryID `json:"category"`
	Kind        FolderKind `json:"kind"`
	Destination string     `json:"destination"`
	Confidence  float64    `json:"confidence"`
	FileCount   int        `json:"file_count"`
	Cohesive    bool       `json:"cohesive"`
}
