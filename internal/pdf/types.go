package pdf

import (
	"path/filepath"
	"strings"
)

// Tool names. They double as HTTP route segments and CLI subcommands.
const (
	ToolMerge         = "merge"
	ToolSplit         = "split"
	ToolCompress      = "compress"
	ToolWatermark     = "watermark"
	ToolSign          = "sign"
	ToolRotate        = "rotate"
	ToolPageNumbers   = "page-numbers"
	ToolPDFToJPG      = "pdf-to-jpg"
	ToolJPGToPDF      = "jpg-to-pdf"
	ToolProtect       = "protect"
	ToolUnlock        = "unlock"
	ToolRepair        = "repair"
	ToolEditPDF       = "edit-pdf"
	ToolOrganize      = "organize"
	ToolRemovePages   = "remove-pages"
	ToolExtractPages  = "extract-pages"
	ToolExtractImages = "extract-images"
	ToolPDFToText     = "pdf-to-text"
	ToolInfo          = "info"
	ToolValidate      = "validate"
	ToolListFiles     = "list-files"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Result describes the file produced by a tool run
type Result struct {
	Tool   string   `json:"tool"`
	Output string   `json:"output"`
	Size   int64    `json:"size"`
	Pages  int      `json:"pages,omitempty"`
	Files  []string `json:"files,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

// ContentType returns the media type of the output file
func (r *Result) ContentType() string {
	switch strings.ToLower(filepath.Ext(r.Output)) {
	case ".zip":
		return "application/zip"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/pdf"
	}
}

// Request Types

// MergeRequest combines Inputs, in order, into Output
type MergeRequest struct {
	Inputs []string `json:"inputs"`
	Output string   `json:"output,omitempty"`
}

// SplitRequest splits Input either every Span pages or along explicit
// Ranges such as "1-3,4,5-". Ranges wins when both are set.
type SplitRequest struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Span   int    `json:"span,omitempty"`
	Ranges string `json:"ranges,omitempty"`
}

// Compression levels
const (
	CompressLossless = "lossless"
	CompressBalanced = "balanced"
	CompressStrong   = "strong"
)

// CompressRequest shrinks Input. Balanced and strong rebuild pages from
// rendered JPEGs; DPI and Quality override the level's defaults.
type CompressRequest struct {
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	Level   string `json:"level,omitempty"`
	DPI     int    `json:"dpi,omitempty"`
	Quality int    `json:"quality,omitempty"`
}

// WatermarkRequest stamps either Text or Image onto the selected pages
type WatermarkRequest struct {
	Input    string   `json:"input"`
	Output   string   `json:"output,omitempty"`
	Text     string   `json:"text,omitempty"`
	Image    string   `json:"image,omitempty"`
	Pages    string   `json:"pages,omitempty"`
	FontName string   `json:"font_name,omitempty"`
	FontSize int      `json:"font_size,omitempty"`
	Color    string   `json:"color,omitempty"`
	Opacity  float64  `json:"opacity,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Position string   `json:"position,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	OnTop    bool     `json:"on_top,omitempty"`
}

// SignRequest places a signature image on one page. X and Y are the offset
// of the image's lower left corner from the page's lower left corner, in
// points. Width, when set, overrides Scale.
type SignRequest struct {
	Input  string  `json:"input"`
	Output string  `json:"output,omitempty"`
	Image  string  `json:"image"`
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scale  float64 `json:"scale,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// RotateRequest rotates the selected pages clockwise by Rotation degrees
type RotateRequest struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Rotation int    `json:"rotation"`
	Pages    string `json:"pages,omitempty"`
}

// PageNumbersRequest stamps page numbers. Format may contain {n} and {total}.
type PageNumbersRequest struct {
	Input    string  `json:"input"`
	Output   string  `json:"output,omitempty"`
	Format   string  `json:"format,omitempty"`
	Position string  `json:"position,omitempty"`
	FontSize int     `json:"font_size,omitempty"`
	StartAt  int     `json:"start_at,omitempty"`
	Pages    string  `json:"pages,omitempty"`
	Margin   float64 `json:"margin,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// PDFToImagesRequest renders the selected pages to JPEG
type PDFToImagesRequest struct {
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	Pages   string `json:"pages,omitempty"`
	DPI     int    `json:"dpi,omitempty"`
	Quality int    `json:"quality,omitempty"`
}

// ImagesToPDFRequest builds a PDF with one image per page. PageSize is
// "fit" (page matches the image) or a paper size such as A4 or Letter.
type ImagesToPDFRequest struct {
	Inputs    []string `json:"inputs"`
	Output    string   `json:"output,omitempty"`
	PageSize  string   `json:"page_size,omitempty"`
	Landscape bool     `json:"landscape,omitempty"`
}

// ProtectRequest encrypts Input. OwnerPassword defaults to UserPassword.
type ProtectRequest struct {
	Input         string `json:"input"`
	Output        string `json:"output,omitempty"`
	UserPassword  string `json:"user_password"`
	OwnerPassword string `json:"owner_password,omitempty"`
}

// UnlockRequest removes encryption from Input
type UnlockRequest struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Password string `json:"password"`
}

// RepairRequest rewrites a damaged Input
type RepairRequest struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
}

// Annotation is a rectangle drawn onto a page, optionally filled, bordered
// and labelled. Coordinates are points from the page's lower left corner.
type Annotation struct {
	Page        int     `json:"page"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Text        string  `json:"text,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	TextColor   string  `json:"text_color,omitempty"`
	FillColor   string  `json:"fill_color,omitempty"`
	BorderColor string  `json:"border_color,omitempty"`
	BorderWidth float64 `json:"border_width,omitempty"`
}

// EditRequest draws Annotations onto Input
type EditRequest struct {
	Input       string       `json:"input"`
	Output      string       `json:"output,omitempty"`
	Annotations []Annotation `json:"annotations"`
}

// PagesRequest is shared by the page selection tools: organize,
// remove-pages, extract-pages and extract-images
type PagesRequest struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Pages  string `json:"pages,omitempty"`
}

// TextRequest extracts plain text. Output, when set, receives the text.
type TextRequest struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Pages  string `json:"pages,omitempty"`
}

// InfoRequest asks for document properties
type InfoRequest struct {
	Input string `json:"input"`
}

// ValidateRequest asks for an integrity check
type ValidateRequest struct {
	Input string `json:"input"`
}

// ListFilesRequest lists PDFs below Directory, filtered by Query
type ListFilesRequest struct {
	Directory string `json:"directory,omitempty"`
	Query     string `json:"query,omitempty"`
}

// Response Types

// PageText is the text of a single page
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// TextResult holds extracted text
type TextResult struct {
	Path   string     `json:"path"`
	Output string     `json:"output,omitempty"`
	Pages  int        `json:"pages"`
	Text   []PageText `json:"text"`
}

// Joined returns the text of all pages separated by form feeds
func (r *TextResult) Joined() string {
	parts := make([]string, len(r.Text))
	for i, p := range r.Text {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\f")
}

// PageDimensions is a page size in points
type PageDimensions struct {
	Page     int     `json:"page"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
}

// InfoResult describes a document
type InfoResult struct {
	Path      string           `json:"path"`
	Size      int64            `json:"size"`
	Pages     int              `json:"pages"`
	Version   string           `json:"version"`
	Title     string           `json:"title,omitempty"`
	Author    string           `json:"author,omitempty"`
	Subject   string           `json:"subject,omitempty"`
	Creator   string           `json:"creator,omitempty"`
	Producer  string           `json:"producer,omitempty"`
	Encrypted bool             `json:"encrypted"`
	PageSizes []PageDimensions `json:"page_sizes,omitempty"`
}

// ValidateResult reports document integrity. Strict is true when the file
// passed strict validation; Valid alone means it passed relaxed validation.
type ValidateResult struct {
	Path     string `json:"path"`
	Valid    bool   `json:"valid"`
	Strict   bool   `json:"strict"`
	Readable bool   `json:"readable"`
	Message  string `json:"message,omitempty"`
}

// ListFilesResult holds the matching files
type ListFilesResult struct {
	Directory  string     `json:"directory"`
	Query      string     `json:"query,omitempty"`
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"total_count"`
}
