package descriptions

// Tool descriptions with practical examples and use cases

const (
	// Combining and splitting
	PDFMergeDescription = `Combine several PDF files into one document, in the order given.

**When to use:** Need a single file from separate chapters, scans, invoices or attachments.

**Examples:**
• Assemble a report: "Merge cover.pdf, body.pdf and appendix.pdf into report.pdf"
• Bundle receipts: "Combine all receipts from March into one PDF"

**Best practices:** At least two files are required. The merged page count is the sum of the inputs; password protected inputs must be unlocked first.`

	PDFSplitDescription = `Split a PDF into several smaller PDFs, returned as a ZIP archive.

**When to use:** Need individual chapters, single pages, or fixed-size chunks of a long document.

**Examples:**
• One file per page: "Split contract.pdf every page"
• Custom parts: "Split book.pdf into ranges 1-10, 11-25, 26-"

**Best practices:** Use span for equal chunks or ranges for custom parts. Every page appears in exactly one part when splitting by span.`

	PDFOrganizeDescription = `Reorder, duplicate or drop pages by listing them in the desired order.

**When to use:** Pages were scanned out of order, or a new sequence is needed.

**Examples:**
• Reverse three pages: "Organize slides.pdf with pages 3,2,1"
• Move the last page to the front: "Organize report.pdf with pages last,1-4"

**Best practices:** Pages not listed are dropped; listing a page twice duplicates it.`

	PDFRemovePagesDescription = `Delete selected pages from a PDF.

**When to use:** Remove blank pages, cover sheets or confidential pages before sharing.

**Examples:**
• Drop the cover: "Remove page 1 from scan.pdf"
• Remove every even page: "Remove pages even from duplex-scan.pdf"

**Best practices:** At least one page must remain.`

	PDFExtractPagesDescription = `Create a new PDF containing only the selected pages.

**When to use:** Share a chapter or a signature page without the rest of the document.

**Examples:**
• Pull out a chapter: "Extract pages 12-30 from handbook.pdf"

**Best practices:** Pages are kept in document order; use organize to change the order.`

	// Optimization and repair
	PDFCompressDescription = `Reduce the file size of a PDF.

**When to use:** A file is too large to email or upload.

**Levels:**
• lossless: rewrites the file structure and removes duplicate resources; text stays selectable
• balanced: rebuilds every page as a 150 DPI JPEG
• strong: rebuilds every page as a 96 DPI JPEG

**Best practices:** Start with lossless. Raster levels make text unselectable and fall back to lossless when they would not save space.`

	PDFRepairDescription = `Attempt to recover a damaged PDF.

**When to use:** A file fails to open, shows a broken cross-reference table, or has garbage after its end marker.

**Examples:**
• Fix a truncated download: "Repair broken-download.pdf"

**Best practices:** Repair first rewrites the file structure. If that fails, pages are rebuilt from renderings, which makes text unselectable.`

	// Page decoration
	PDFRotateDescription = `Rotate pages by a multiple of 90 degrees.

**When to use:** Scanned pages are sideways or upside down.

**Examples:**
• Fix landscape pages: "Rotate pages 2-4 of scan.pdf by 90"
• Turn everything upside down: "Rotate all pages by 180"

**Best practices:** Negative values rotate counterclockwise. Rotations are normalized, so 450 equals 90 and 360 changes nothing.`

	PDFWatermarkDescription = `Stamp text or an image across the selected pages.

**When to use:** Mark documents as DRAFT, CONFIDENTIAL or with a company logo.

**Examples:**
• Draft marking: "Watermark proposal.pdf with DRAFT at 30% opacity"
• Logo on first page: "Watermark brochure.pdf with logo.png on page 1"

**Best practices:** Provide either text or image. Defaults are 48pt gray Helvetica, centered, rotated 45 degrees.`

	PDFPageNumbersDescription = `Add page numbers to the selected pages.

**When to use:** A merged or scanned document needs consistent numbering.

**Examples:**
• Simple numbering: "Add page numbers to thesis.pdf"
• Page X of Y: "Number report.pdf with format 'Page {n} of {total}' at bottom right"

**Best practices:** {n} is the page number and {total} the last number. start_at sets the number printed on the first selected page.`

	PDFSignDescription = `Place a signature image on a page.

**When to use:** Sign a contract or form with a scanned signature.

**Examples:**
• Sign the last page: "Sign contract.pdf on page 3 at x=400 y=80 with signature.png, width 150"

**Best practices:** Coordinates are points from the lower left page corner (72 points per inch). A transparent PNG gives the cleanest result.`

	PDFEditDescription = `Draw rectangles with optional fill, border and text onto pages.

**When to use:** Redact an area, highlight a region, or add a note box.

**Examples:**
• Black out a field: "Edit form.pdf: page 1, x=100 y=600 w=200 h=20 filled #000000"
• Add a note: "Edit draft.pdf: page 2 box at 50,50 size 200x40 with text 'Check figures'"

**Best practices:** Coordinates are points from the lower left page corner. Annotations are stamped on top of the page content.`

	// Conversion
	PDFToJPGDescription = `Render PDF pages to JPEG images, returned as a ZIP archive.

**When to use:** Need page previews, thumbnails, or images for slides and chat.

**Examples:**
• All pages: "Convert slides.pdf to JPG"
• High resolution first page: "Convert poster.pdf page 1 to JPG at 300 DPI"

**Best practices:** 150 DPI suits screens; 300 DPI suits print. Quality ranges from 1 to 100.`

	JPGToPDFDescription = `Combine images into a PDF with one image per page, in the order given.

**When to use:** Turn phone photos or scans into a single document.

**Examples:**
• Photo album: "Convert img1.jpg, img2.png into album.pdf"
• Printable pages: "Convert receipt.webp to an A4 PDF"

**Best practices:** Supports JPEG, PNG, TIFF, WebP, BMP and GIF. Page size "fit" matches each image; A4 or Letter centers it on paper.`

	PDFToTextDescription = `Extract the plain text of selected pages.

**When to use:** Need searchable or analyzable text from a text-based PDF.

**Examples:**
• Full text: "Get the text of paper.pdf"
• One section: "Get text from pages 3-5 of manual.pdf"

**Best practices:** Scanned documents contain images rather than text and return little or nothing.`

	PDFExtractImagesDescription = `Extract embedded images from selected pages, returned as a ZIP archive.

**When to use:** Recover photos, charts or logos in their original format.

**Examples:**
• All images: "Extract images from brochure.pdf"

**Best practices:** Only embedded raster images are returned; vector drawings are not.`

	// Security
	PDFProtectDescription = `Encrypt a PDF with a password using AES-256.

**When to use:** Share sensitive documents that must not be opened by others.

**Examples:**
• Protect a payslip: "Protect payslip.pdf with password s3cret"

**Best practices:** The owner password defaults to the user password. Store the password safely; it cannot be recovered.`

	PDFUnlockDescription = `Remove password protection from a PDF.

**When to use:** You know the password and need an unprotected copy for further processing.

**Examples:**
• Unlock before merging: "Unlock statement.pdf with password 1234"

**Best practices:** Most other tools refuse protected files; unlock them first.`

	// Inspection
	PDFInfoDescription = `Report page count, page sizes, PDF version, document metadata and encryption status.

**When to use:** Check a file before processing, or choose page numbers for other tools.

**Examples:**
• "How many pages does contract.pdf have?"

**Best practices:** Protected files report only their size and encrypted=true.`

	PDFValidateDescription = `Check a PDF's structural integrity.

**When to use:** Before processing uploads, or to decide whether repair is needed.

**Examples:**
• "Is upload.pdf a valid PDF?"

**Best practices:** strict=false with valid=true means minor issues that most tools tolerate. invalid files are candidates for repair.`

	PDFListFilesDescription = `List the PDF files in the workspace directory.

**When to use:** Discover which files are available before running other tools.

**Examples:**
• "List PDFs matching invoice"

**Best practices:** The query matches file names loosely; words may appear in any order.`

	PDFServerInfoDescription = `Get server name, version, limits, the workspace directory and the available tools.

**When to use:** At the start of a session to learn what the server can do and where files live.

**Best practices:** Call this first. Relative paths given to other tools resolve against the workspace directory.`
)

// Tool is an entry in the tool catalog shared by the MCP server, the HTTP
// API and the command line
type Tool struct {
	// ID is the route segment and CLI subcommand, e.g. "merge"
	ID string `json:"id"`
	// Name is the MCP tool name, e.g. "pdf_merge"
	Name    string `json:"name"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	// Output is pdf, zip or json
	Output string `json:"output"`
}

// Catalog lists every tool in presentation order
var Catalog = []Tool{
	{ID: "merge", Name: "pdf_merge", Title: "Merge PDF", Summary: "Combine PDFs in the order you want", Output: "pdf"},
	{ID: "split", Name: "pdf_split", Title: "Split PDF", Summary: "Separate pages or ranges into independent PDFs", Output: "zip"},
	{ID: "compress", Name: "pdf_compress", Title: "Compress PDF", Summary: "Reduce file size", Output: "pdf"},
	{ID: "watermark", Name: "pdf_watermark", Title: "Watermark", Summary: "Stamp text or an image over pages", Output: "pdf"},
	{ID: "sign", Name: "pdf_sign", Title: "Sign PDF", Summary: "Place a signature image on a page", Output: "pdf"},
	{ID: "rotate", Name: "pdf_rotate", Title: "Rotate PDF", Summary: "Rotate pages by 90, 180 or 270 degrees", Output: "pdf"},
	{ID: "page-numbers", Name: "pdf_page_numbers", Title: "Page numbers", Summary: "Add page numbers", Output: "pdf"},
	{ID: "pdf-to-jpg", Name: "pdf_to_jpg", Title: "PDF to JPG", Summary: "Render pages as JPEG images", Output: "zip"},
	{ID: "jpg-to-pdf", Name: "jpg_to_pdf", Title: "JPG to PDF", Summary: "Turn images into a PDF", Output: "pdf"},
	{ID: "protect", Name: "pdf_protect", Title: "Protect PDF", Summary: "Encrypt with a password", Output: "pdf"},
	{ID: "unlock", Name: "pdf_unlock", Title: "Unlock PDF", Summary: "Remove password protection", Output: "pdf"},
	{ID: "repair", Name: "pdf_repair", Title: "Repair PDF", Summary: "Recover a damaged PDF", Output: "pdf"},
	{ID: "edit-pdf", Name: "pdf_edit", Title: "Edit PDF", Summary: "Draw boxes and text onto pages", Output: "pdf"},
	{ID: "organize", Name: "pdf_organize", Title: "Organize PDF", Summary: "Reorder, duplicate or drop pages", Output: "pdf"},
	{ID: "remove-pages", Name: "pdf_remove_pages", Title: "Remove pages", Summary: "Delete selected pages", Output: "pdf"},
	{ID: "extract-pages", Name: "pdf_extract_pages", Title: "Extract pages", Summary: "Keep only selected pages", Output: "pdf"},
	{ID: "extract-images", Name: "pdf_extract_images", Title: "Extract images", Summary: "Pull embedded images out", Output: "zip"},
	{ID: "pdf-to-text", Name: "pdf_to_text", Title: "PDF to text", Summary: "Extract plain text", Output: "json"},
	{ID: "info", Name: "pdf_info", Title: "PDF info", Summary: "Pages, sizes, metadata and encryption", Output: "json"},
	{ID: "validate", Name: "pdf_validate", Title: "Validate PDF", Summary: "Check structural integrity", Output: "json"},
	{ID: "list-files", Name: "pdf_list_files", Title: "List files", Summary: "List PDFs in the workspace", Output: "json"},
	{ID: "server-info", Name: "pdf_server_info", Title: "Server info", Summary: "Server, limits and tools", Output: "json"},
}

// ToolDescriptions maps MCP tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_merge":          PDFMergeDescription,
	"pdf_split":          PDFSplitDescription,
	"pdf_compress":       PDFCompressDescription,
	"pdf_watermark":      PDFWatermarkDescription,
	"pdf_sign":           PDFSignDescription,
	"pdf_rotate":         PDFRotateDescription,
	"pdf_page_numbers":   PDFPageNumbersDescription,
	"pdf_to_jpg":         PDFToJPGDescription,
	"jpg_to_pdf":         JPGToPDFDescription,
	"pdf_protect":        PDFProtectDescription,
	"pdf_unlock":         PDFUnlockDescription,
	"pdf_repair":         PDFRepairDescription,
	"pdf_edit":           PDFEditDescription,
	"pdf_organize":       PDFOrganizeDescription,
	"pdf_remove_pages":   PDFRemovePagesDescription,
	"pdf_extract_pages":  PDFExtractPagesDescription,
	"pdf_extract_images": PDFExtractImagesDescription,
	"pdf_to_text":        PDFToTextDescription,
	"pdf_info":           PDFInfoDescription,
	"pdf_validate":       PDFValidateDescription,
	"pdf_list_files":     PDFListFilesDescription,
	"pdf_server_info":    PDFServerInfoDescription,
}

// GetToolDescription returns the description for an MCP tool name
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// Lookup finds a catalog entry by ID
func Lookup(id string) (Tool, bool) {
	for _, t := range Catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// NameFor returns the MCP tool name for a catalog ID
func NameFor(id string) string {
	t, ok := Lookup(id)
	if !ok {
		return ""
	}
	return t.Name
}
