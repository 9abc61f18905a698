package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/pdf-tools/internal/pdf"
)

// Shared parameter definitions
var (
	inputParam = mcp.WithString("input",
		mcp.Required(),
		mcp.Description("Path to the PDF file, absolute or relative to the workspace directory"),
	)
	outputParam = mcp.WithString("output",
		mcp.Description("Where to write the result (defaults to a name next to the input)"),
	)
	pagesParam = mcp.WithString("pages",
		mcp.Description("Page selection such as 1-3,5,8-, last, odd or even (all pages if empty)"),
	)
	inputsParam = mcp.WithArray("inputs",
		mcp.Required(),
		mcp.Description("Paths of the input files, in order"),
		mcp.Items(map[string]any{"type": "string"}),
	)
)

var annotationSchema = map[string]any{
	"type":     "object",
	"required": []string{"page", "x", "y", "width", "height"},
	"properties": map[string]any{
		"page":         map[string]any{"type": "integer", "description": "1-based page number"},
		"x":            map[string]any{"type": "number", "description": "Points from the left edge"},
		"y":            map[string]any{"type": "number", "description": "Points from the bottom edge"},
		"width":        map[string]any{"type": "number"},
		"height":       map[string]any{"type": "number"},
		"text":         map[string]any{"type": "string"},
		"font_size":    map[string]any{"type": "number"},
		"text_color":   map[string]any{"type": "string", "description": "#rrggbb"},
		"fill_color":   map[string]any{"type": "string", "description": "#rrggbb"},
		"border_color": map[string]any{"type": "string", "description": "#rrggbb"},
		"border_width": map[string]any{"type": "number"},
	},
}

// toolParams holds the input schema of every tool, keyed by catalog ID
var toolParams = map[string][]mcp.ToolOption{
	pdf.ToolMerge: {inputsParam, outputParam},
	pdf.ToolSplit: {
		inputParam, outputParam,
		mcp.WithNumber("span", mcp.Description("Pages per part (default 1)")),
		mcp.WithString("ranges", mcp.Description("Explicit parts such as 1-3,4-10,11- (overrides span)")),
	},
	pdf.ToolCompress: {
		inputParam, outputParam,
		mcp.WithString("level",
			mcp.Description("lossless keeps text; balanced and strong rebuild pages as images"),
			mcp.Enum(pdf.CompressLossless, pdf.CompressBalanced, pdf.CompressStrong),
		),
		mcp.WithNumber("dpi", mcp.Description("Render resolution for balanced and strong")),
		mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 for balanced and strong")),
	},
	pdf.ToolWatermark: {
		inputParam, outputParam, pagesParam,
		mcp.WithString("text", mcp.Description("Watermark text")),
		mcp.WithString("image", mcp.Description("Path of a watermark image, instead of text")),
		mcp.WithString("font_name", mcp.Description("Standard PDF font (default Helvetica)")),
		mcp.WithNumber("font_size", mcp.Description("Font size in points (default 48)")),
		mcp.WithString("color", mcp.Description("Text color as #rrggbb (default #808080)")),
		mcp.WithNumber("opacity", mcp.Description("0 to 1 (default 0.3)")),
		mcp.WithNumber("rotation", mcp.Description("Degrees, -180 to 180 (default 45)")),
		mcp.WithString("position", mcp.Description("tl, tc, tr, l, c, r, bl, bc or br (default c)")),
		mcp.WithNumber("scale", mcp.Description("Image size relative to the page, 0.01 to 1")),
		mcp.WithBoolean("on_top", mcp.Description("Stamp over the page content instead of under it")),
	},
	pdf.ToolSign: {
		inputParam, outputParam,
		mcp.WithString("image", mcp.Required(), mcp.Description("Path of the signature image")),
		mcp.WithNumber("page", mcp.Description("Page to sign (default 1)")),
		mcp.WithNumber("x", mcp.Description("Points from the left edge")),
		mcp.WithNumber("y", mcp.Description("Points from the bottom edge")),
		mcp.WithNumber("scale", mcp.Description("Scale factor of the image")),
		mcp.WithNumber("width", mcp.Description("Signature width in points (overrides scale)")),
	},
	pdf.ToolRotate: {
		inputParam, outputParam, pagesParam,
		mcp.WithNumber("rotation", mcp.Required(), mcp.Description("Clockwise degrees, a multiple of 90")),
	},
	pdf.ToolPageNumbers: {
		inputParam, outputParam, pagesParam,
		mcp.WithString("format", mcp.Description("Label with {n} and optionally {total}, e.g. \"Page {n} of {total}\"")),
		mcp.WithString("position", mcp.Description("tl, tc, tr, l, c, r, bl, bc or br (default bc)")),
		mcp.WithNumber("font_size", mcp.Description("Font size in points (default 12)")),
		mcp.WithNumber("start_at", mcp.Description("Number of the first numbered page (default 1)")),
		mcp.WithNumber("margin", mcp.Description("Distance from the page edge in points (default 20)")),
		mcp.WithString("color", mcp.Description("Text color as #rrggbb")),
	},
	pdf.ToolPDFToJPG: {
		inputParam, outputParam, pagesParam,
		mcp.WithNumber("dpi", mcp.Description("Render resolution, 36 to 600")),
		mcp.WithNumber("quality", mcp.Description("JPEG quality, 1 to 100")),
	},
	pdf.ToolJPGToPDF: {
		inputsParam, outputParam,
		mcp.WithString("page_size", mcp.Description("fit, A3, A4, A5, Letter or Legal (default fit)")),
		mcp.WithBoolean("landscape", mcp.Description("Use landscape paper")),
	},
	pdf.ToolProtect: {
		inputParam, outputParam,
		mcp.WithString("user_password", mcp.Required(), mcp.Description("Password needed to open the file")),
		mcp.WithString("owner_password", mcp.Description("Password that lifts restrictions (defaults to the user password)")),
	},
	pdf.ToolUnlock: {
		inputParam, outputParam,
		mcp.WithString("password", mcp.Description("User or owner password")),
	},
	pdf.ToolRepair: {inputParam, outputParam},
	pdf.ToolEditPDF: {
		inputParam, outputParam,
		mcp.WithArray("annotations",
			mcp.Required(),
			mcp.Description("Rectangles to draw"),
			mcp.Items(annotationSchema),
		),
	},
	pdf.ToolOrganize: {
		inputParam, outputParam,
		mcp.WithString("pages", mcp.Required(), mcp.Description("New page order, e.g. 3,1,2 or last,1-4")),
	},
	pdf.ToolRemovePages: {
		inputParam, outputParam,
		mcp.WithString("pages", mcp.Required(), mcp.Description("Pages to delete")),
	},
	pdf.ToolExtractPages: {
		inputParam, outputParam,
		mcp.WithString("pages", mcp.Required(), mcp.Description("Pages to keep")),
	},
	pdf.ToolExtractImages: {inputParam, outputParam, pagesParam},
	pdf.ToolPDFToText: {
		inputParam, pagesParam,
		mcp.WithString("output", mcp.Description("Optional text file to write")),
	},
	pdf.ToolInfo:     {inputParam},
	pdf.ToolValidate: {inputParam},
	pdf.ToolListFiles: {
		mcp.WithString("directory", mcp.Description("Directory path to search (uses the workspace if empty)")),
		mcp.WithString("query", mcp.Description("Optional search query for fuzzy matching")),
	},
}
