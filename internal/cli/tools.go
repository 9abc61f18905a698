package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-tools/internal/descriptions"
	"github.com/a3tai/pdf-tools/internal/pdf"
)

type flagKind int

const (
	kindString flagKind = iota
	kindInt
	kindFloat
	kindBool
	kindJSON
)

// toolFlag maps a command line flag onto one request field
type toolFlag struct {
	name  string
	key   string
	kind  flagKind
	usage string
}

func str(name, usage string) toolFlag   { return toolFlag{name, jsonKey(name), kindString, usage} }
func num(name, usage string) toolFlag   { return toolFlag{name, jsonKey(name), kindInt, usage} }
func float(name, usage string) toolFlag { return toolFlag{name, jsonKey(name), kindFloat, usage} }
func boolean(name, usage string) toolFlag {
	return toolFlag{name, jsonKey(name), kindBool, usage}
}

func jsonKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

var (
	outputFlag = str("output", "Output path (defaults to a name next to the input)")
	pagesFlag  = str("pages", "Page selection such as 1-3,5,8-, last, odd or even")
)

// arity describes how positional arguments map onto the request
type arity int

const (
	oneInput arity = iota
	manyInputs
	optionalDirectory
)

type toolCommand struct {
	arity arity
	flags []toolFlag
}

// toolCommands defines the flags of every tool subcommand. The global --dpi
// flag is the render default, so per-run resolution is --page-dpi.
var toolCommands = map[string]toolCommand{
	pdf.ToolMerge: {manyInputs, []toolFlag{outputFlag}},
	pdf.ToolSplit: {oneInput, []toolFlag{
		outputFlag,
		num("span", "Pages per part"),
		str("ranges", "Explicit parts such as 1-3,4-10,11-"),
	}},
	pdf.ToolCompress: {oneInput, []toolFlag{
		outputFlag,
		str("level", "lossless, balanced or strong"),
		{"page-dpi", "dpi", kindInt, "Render resolution for balanced and strong"},
		num("quality", "JPEG quality for balanced and strong"),
	}},
	pdf.ToolWatermark: {oneInput, []toolFlag{
		outputFlag, pagesFlag,
		str("text", "Watermark text"),
		str("image", "Watermark image, instead of text"),
		str("font-name", "Standard PDF font"),
		num("font-size", "Font size in points"),
		str("color", "Text color as #rrggbb"),
		float("opacity", "0 to 1"),
		float("rotation", "Degrees, -180 to 180"),
		str("position", "tl, tc, tr, l, c, r, bl, bc or br"),
		float("scale", "Image size relative to the page"),
		boolean("on-top", "Stamp over the page content"),
	}},
	pdf.ToolSign: {oneInput, []toolFlag{
		outputFlag,
		str("image", "Signature image"),
		num("page", "Page to sign"),
		float("x", "Points from the left edge"),
		float("y", "Points from the bottom edge"),
		float("scale", "Scale factor of the image"),
		float("width", "Signature width in points"),
	}},
	pdf.ToolRotate: {oneInput, []toolFlag{
		outputFlag, pagesFlag,
		num("rotation", "Clockwise degrees, a multiple of 90"),
	}},
	pdf.ToolPageNumbers: {oneInput, []toolFlag{
		outputFlag, pagesFlag,
		str("format", `Label with {n} and {total}, e.g. "Page {n} of {total}"`),
		str("position", "tl, tc, tr, l, c, r, bl, bc or br"),
		num("font-size", "Font size in points"),
		num("start-at", "Number of the first numbered page"),
		float("margin", "Distance from the page edge in points"),
		str("color", "Text color as #rrggbb"),
	}},
	pdf.ToolPDFToJPG: {oneInput, []toolFlag{
		outputFlag, pagesFlag,
		{"page-dpi", "dpi", kindInt, "Render resolution, 36 to 600"},
		num("quality", "JPEG quality, 1 to 100"),
	}},
	pdf.ToolJPGToPDF: {manyInputs, []toolFlag{
		outputFlag,
		str("page-size", "fit, A3, A4, A5, Letter or Legal"),
		boolean("landscape", "Use landscape paper"),
	}},
	pdf.ToolProtect: {oneInput, []toolFlag{
		outputFlag,
		str("user-password", "Password needed to open the file"),
		str("owner-password", "Password that lifts restrictions"),
	}},
	pdf.ToolUnlock: {oneInput, []toolFlag{
		outputFlag,
		str("password", "User or owner password"),
	}},
	pdf.ToolRepair: {oneInput, []toolFlag{outputFlag}},
	pdf.ToolEditPDF: {oneInput, []toolFlag{
		outputFlag,
		{"annotations", "annotations", kindJSON, `JSON array, e.g. [{"page":1,"x":50,"y":50,"width":100,"height":20,"text":"Draft"}]`},
	}},
	pdf.ToolOrganize:      {oneInput, []toolFlag{outputFlag, str("pages", "New page order, e.g. 3,1,2")}},
	pdf.ToolRemovePages:   {oneInput, []toolFlag{outputFlag, str("pages", "Pages to delete")}},
	pdf.ToolExtractPages:  {oneInput, []toolFlag{outputFlag, str("pages", "Pages to keep")}},
	pdf.ToolExtractImages: {oneInput, []toolFlag{outputFlag, pagesFlag}},
	pdf.ToolPDFToText:     {oneInput, []toolFlag{pagesFlag, str("output", "Text file to write")}},
	pdf.ToolInfo:          {oneInput, nil},
	pdf.ToolValidate:      {oneInput, nil},
	pdf.ToolListFiles:     {optionalDirectory, []toolFlag{str("query", "Fuzzy filter on file names")}},
}

// newToolCmds creates one subcommand per tool, in catalog order
func (a *App) newToolCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(pdf.Tools))
	for _, tool := range pdf.Tools {
		cmds = append(cmds, a.newToolCmd(tool, toolCommands[tool]))
	}
	return cmds
}

func (a *App) newToolCmd(tool string, spec toolCommand) *cobra.Command {
	entry, _ := descriptions.Lookup(tool)

	cmd := &cobra.Command{
		Use:     tool + " " + usageArgs(spec.arity),
		Short:   entry.Summary,
		Long:    descriptions.GetToolDescription(entry.Name),
		GroupID: "tools",
		Args:    positional(spec.arity),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildArgs(cmd.Flags(), spec, args)
			if err != nil {
				return err
			}
			return a.runTool(cmd, tool, req)
		},
	}

	flags := cmd.Flags()
	for _, f := range spec.flags {
		switch f.kind {
		case kindInt:
			flags.Int(f.name, 0, f.usage)
		case kindFloat:
			flags.Float64(f.name, 0, f.usage)
		case kindBool:
			flags.Bool(f.name, false, f.usage)
		default:
			flags.String(f.name, "", f.usage)
		}
	}
	return cmd
}

func usageArgs(n arity) string {
	switch n {
	case manyInputs:
		return "FILE..."
	case optionalDirectory:
		return "[DIRECTORY]"
	default:
		return "FILE"
	}
}

func positional(n arity) cobra.PositionalArgs {
	switch n {
	case manyInputs:
		return cobra.MinimumNArgs(1)
	case optionalDirectory:
		return cobra.MaximumNArgs(1)
	default:
		return cobra.ExactArgs(1)
	}
}

// buildArgs turns positional arguments and the flags the user set into
// the tool's JSON request. Unset flags are left out so the service applies
// its defaults.
func buildArgs(flags *pflag.FlagSet, spec toolCommand, args []string) (json.RawMessage, error) {
	req := map[string]interface{}{}
	switch spec.arity {
	case manyInputs:
		req["inputs"] = args
	case optionalDirectory:
		if len(args) == 1 {
			req["directory"] = args[0]
		}
	default:
		req["input"] = args[0]
	}

	for _, f := range spec.flags {
		if !flags.Changed(f.name) {
			continue
		}
		var (
			v   interface{}
			err error
		)
		switch f.kind {
		case kindInt:
			v, err = flags.GetInt(f.name)
		case kindFloat:
			v, err = flags.GetFloat64(f.name)
		case kindBool:
			v, err = flags.GetBool(f.name)
		case kindJSON:
			var s string
			if s, err = flags.GetString(f.name); err == nil {
				if !json.Valid([]byte(s)) {
					return nil, fmt.Errorf("--%s must be valid JSON", f.name)
				}
				v = json.RawMessage(s)
			}
		default:
			v, err = flags.GetString(f.name)
		}
		if err != nil {
			return nil, err
		}
		req[f.key] = v
	}

	return json.Marshal(req)
}
