package pdf

import (
	"bytes"
	"context"
	"encoding/json"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Tools lists every tool Invoke accepts, in catalog order
var Tools = []string{
	ToolMerge, ToolSplit, ToolCompress, ToolWatermark, ToolSign, ToolRotate,
	ToolPageNumbers, ToolPDFToJPG, ToolJPGToPDF, ToolProtect, ToolUnlock,
	ToolRepair, ToolEditPDF, ToolOrganize, ToolRemovePages, ToolExtractPages,
	ToolExtractImages, ToolPDFToText, ToolInfo, ToolValidate, ToolListFiles,
}

// Invoke decodes args into the request type of tool and runs it. It backs
// the MCP server, the HTTP API and the command line, which all describe a
// request as a JSON object. Unknown fields are rejected.
func (s *Service) Invoke(ctx context.Context, tool string, args json.RawMessage) (any, error) {
	switch tool {
	case ToolMerge:
		return invoke(ctx, tool, args, s.Merge)
	case ToolSplit:
		return invoke(ctx, tool, args, s.Split)
	case ToolCompress:
		return invoke(ctx, tool, args, s.Compress)
	case ToolWatermark:
		return invoke(ctx, tool, args, s.Watermark)
	case ToolSign:
		return invoke(ctx, tool, args, s.Sign)
	case ToolRotate:
		return invoke(ctx, tool, args, s.Rotate)
	case ToolPageNumbers:
		return invoke(ctx, tool, args, s.PageNumbers)
	case ToolPDFToJPG:
		return invoke(ctx, tool, args, s.PDFToJPG)
	case ToolJPGToPDF:
		return invoke(ctx, tool, args, s.JPGToPDF)
	case ToolProtect:
		return invoke(ctx, tool, args, s.Protect)
	case ToolUnlock:
		return invoke(ctx, tool, args, s.Unlock)
	case ToolRepair:
		return invoke(ctx, tool, args, s.Repair)
	case ToolEditPDF:
		return invoke(ctx, tool, args, s.EditPDF)
	case ToolOrganize:
		return invoke(ctx, tool, args, s.Organize)
	case ToolRemovePages:
		return invoke(ctx, tool, args, s.RemovePages)
	case ToolExtractPages:
		return invoke(ctx, tool, args, s.ExtractPages)
	case ToolExtractImages:
		return invoke(ctx, tool, args, s.ExtractImages)
	case ToolPDFToText:
		return invoke(ctx, tool, args, s.PDFToText)
	case ToolInfo:
		return invoke(ctx, tool, args, s.Info)
	case ToolValidate:
		return invoke(ctx, tool, args, s.Validate)
	case ToolListFiles:
		return invoke(ctx, tool, args, s.ListFiles)
	default:
		return nil, pdferrors.New(pdferrors.KindNotFound, tool, "unknown tool: "+tool, nil)
	}
}

func invoke[Req, Res any](ctx context.Context, tool string, args json.RawMessage, op func(context.Context, Req) (Res, error)) (any, error) {
	var req Req
	if len(bytes.TrimSpace(args)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(args))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return nil, pdferrors.Validation(tool, "invalid arguments").WithDetails("%v", err)
		}
	}
	res, err := op(ctx, req)
	if err != nil {
		return nil, err
	}
	return res, nil
}
