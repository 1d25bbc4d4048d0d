package worker

import (
	"fmt"
	"strings"

	"github.com/templateflow/api/internal/conflict"
	"github.com/templateflow/api/internal/model"
)

// generateScript renders the ExtendScript fragment that fills the
// template: one statement block per assigned placeholder, plus the
// document-level transform when one is safe or was approved.
func generateScript(job *model.Job) (string, error) {
	if job.MatchSet == nil {
		return "", fmt.Errorf("job %s has no match set", job.ID)
	}

	srcByID := make(map[string]model.SourceLayer, len(job.SourceLayers))
	for _, s := range job.SourceLayers {
		srcByID[s.ID] = s
	}
	tgtByID := make(map[string]model.TargetPlaceholder, len(job.Targets))
	for _, t := range job.Targets {
		tgtByID[t.ID] = t
	}

	var b strings.Builder
	b.WriteString("// Generated by templateflow\n")
	fmt.Fprintf(&b, "// Job: %s (%s)\n", job.ID, job.Name)
	b.WriteString("(function () {\n")
	b.WriteString("  var comp = app.project.activeItem;\n")

	transform := conflict.ComputeTransform(job.SourceDims, job.TargetDims, model.TransformFit)
	fmt.Fprintf(&b, "  var placement = { scale: %.6f, offsetX: %.2f, offsetY: %.2f };\n",
		transform.Scale, transform.OffsetX, transform.OffsetY)

	filled := 0
	for _, a := range job.MatchSet.Assignments {
		if a.TargetID == nil {
			continue
		}
		src, ok := srcByID[a.SourceID]
		if !ok {
			return "", fmt.Errorf("assignment references unknown source layer %q", a.SourceID)
		}
		tgt, ok := tgtByID[*a.TargetID]
		if !ok {
			return "", fmt.Errorf("assignment references unknown placeholder %q", *a.TargetID)
		}

		fmt.Fprintf(&b, "\n  // %s -> %s (%s, confidence %.2f)\n",
			src.Name, tgt.Name, a.Method, a.Confidence)
		fmt.Fprintf(&b, "  var layer = comp.layer(%s);\n", jsString(tgt.Name))
		if src.Kind == model.LayerKindText {
			fmt.Fprintf(&b, "  layer.property(\"Source Text\").setValue(%s);\n", jsString(src.TextContent))
		} else {
			fmt.Fprintf(&b, "  replaceFootage(layer, %s);\n", jsString(src.Path))
			b.WriteString("  layer.property(\"Scale\").setValue([placement.scale * 100, placement.scale * 100]);\n")
			b.WriteString("  layer.property(\"Position\").setValue([comp.width / 2 + placement.offsetX, comp.height / 2 + placement.offsetY]);\n")
		}
		filled++
	}

	if filled == 0 {
		return "", fmt.Errorf("job %s has no assigned placeholders to fill", job.ID)
	}

	b.WriteString("\n})();\n")
	return b.String(), nil
}

// jsString quotes a value as an ExtendScript string literal
func jsString(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	)
	return "\"" + r.Replace(s) + "\""
}
