package hclspec

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

// blockKind maps a top-level block type onto its desired-state list and
// the attribute names its labels fill in.
type blockKind struct {
	section string
	labels  []string
}

var blockKinds = map[string]blockKind{
	"provider":          {section: "providers", labels: []string{"name"}},
	"alert":             {section: "alerts", labels: []string{"description"}},
	"user":              {section: "users", labels: []string{"userid"}},
	"custom_attributes": {section: "custom_attributes", labels: []string{"entity_type", "entity_name"}},
	"tag_assignment":    {section: "tag_assignments", labels: []string{"resource", "resource_name"}},
	"policy_assignment": {section: "policy_assignments", labels: []string{"entity", "entity_name"}},
}

func documentSchema() *hcl.BodySchema {
	schema := &hcl.BodySchema{}
	for _, blockType := range []string{"provider", "alert", "user", "custom_attributes", "tag_assignment", "policy_assignment"} {
		schema.Blocks = append(schema.Blocks, hcl.BlockHeaderSchema{
			Type:       blockType,
			LabelNames: blockKinds[blockType].labels,
		})
	}
	return schema
}

// Loader reads HCL desired-state documents.
type Loader struct {
	logger ports.Logger
}

func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile parses path and decodes it into a DesiredState. Blocks keep
// their document order.
func (l *Loader) LoadFile(ctx context.Context, path string) (*config.DesiredState, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, apperrors.WrapUserFacing(&HCLDiagnosticsError{Operation: "parsing", FilePath: path, Diags: diags},
			apperrors.CodeDesiredParse, fmt.Sprintf("failed to parse desired state file %s", path), diags.Error())
	}

	doc, err := l.Decode(ctx, file.Body, filepath.Dir(path), path)
	if err != nil {
		return nil, err
	}
	return config.DecodeDesired(doc)
}

// Decode evaluates body into the generic document shape shared with the
// YAML source.
func (l *Loader) Decode(ctx context.Context, body hcl.Body, baseDir, name string) (map[string]any, error) {
	content, diags := body.Content(documentSchema())
	if diags.HasErrors() {
		return nil, apperrors.WrapUserFacing(&HCLDiagnosticsError{Operation: "decoding", FilePath: name, Diags: diags},
			apperrors.CodeDesiredParse, fmt.Sprintf("unexpected content in %s", name), diags.Error())
	}

	evalCtx := &hcl.EvalContext{Functions: Functions(baseDir)}
	doc := make(map[string]any)
	for _, block := range content.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kind := blockKinds[block.Type]
		entry, err := evaluateBlock(block, kind, evalCtx, name)
		if err != nil {
			return nil, err
		}
		list, _ := doc[kind.section].([]any)
		doc[kind.section] = append(list, entry)
	}
	l.logger.Debugf(ctx, "Decoded %d desired-state blocks from %s", len(content.Blocks), name)
	return doc, nil
}

func evaluateBlock(block *hcl.Block, kind blockKind, evalCtx *hcl.EvalContext, name string) (map[string]any, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, apperrors.WrapUserFacing(&HCLDiagnosticsError{Operation: "decoding block", FilePath: name, Diags: diags},
			apperrors.CodeDesiredParse, fmt.Sprintf("invalid %s block in %s", block.Type, name),
			"Blocks take attributes only; use lists and objects for nested values.")
	}

	entry := make(map[string]any, len(attrs)+len(kind.labels))
	for i, label := range kind.labels {
		entry[label] = block.Labels[i]
	}
	for attrName, attr := range attrs {
		if _, isLabel := entry[attrName]; isLabel {
			return nil, apperrors.NewUserFacing(apperrors.CodeDesiredParse,
				fmt.Sprintf("%s block %v sets %q both as label and attribute", block.Type, block.Labels, attrName), "")
		}
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, apperrors.WrapUserFacing(&HCLDiagnosticsError{Operation: "evaluating", FilePath: name, Diags: diags},
				apperrors.CodeDesiredParse, fmt.Sprintf("failed to evaluate %s.%s in %s", block.Type, attrName, name), diags.Error())
		}
		goVal, err := ConvertCtyValue(val)
		if err != nil {
			return nil, apperrors.WrapAs(&ValueConversionError{AttributeName: attrName, Err: err},
				apperrors.CodeDesiredParse, fmt.Sprintf("failed to convert %s.%s", block.Type, attrName))
		}
		entry[attrName] = goVal
	}
	return entry, nil
}
