// Package hclcheck validates terraform sources without invoking terraform.
package hclcheck

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.HCLChecker = (*Checker)(nil)

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "terraform"}},
}

var terraformSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "required_version"}},
}

// Checker implements ports.HCLChecker with hcl/v2.
type Checker struct{}

// NewChecker creates a Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check parses every *.tf and *.tf.json file directly inside dir. Syntax
// errors and a non-string terraform.required_version fail with ErrHCLInvalid.
func (c *Checker) Check(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrHCLInvalid, err.Error()), "dir", dir)
	}

	parser := hclparse.NewParser()
	var diags hcl.Diagnostics
	files := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		var (
			file  *hcl.File
			fdiag hcl.Diagnostics
		)
		switch {
		case strings.HasSuffix(e.Name(), ".tf.json"):
			file, fdiag = parser.ParseJSONFile(path)
		case strings.HasSuffix(e.Name(), ".tf"):
			file, fdiag = parser.ParseHCLFile(path)
		default:
			continue
		}
		files++
		diags = append(diags, fdiag...)
		if file != nil && !fdiag.HasErrors() {
			diags = append(diags, checkRequiredVersion(file.Body)...)
		}
	}

	if diags.HasErrors() {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrHCLInvalid, diags.Error()),
			"dir", dir), "errors", len(diags.Errs()))
	}
	if files == 0 {
		return zerr.With(zerr.Wrap(domain.ErrHCLInvalid, "no terraform files found"), "dir", dir)
	}
	return nil
}

func checkRequiredVersion(body hcl.Body) hcl.Diagnostics {
	content, _, diags := body.PartialContent(rootSchema)
	if diags.HasErrors() {
		return diags
	}
	for _, block := range content.Blocks {
		inner, _, d := block.Body.PartialContent(terraformSchema)
		diags = append(diags, d...)
		if inner == nil {
			continue
		}
		attr, ok := inner.Attributes["required_version"]
		if !ok {
			continue
		}
		val, d := attr.Expr.Value(nil)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		if !val.Type().Equals(cty.String) || val.IsNull() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid required_version",
				Detail:   "terraform.required_version must be a version constraint string.",
				Subject:  attr.Expr.Range().Ptr(),
			})
		}
	}
	return diags
}
