package ingest

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// resultSchema is the contract of a per-run result file. Identifiers must be
// non-blank strings; metrics and paper flags are optional but typed.
const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["method_name", "dataset_name", "scene_name"],
  "properties": {
    "method_name":    {"type": "string", "pattern": "\\S"},
    "dataset_name":   {"type": "string", "pattern": "\\S"},
    "scene_name":     {"type": "string", "pattern": "\\S"},
    "psnr":           {"type": "number", "minimum": 0},
    "ssim":           {"type": "number", "minimum": 0},
    "lpips":          {"type": "number", "minimum": 0},
    "time":           {"type": "number", "minimum": 0},
    "max_gpu_memory": {"type": "number", "minimum": 0},
    "has_paper_psnr":  {"type": "boolean"},
    "has_paper_ssim":  {"type": "boolean"},
    "has_paper_lpips": {"type": "boolean"},
    "hasPaperPsnr":    {"type": "boolean"},
    "hasPaperSsim":    {"type": "boolean"},
    "hasPaperLpips":   {"type": "boolean"}
  }
}`

var compiledSchema = mustCompileSchema(resultSchema)

func mustCompileSchema(def string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(def))
	if err != nil {
		panic(fmt.Sprintf("compile result schema: %v", err))
	}
	return schema
}

// validateDocument checks raw JSON against the result file schema.
func validateDocument(raw []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("failed validation: %s", strings.Join(details, "; "))
}
