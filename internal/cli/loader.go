package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/specfold/specfold/internal/compiler"
	"github.com/specfold/specfold/internal/ir"
)

// LoadDocument reads an IR document from disk. The format follows the
// file extension: .cue compiles through the CUE front end, .json
// decodes directly, .yaml/.yml converts to JSON first. All paths end
// in ir.DecodeDocument-equivalent validation, so a loaded document is
// always valid and normalized.
func LoadDocument(path string) (*ir.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("document not found: %s", path), err)
		}
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return loadCUE(path, data)
	case ".json":
		doc, err := ir.DecodeDocument(data)
		if err != nil {
			return nil, WrapExitError(ExitFailure, fmt.Sprintf("invalid document %s", path), err)
		}
		return doc, nil
	case ".yaml", ".yml":
		return loadYAML(path, data)
	default:
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("unsupported document format %q (want .cue, .json, .yaml)", filepath.Ext(path)))
	}
}

func loadCUE(path string, data []byte) (*ir.Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(string(data), cue.Filename(path))
	doc, err := compiler.CompileDocument(v)
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("compiling %s", path), err)
	}
	return doc, nil
}

func loadYAML(path string, data []byte) (*ir.Document, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("parsing %s", path), err)
	}
	jsonData, err := json.Marshal(tree)
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("converting %s", path), err)
	}
	doc, err := ir.DecodeDocument(jsonData)
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("invalid document %s", path), err)
	}
	return doc, nil
}
