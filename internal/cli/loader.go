package cli

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pathq/internal/engine"
	"github.com/roach88/pathq/internal/ir"
)

//go:embed schema/request.cue
var requestSchema string

// LoadMode controls how errors are handled during request loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadError represents an error that occurred during request loading.
type LoadError struct {
	Code    string
	Message string
	File    string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// requestExtensions are the file types LoadRequest understands.
var requestExtensions = map[string]bool{
	".cue":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
}

// LoadJobs loads every request file named by paths. Directories are
// searched recursively. Each job is named after its file.
// If mode is LoadModeFailFast, returns on first error.
func LoadJobs(paths []string, mode LoadMode) ([]engine.Job, []error) {
	var (
		jobs []engine.Job
		errs []error
	)
	for _, path := range paths {
		files, err := expandPath(path)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return jobs, errs
			}
			continue
		}
		for _, file := range files {
			req, err := LoadRequest(file)
			if err != nil {
				errs = append(errs, err)
				if mode == LoadModeFailFast {
					return jobs, errs
				}
				continue
			}
			jobs = append(jobs, engine.Job{Name: file, Request: req})
		}
	}
	return jobs, errs
}

// expandPath returns path itself, or the request files under it if it is a
// directory.
func expandPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := FindRequestFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no request files found in %s", path)}
	}
	return files, nil
}

// FindRequestFiles walks the directory and returns all request file paths
// in lexical order.
func FindRequestFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && requestExtensions[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// LoadRequest reads one request file. The format follows the extension:
// .cue files are checked against the embedded request schema, .json and
// .yaml/.yml files are decoded strictly.
func LoadRequest(path string) (ir.Request, error) {
	ext := filepath.Ext(path)
	if !requestExtensions[ext] {
		return ir.Request{}, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported request file type %q (want .cue, .json, .yaml or .yml)", ext),
			File:    path,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Request{}, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: path}
	}

	switch ext {
	case ".cue":
		return decodeCUE(path, data)
	case ".json":
		return decodeJSON(path, data)
	default:
		return decodeYAML(path, data)
	}
}

// decodeCUE unifies the file with #Request and decodes the result.
func decodeCUE(path string, data []byte) (ir.Request, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(requestSchema, cue.Filename("request.cue"))
	if err := schema.Err(); err != nil {
		return ir.Request{}, fmt.Errorf("compile request schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return ir.Request{}, cueLoadError(ErrCodeLoadFailed, path, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Request")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return ir.Request{}, cueLoadError(ErrCodeBuildFailed, path, err)
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return ir.Request{}, cueLoadError(ErrCodeBuildFailed, path, err)
	}
	return decodeJSON(path, raw)
}

// cueLoadError converts a CUE error to a LoadError with position info.
func cueLoadError(code, path string, err error) *LoadError {
	loadErr := &LoadError{Code: code, Message: cueerrors.Details(err, nil), File: path}
	var cueErr cueerrors.Error
	if errors.As(err, &cueErr) {
		loadErr.Message = cueErr.Error()
		loadErr.Pos = cueErr.Position()
		if positions := cueerrors.Positions(err); !loadErr.Pos.IsValid() && len(positions) > 0 {
			loadErr.Pos = positions[0]
		}
	}
	return loadErr
}

func decodeJSON(path string, data []byte) (ir.Request, error) {
	var req ir.Request
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return ir.Request{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("invalid JSON request: %v", err), File: path}
	}
	return req, nil
}

func decodeYAML(path string, data []byte) (ir.Request, error) {
	var req ir.Request
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&req); err != nil {
		return ir.Request{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("invalid YAML request: %v", err), File: path}
	}
	return req, nil
}

// Error code constants - unified across all CLI commands.
// Compilation errors (E2xx) and validation errors (E1xx) come from the
// compiler package.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeScanError         = "E002" // Directory scan error
	ErrCodeNoFiles           = "E003" // No request files found
	ErrCodeLoadFailed        = "E004" // Request file unreadable or malformed
	ErrCodeNotFound          = "E005" // Path not found
	ErrCodeBuildFailed       = "E006" // CUE request violates the schema
	ErrCodeWriteFailed       = "E007" // File write error
	ErrCodeUnsupportedFormat = "E008" // Unknown request file extension
	ErrCodeJournal           = "E009" // Journal unavailable
)
