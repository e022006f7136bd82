package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error codes reported by LoadDir. The CLI surfaces them verbatim.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002"
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004"
	ErrCodeNotFound    = "E005"
	ErrCodeBuildFailed = "E006"

	ErrCodeFields      = "E101" // no fields declared
	ErrCodeIDField     = "E102" // id field not declared
	ErrCodeInvalidType = "E103"
	ErrCodeWhere       = "E110"
	ErrCodeSort        = "E111"
)

// LoadResult holds the entities found in a specs directory.
type LoadResult struct {
	Entities  []Entity
	CUEValue  cue.Value
	FileCount int
}

// Entity looks up a loaded entity by name.
func (r *LoadResult) Entity(name string) (*Entity, bool) {
	for i := range r.Entities {
		if r.Entities[i].Name == name {
			return &r.Entities[i], true
		}
	}
	return nil, false
}

// LoadError is an error that occurred while loading a specs directory.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadDir loads every entity declared under `entity:` in the CUE package at dir.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err), Err: inst.Err}}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Err: err}}
	}

	result, errs := Compile(value, mode)
	result.FileCount = len(files)
	return result, errs
}

// Compile extracts entities from an already-built CUE value.
func Compile(value cue.Value, mode LoadMode) (*LoadResult, []error) {
	var errs []error
	result := &LoadResult{CUEValue: value}

	entitiesVal := value.LookupPath(cue.ParsePath("entity"))
	if entitiesVal.Exists() {
		iter, err := entitiesVal.Fields()
		if err != nil {
			return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating entities: %v", err), Err: err}}
		}
		for iter.Next() {
			e, err := CompileEntity(iter.Value())
			if err != nil {
				errs = append(errs, convertCompileError(err, "entity."+iter.Label()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Entities = append(result.Entities, *e)
		}
	}

	if len(result.Entities) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no entities found in specs"})
	}
	return result, errs
}

// FindCUEFiles walks dir and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func convertCompileError(err error, context string) *LoadError {
	var ce *CompileError
	if errors.As(err, &ce) {
		return &LoadError{
			Code:    errorCodeForField(ce.Field),
			Message: ce.Error(),
			Err:     ce,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
		Err:     err,
	}
}

// errorCodeForField maps a CompileError field to an error code.
func errorCodeForField(field string) string {
	switch {
	case field == "fields":
		return ErrCodeFields
	case field == "id":
		return ErrCodeIDField
	case field == "type":
		return ErrCodeInvalidType
	case strings.HasSuffix(field, ".where"):
		return ErrCodeWhere
	case strings.HasSuffix(field, ".sort"):
		return ErrCodeSort
	default:
		return ErrCodeGeneric
	}
}

