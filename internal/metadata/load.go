package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadError is a failure loading a metadata directory.
type LoadError struct {
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Load compiles every .cue file under dir into one catalog.
//
// Files are unified, so a definition may be split across files. All
// definition errors are collected; the returned catalog holds every
// definition that compiled.
func Load(dir string) (*Catalog, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{&LoadError{Path: dir, Message: fmt.Sprintf("metadata directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Path: dir, Message: "not a directory"}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Path: dir, Message: fmt.Sprintf("scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Path: dir, Message: "no CUE files found"}}
	}

	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, []error{&LoadError{Path: path, Message: err.Error()}}
		}
		fv := ctx.CompileBytes(src, cue.Filename(path))
		if err := fv.Err(); err != nil {
			return nil, []error{formatCUEError(err)}
		}
		if i == 0 {
			value = fv
		} else {
			value = value.Unify(fv)
		}
	}
	return compileValue(value)
}

// LoadString compiles metadata from CUE source text.
func LoadString(src string) (*Catalog, []error) {
	v := cuecontext.New().CompileString(src, cue.Filename("metadata.cue"))
	return compileValue(v)
}

func compileValue(value cue.Value) (*Catalog, []error) {
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	catalog := NewCatalog()
	var errs []error

	if entities := value.LookupPath(cue.ParsePath("entity")); entities.Exists() {
		iter, err := entities.Fields()
		if err != nil {
			errs = append(errs, formatCUEError(err))
		} else {
			for iter.Next() {
				e, err := CompileEntity(iter.Value())
				if err != nil {
					errs = append(errs, fmt.Errorf("entity.%s: %w", iter.Label(), err))
					continue
				}
				catalog.AddEntity(e)
			}
		}
	}

	if rels := value.LookupPath(cue.ParsePath("relationship")); rels.Exists() {
		iter, err := rels.Fields()
		if err != nil {
			errs = append(errs, formatCUEError(err))
		} else {
			for iter.Next() {
				rel, err := CompileRelationship(iter.Value())
				if err != nil {
					errs = append(errs, fmt.Errorf("relationship.%s: %w", iter.Label(), err))
					continue
				}
				if err := catalog.AddRelationship(rel); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	return catalog, errs
}

// FindCUEFiles returns every .cue file under dir in lexical order.
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
	slices.Sort(files)
	return files, err
}

// Join folds load errors into one error, or nil.
func Join(errs []error) error {
	return errors.Join(errs...)
}
