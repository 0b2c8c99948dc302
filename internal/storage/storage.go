package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mealprep/internal/recipe"
)

// DefaultExtension is the file extension of recipe files.
const DefaultExtension = ".txt"

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// RecipeStore keeps one text file per recipe in a single directory.
type RecipeStore struct {
	basePath  string
	extension string
}

// NewRecipeStore creates a new RecipeStore and ensures the base directory exists.
// An empty extension means DefaultExtension.
func NewRecipeStore(basePath, extension string) (*RecipeStore, error) {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &IOError{Op: "create storage directory", Path: basePath, Err: err}
	}
	return &RecipeStore{basePath: basePath, extension: extension}, nil
}

// Dir returns the directory holding the recipe files.
func (s *RecipeStore) Dir() string {
	return s.basePath
}

// Extension returns the recipe file extension, including the dot.
func (s *RecipeStore) Extension() string {
	return s.extension
}

// FileName returns the file name used for a recipe called name.
func (s *RecipeStore) FileName(name string) string {
	return name + s.extension
}

func (s *RecipeStore) path(file string) string {
	return filepath.Join(s.basePath, file)
}

// List returns the names of the recipe files in the directory, sorted.
// Subdirectories and hidden files are ignored.
func (s *RecipeStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, &IOError{Op: "list", Path: s.basePath, Err: err}
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.extension) {
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads and parses the recipe file with the given file name.
func (s *RecipeStore) LoadFile(file string) (*recipe.Recipe, error) {
	data, err := os.ReadFile(s.path(file))
	if err != nil {
		return nil, &IOError{Op: "read", Path: s.path(file), Err: err}
	}
	rec, err := recipe.Parse(bytes.NewReader(data), file)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Load retrieves the recipe called name.
func (s *RecipeStore) Load(name string) (*recipe.Recipe, error) {
	return s.LoadFile(s.FileName(name))
}

// Exists checks if a recipe file for name exists.
func (s *RecipeStore) Exists(name string) bool {
	_, err := os.Stat(s.path(s.FileName(name)))
	return err == nil
}

// Save writes the recipe to the file named after it, replacing any previous
// version in a single rename. On failure the previous file, if any, is left
// untouched.
func (s *RecipeStore) Save(rec *recipe.Recipe) error {
	return s.SaveFile(s.FileName(rec.Name), rec)
}

// SaveFile is Save to a given file name in the directory, used to rewrite a
// recipe loaded from a file not named after it.
func (s *RecipeStore) SaveFile(file string, rec *recipe.Recipe) error {
	if err := recipe.ValidateName(rec.Name); err != nil {
		return err
	}
	if file != filepath.Base(file) || strings.HasPrefix(file, ".") || !strings.HasSuffix(file, s.extension) {
		return fmt.Errorf("invalid recipe file name %q", file)
	}
	target := s.path(file)
	if err := writeAtomic(target, recipe.Serialize(rec)); err != nil {
		return &IOError{Op: "write", Path: target, Err: err}
	}
	return nil
}

// Remove deletes the recipe file for name.
func (s *RecipeStore) Remove(name string) error {
	target := s.path(s.FileName(name))
	if err := os.Remove(target); err != nil {
		return &IOError{Op: "remove", Path: target, Err: err}
	}
	return nil
}

// IsNotExist reports whether err means a recipe file was missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
