// Package assets resolves the static JSON bundles served to the frontend:
// UI translations and per-profession question sets.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Kind selects the asset directory and its fallback key.
type Kind string

const (
	KindTranslation Kind = "translation"
	KindQuestionSet Kind = "question-set"
)

const (
	DefaultTranslation = "en"
	DefaultQuestionSet = "general"
)

var ErrAssetNotFound = errors.New("asset not found")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type Resolver struct {
	translationsDir string
	questionsDir    string
}

func NewResolver(translationsDir, questionsDir string) *Resolver {
	return &Resolver{translationsDir: translationsDir, questionsDir: questionsDir}
}

// Resolve returns the path of the bundle for key, or of the kind's default
// bundle when key is missing or is not a plain identifier.
func (r *Resolver) Resolve(kind Kind, key string) (string, error) {
	dir, fallback, err := r.location(kind)
	if err != nil {
		return "", err
	}

	if validKey.MatchString(key) {
		path := filepath.Join(dir, key+".json")
		if isFile(path) {
			return path, nil
		}
	}

	path := filepath.Join(dir, fallback+".json")
	if !isFile(path) {
		return "", fmt.Errorf("%s %q: %w", kind, fallback, ErrAssetNotFound)
	}
	return path, nil
}

// Read resolves key and returns the file contents.
func (r *Resolver) Read(kind Kind, key string) ([]byte, error) {
	path, err := r.Resolve(kind, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s %q: %w", kind, key, ErrAssetNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (r *Resolver) location(kind Kind) (dir, fallback string, err error) {
	switch kind {
	case KindTranslation:
		return r.translationsDir, DefaultTranslation, nil
	case KindQuestionSet:
		return r.questionsDir, DefaultQuestionSet, nil
	default:
		return "", "", fmt.Errorf("unknown asset kind %q", kind)
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
