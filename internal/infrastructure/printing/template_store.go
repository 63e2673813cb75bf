package printing

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dms/backend/internal/domain/printing"
	"github.com/google/uuid"
)

// TemplateStore manages static print templates.
// It supports loading from an external directory (for customization)
// with fallback to embedded templates.
type TemplateStore struct {
	externalDir string
	templates   []printing.PrintTemplate
	mu          sync.RWMutex
}

// TemplateStoreConfig configures the template store
type TemplateStoreConfig struct {
	// ExternalDir is the directory to load templates from.
	// If empty or directory doesn't exist, embedded templates are used.
	ExternalDir string
}

// NewTemplateStore creates a new template store
func NewTemplateStore(config *TemplateStoreConfig) (*TemplateStore, error) {
	store := &TemplateStore{}

	if config != nil && config.ExternalDir != "" {
		store.externalDir = config.ExternalDir
	}

	if err := store.loadTemplates(); err != nil {
		return nil, err
	}

	return store, nil
}

// loadTemplates loads all templates from external dir or embedded
func (s *TemplateStore) loadTemplates() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := GetDefaultTemplates()
	s.templates = make([]printing.PrintTemplate, 0, len(defaults))

	for _, dt := range defaults {
		content, err := s.loadTemplateContent(dt.FilePath)
		if err != nil {
			return fmt.Errorf("failed to load template %s: %w", dt.Name, err)
		}

		s.templates = append(s.templates, printing.PrintTemplate{
			ID:           generateTemplateID(dt.DocType, dt.PaperSize, dt.Orientation),
			DocumentType: dt.DocType,
			Name:         dt.Name,
			Description:  dt.Description,
			Content:      content,
			PaperSize:    dt.PaperSize,
			Orientation:  dt.Orientation,
			Margins:      dt.Margins,
			IsDefault:    dt.IsDefault,
		})
	}

	return nil
}

// loadTemplateContent loads template content from external dir or embedded
func (s *TemplateStore) loadTemplateContent(embeddedPath string) (string, error) {
	if s.externalDir != "" {
		filename := filepath.Base(embeddedPath)
		externalPath := filepath.Join(s.externalDir, filename)

		if content, err := os.ReadFile(externalPath); err == nil {
			return string(content), nil
		}
		// Fall through to embedded if external not found
	}

	return LoadTemplateContent(embeddedPath)
}

// GetByID returns a template by its ID
func (s *TemplateStore) GetByID(id uuid.UUID) *printing.PrintTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.templates {
		if s.templates[i].ID == id {
			return &s.templates[i]
		}
	}
	return nil
}

// GetDefault returns the default template for a document type
func (s *TemplateStore) GetDefault(docType printing.DocType) *printing.PrintTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.templates {
		if s.templates[i].DocumentType == docType && s.templates[i].IsDefault {
			return &s.templates[i]
		}
	}
	return nil
}

// GetAll returns all templates
func (s *TemplateStore) GetAll() []printing.PrintTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]printing.PrintTemplate, len(s.templates))
	copy(result, s.templates)
	return result
}

// Reload reloads all templates from disk/embedded
func (s *TemplateStore) Reload() error {
	return s.loadTemplates()
}

// generateTemplateID generates a stable UUID v5 based on doc type, paper
// size, and orientation, so the same template always has the same ID
func generateTemplateID(docType printing.DocType, paperSize printing.PaperSize, orientation printing.Orientation) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") // URL namespace
	name := fmt.Sprintf("print-template:%s:%s:%s", docType, paperSize, orientation)
	return uuid.NewSHA1(namespace, []byte(name))
}
