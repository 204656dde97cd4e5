package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	dbutil "github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrInvalidSectionKey is returned for keys that are not lower_snake identifiers.
	ErrInvalidSectionKey = errors.New("editor: invalid section key")
	// ErrInvalidContent is returned when the content blob does not fit the section schema.
	ErrInvalidContent = errors.New("editor: invalid content")
	// ErrSectionNotFound is returned when no row exists for the key.
	ErrSectionNotFound = errors.New("editor: section not found")
	// ErrVersionConflict is returned when the stored version differs from the expected one.
	ErrVersionConflict = errors.New("editor: version conflict")
)

var sectionKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// ChangeNotifier is told about every successful write.
type ChangeNotifier interface {
	Changed(ctx context.Context)
}

// SaveInput is a full replacement of a section's content.
type SaveInput struct {
	Content         json.RawMessage // Entire content object; replaces the stored blob.
	Title           *string         // Optional admin-facing title.
	Description     *string         // Optional admin-facing description.
	Images          json.RawMessage // Optional image map; nil keeps the stored one.
	ExpectedVersion *int64          // When set, 0 means the row must not exist yet.
}

// Editor reads and writes content sections.
type Editor struct {
	db       *gorm.DB
	notifier ChangeNotifier
	nowFn    func() time.Time
}

// New constructs an Editor. notifier may be nil.
func New(db *gorm.DB, notifier ChangeNotifier) *Editor {
	return &Editor{db: db, notifier: notifier, nowFn: time.Now}
}

// List returns every stored section ordered by key.
func (e *Editor) List(ctx context.Context) ([]models.ContentSection, error) {
	var rows []models.ContentSection
	if errFind := e.db.WithContext(ctx).Order("section_key ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("editor: list sections: %w", errFind)
	}
	return rows, nil
}

// Get returns the stored row for key.
func (e *Editor) Get(ctx context.Context, key string) (models.ContentSection, error) {
	if !sectionKeyPattern.MatchString(key) {
		return models.ContentSection{}, ErrInvalidSectionKey
	}
	var row models.ContentSection
	errFind := e.db.WithContext(ctx).Where("section_key = ?", key).First(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return models.ContentSection{}, ErrSectionNotFound
	}
	if errFind != nil {
		return models.ContentSection{}, fmt.Errorf("editor: get section: %w", errFind)
	}
	return row, nil
}

// Save replaces the content of key in one write and returns the stored row.
func (e *Editor) Save(ctx context.Context, key string, in SaveInput) (models.ContentSection, error) {
	key = strings.TrimSpace(key)
	if !sectionKeyPattern.MatchString(key) {
		return models.ContentSection{}, ErrInvalidSectionKey
	}
	content, errContent := normalizeContent(Schema(key), in.Content)
	if errContent != nil {
		return models.ContentSection{}, errContent
	}
	images, errImages := normalizeImages(in.Images)
	if errImages != nil {
		return models.ContentSection{}, errImages
	}

	var saved models.ContentSection
	var errSave error
	// Without an expected version a lost race is retried once so the last writer wins.
	for attempt := 0; attempt < 2; attempt++ {
		saved, errSave = e.save(ctx, key, content, images, in)
		if !errors.Is(errSave, ErrVersionConflict) || in.ExpectedVersion != nil {
			break
		}
	}
	if errSave != nil {
		return models.ContentSection{}, errSave
	}

	log.WithFields(log.Fields{
		"section": key,
		"version": saved.Version,
	}).Info("content section saved")
	if e.notifier != nil {
		e.notifier.Changed(ctx)
	}
	return saved, nil
}

func (e *Editor) save(ctx context.Context, key string, content datatypes.JSON, images datatypes.JSON, in SaveInput) (models.ContentSection, error) {
	var saved models.ContentSection
	now := e.nowFn().UTC()
	errTx := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ContentSection
		errFind := tx.Where("section_key = ?", key).First(&existing).Error
		switch {
		case errors.Is(errFind, gorm.ErrRecordNotFound):
			if in.ExpectedVersion != nil && *in.ExpectedVersion != 0 {
				return ErrVersionConflict
			}
			schema := Schema(key)
			row := models.ContentSection{
				SectionKey:  key,
				Title:       valueOr(in.Title, schema.Title),
				Description: valueOr(in.Description, schema.Description),
				Content:     content,
				Images:      images,
				Version:     1,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if row.Images == nil {
				row.Images = datatypes.JSON([]byte("{}"))
			}
			if errCreate := tx.Create(&row).Error; errCreate != nil {
				if dbutil.IsUniqueViolation(errCreate) {
					return ErrVersionConflict
				}
				return fmt.Errorf("editor: create section: %w", errCreate)
			}
			saved = row
			return nil
		case errFind != nil:
			return fmt.Errorf("editor: load section: %w", errFind)
		}

		if in.ExpectedVersion != nil && *in.ExpectedVersion != existing.Version {
			return ErrVersionConflict
		}
		updates := map[string]any{
			"content":    content,
			"version":    existing.Version + 1,
			"updated_at": now,
		}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if images != nil {
			updates["images"] = images
		}
		res := tx.Model(&models.ContentSection{}).
			Where("id = ? AND version = ?", existing.ID, existing.Version).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("editor: update section: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return tx.First(&saved, existing.ID).Error
	})
	if errTx != nil {
		return models.ContentSection{}, errTx
	}
	return saved, nil
}

// Delete removes the section so the page falls back to built-in defaults.
func (e *Editor) Delete(ctx context.Context, key string) error {
	if !sectionKeyPattern.MatchString(key) {
		return ErrInvalidSectionKey
	}
	res := e.db.WithContext(ctx).Where("section_key = ?", key).Delete(&models.ContentSection{})
	if res.Error != nil {
		return fmt.Errorf("editor: delete section: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSectionNotFound
	}
	log.WithField("section", key).Info("content section deleted")
	if e.notifier != nil {
		e.notifier.Changed(ctx)
	}
	return nil
}

// normalizeContent checks that raw is a JSON object whose known fields
// have the shape declared by schema. Unknown fields pass through.
func normalizeContent(schema SectionSchema, raw json.RawMessage) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidContent)
	}
	var content map[string]any
	if errUnmarshal := json.Unmarshal(raw, &content); errUnmarshal != nil {
		return nil, fmt.Errorf("%w: content must be a JSON object", ErrInvalidContent)
	}
	if errCheck := checkFields(schema.Fields, content, ""); errCheck != nil {
		return nil, errCheck
	}
	normalized, errMarshal := json.Marshal(content)
	if errMarshal != nil {
		return nil, fmt.Errorf("editor: encode content: %w", errMarshal)
	}
	return datatypes.JSON(normalized), nil
}

func checkFields(fields []Field, values map[string]any, prefix string) error {
	for _, field := range fields {
		value, ok := values[field.Key]
		if !ok || value == nil {
			continue
		}
		path := prefix + field.Key
		switch field.Kind {
		case KindText, KindTextarea:
			if _, isString := value.(string); !isString {
				return fmt.Errorf("%w: %s must be a string", ErrInvalidContent, path)
			}
		case KindNumber:
			switch value.(type) {
			case float64, string:
			default:
				return fmt.Errorf("%w: %s must be a number", ErrInvalidContent, path)
			}
		case KindObject:
			object, isObject := value.(map[string]any)
			if !isObject {
				return fmt.Errorf("%w: %s must be an object", ErrInvalidContent, path)
			}
			if errCheck := checkFields(field.Fields, object, path+"."); errCheck != nil {
				return errCheck
			}
		case KindList:
			items, isList := value.([]any)
			if !isList {
				return fmt.Errorf("%w: %s must be a list", ErrInvalidContent, path)
			}
			for idx, item := range items {
				object, isObject := item.(map[string]any)
				if !isObject {
					return fmt.Errorf("%w: %s[%d] must be an object", ErrInvalidContent, path, idx)
				}
				if errCheck := checkFields(field.Fields, object, fmt.Sprintf("%s[%d].", path, idx)); errCheck != nil {
					return errCheck
				}
			}
		}
	}
	return nil
}

func normalizeImages(raw json.RawMessage) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var images map[string]any
	if errUnmarshal := json.Unmarshal(raw, &images); errUnmarshal != nil {
		return nil, fmt.Errorf("%w: images must be a JSON object", ErrInvalidContent)
	}
	return datatypes.JSON(raw), nil
}

func valueOr(value *string, def string) string {
	if value == nil {
		return def
	}
	return strings.TrimSpace(*value)
}
