package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/energee/energee-site/internal/metrics"
	"github.com/energee/energee-site/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Loader keeps an in-memory snapshot of the public content tables.
type Loader struct {
	db *gorm.DB

	mu          sync.RWMutex
	sections    map[string]models.ContentSection
	plans       []models.Plan
	faqs        []models.FAQ
	settings    map[string]string
	plansOK     bool
	faqsOK      bool
	loaded      bool
	lastLoaded  time.Time
	refreshLock sync.Mutex
}

// NewLoader constructs a Loader. Call Refresh before serving traffic.
func NewLoader(db *gorm.DB) *Loader {
	return &Loader{
		db:       db,
		sections: map[string]models.ContentSection{},
		settings: map[string]string{},
	}
}

// Refresh re-reads sections, active plans, active FAQs and settings in
// parallel. Each table that loads replaces its snapshot; a table that
// fails keeps its previous snapshot. The loader is marked loaded whatever
// the outcome, and the joined read errors are returned for logging.
func (l *Loader) Refresh(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	l.refreshLock.Lock()
	defer l.refreshLock.Unlock()

	var (
		errSections error
		errPlans    error
		errFAQs     error
		errSettings error
	)
	// Failures are collected per table, so no goroutine returns an error
	// that would cancel its siblings.
	var g errgroup.Group
	g.Go(func() error {
		rows, err := l.loadSections(ctx)
		if err != nil {
			errSections = fmt.Errorf("load sections: %w", err)
			return nil
		}
		l.mu.Lock()
		l.sections = rows
		l.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadPlans(ctx)
		if err != nil {
			errPlans = fmt.Errorf("load plans: %w", err)
			return nil
		}
		l.mu.Lock()
		l.plans = rows
		l.plansOK = true
		l.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadFAQs(ctx)
		if err != nil {
			errFAQs = fmt.Errorf("load faqs: %w", err)
			return nil
		}
		l.mu.Lock()
		l.faqs = rows
		l.faqsOK = true
		l.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadSettings(ctx)
		if err != nil {
			errSettings = fmt.Errorf("load settings: %w", err)
			return nil
		}
		l.mu.Lock()
		l.settings = rows
		l.mu.Unlock()
		return nil
	})
	_ = g.Wait()

	l.mu.Lock()
	l.loaded = true
	l.lastLoaded = time.Now().UTC()
	l.mu.Unlock()

	errJoined := errors.Join(errSections, errPlans, errFAQs, errSettings)
	if errJoined != nil {
		metrics.RecordContentRefresh("partial")
		log.WithError(errJoined).Warn("content: refresh incomplete, keeping previous snapshot for failed tables")
		return errJoined
	}
	metrics.RecordContentRefresh("ok")
	return nil
}

func (l *Loader) loadSections(ctx context.Context) (map[string]models.ContentSection, error) {
	if l.db == nil {
		return nil, errors.New("nil db")
	}
	var rows []models.ContentSection
	if errFind := l.db.WithContext(ctx).Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	out := make(map[string]models.ContentSection, len(rows))
	for _, row := range rows {
		out[row.SectionKey] = row
	}
	return out, nil
}

func (l *Loader) loadPlans(ctx context.Context) ([]models.Plan, error) {
	if l.db == nil {
		return nil, errors.New("nil db")
	}
	var rows []models.Plan
	if errFind := l.db.WithContext(ctx).
		Where("active = ?", true).
		Order("display_order ASC, id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (l *Loader) loadFAQs(ctx context.Context) ([]models.FAQ, error) {
	if l.db == nil {
		return nil, errors.New("nil db")
	}
	var rows []models.FAQ
	if errFind := l.db.WithContext(ctx).
		Where("active = ?", true).
		Order("display_order ASC, id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (l *Loader) loadSettings(ctx context.Context) (map[string]string, error) {
	if l.db == nil {
		return nil, errors.New("nil db")
	}
	var rows []models.SiteSetting
	if errFind := l.db.WithContext(ctx).Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.SettingKey] = row.SettingValue
	}
	return out, nil
}

// Loaded reports whether at least one refresh has completed.
func (l *Loader) Loaded() bool {
	if l == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// LastLoaded returns the completion time of the latest refresh.
func (l *Loader) LastLoaded() time.Time {
	if l == nil {
		return time.Time{}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastLoaded
}

// GetSection returns the section with the exact key.
func (l *Loader) GetSection(key string) (models.ContentSection, bool) {
	if l == nil {
		return models.ContentSection{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	section, ok := l.sections[key]
	return section, ok
}

// GetSetting returns the setting value, or def when the key is absent or blank.
func (l *Loader) GetSetting(key, def string) string {
	if l == nil {
		return def
	}
	l.mu.RLock()
	value, ok := l.settings[key]
	l.mu.RUnlock()
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// Plans returns the active plans; ok is false until the plans table loads once.
func (l *Loader) Plans() ([]models.Plan, bool) {
	if l == nil {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Plan, len(l.plans))
	copy(out, l.plans)
	return out, l.plansOK
}

// FAQs returns the active FAQ entries; ok is false until the FAQ table loads once.
func (l *Loader) FAQs() ([]models.FAQ, bool) {
	if l == nil {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.FAQ, len(l.faqs))
	copy(out, l.faqs)
	return out, l.faqsOK
}

// Sections returns a copy of every loaded section keyed by section key.
func (l *Loader) Sections() map[string]models.ContentSection {
	if l == nil {
		return map[string]models.ContentSection{}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]models.ContentSection, len(l.sections))
	for key, section := range l.sections {
		out[key] = section
	}
	return out
}

// Settings returns a copy of every loaded setting.
func (l *Loader) Settings() map[string]string {
	if l == nil {
		return map[string]string{}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.settings))
	for key, value := range l.settings {
		out[key] = value
	}
	return out
}

// Run refreshes the snapshot every interval until ctx is done.
func (l *Loader) Run(ctx context.Context, interval time.Duration) {
	if l == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = l.Refresh(ctx)
		}
	}
}
