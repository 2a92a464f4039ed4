// Package site owns the versioned site configuration singleton and serves
// the style directives derived from each section's design tokens.
package site

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/design"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

const designKey = "design"

// SectionStyle is everything a renderer needs to style one section.
type SectionStyle struct {
	Section    string
	Version    int64
	Directives design.Result
	Variants   design.Variants
	Hover      design.HoverDirective
	Typography map[design.TextKind][]string
}

type SeedResult struct {
	Config  model.SiteConfigItem
	Created bool
}

type Service struct {
	repo Repository
	now  func() time.Time

	// writeMu serialises writes from this process. Writers in other
	// processes are caught by the version condition.
	writeMu sync.Mutex
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewDynamoRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) Get(ctx context.Context) (model.SiteConfigItem, error) {
	item, err := s.repo.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.SiteConfigItem{}, newError(ErrorCodeNotFound, "site configuration has not been seeded", err)
		}
		return model.SiteConfigItem{}, newError(ErrorCodeInternal, "failed to load site configuration", err)
	}
	return item, nil
}

// MergePatch merges patch into the stored sections and bumps the version.
// When expectedVersion is set it must equal the stored version. The write
// itself is conditional on the version that was read, so a concurrent
// writer produces a Conflict instead of being overwritten.
func (s *Service) MergePatch(ctx context.Context, adminID string, patch map[string]interface{}, expectedVersion *int64) (model.SiteConfigItem, error) {
	if strings.TrimSpace(adminID) == "" {
		return model.SiteConfigItem{}, newError(ErrorCodeForbidden, "admin access required", nil)
	}
	if len(patch) == 0 {
		return model.SiteConfigItem{}, newError(ErrorCodeValidation, "patch must be a non-empty object", nil)
	}
	if expectedVersion != nil && *expectedVersion < 0 {
		return model.SiteConfigItem{}, newError(ErrorCodeValidation, "expectedVersion must not be negative", nil)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.repo.GetConfig(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		current = model.SiteConfigItem{ConfigID: model.SiteConfigID, Sections: map[string]interface{}{}}
	case err != nil:
		return model.SiteConfigItem{}, newError(ErrorCodeInternal, "failed to load site configuration", err)
	}

	if expectedVersion != nil && *expectedVersion != current.Version {
		return model.SiteConfigItem{}, newError(ErrorCodeConflict, "site configuration was changed by someone else; reload and retry", nil)
	}

	next := model.SiteConfigItem{
		ConfigID:  model.SiteConfigID,
		Version:   current.Version + 1,
		Sections:  prune(MergePatch(current.Sections, patch)),
		UpdatedAt: s.now().UTC().Format(timestampLayout),
		UpdatedBy: adminID,
	}

	if err := s.repo.PutConfig(ctx, next, current.Version); err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return model.SiteConfigItem{}, newError(ErrorCodeConflict, "site configuration was changed by someone else; reload and retry", err)
		}
		return model.SiteConfigItem{}, newError(ErrorCodeInternal, "failed to save site configuration", err)
	}

	slog.Info("site configuration updated", "version", next.Version, "admin", adminID, "keys", len(patch))
	return next, nil
}

// SetPath writes value at a dotted path such as "hero.design.colors.text".
// A nil value removes the key.
func (s *Service) SetPath(ctx context.Context, adminID, path string, value interface{}, expectedVersion *int64) (model.SiteConfigItem, error) {
	patch, err := patchForPath(path, value)
	if err != nil {
		return model.SiteConfigItem{}, err
	}
	return s.MergePatch(ctx, adminID, patch, expectedVersion)
}

func patchForPath(path string, value interface{}) (map[string]interface{}, error) {
	segments := strings.Split(strings.TrimSpace(path), ".")
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return nil, newError(ErrorCodeValidation, "path must be dot separated keys", nil)
		}
	}

	var node interface{} = value
	for i := len(segments) - 1; i >= 0; i-- {
		node = map[string]interface{}{strings.TrimSpace(segments[i]): node}
	}
	return node.(map[string]interface{}), nil
}

// SectionStyle decodes the design tokens of section and runs them through
// the transform engine.
func (s *Service) SectionStyle(ctx context.Context, section string) (SectionStyle, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return SectionStyle{}, newError(ErrorCodeValidation, "section is required", nil)
	}

	item, err := s.Get(ctx)
	if err != nil {
		return SectionStyle{}, err
	}

	raw, ok := item.Sections[section]
	if !ok {
		return SectionStyle{}, newError(ErrorCodeNotFound, "section not found", nil)
	}

	var tokens map[string]interface{}
	if obj, ok := asObject(raw); ok {
		tokens, _ = asObject(obj[designKey])
	}

	style := StyleFor(design.FromMap(tokens))
	style.Section = section
	style.Version = item.Version
	return style, nil
}

// StyleFor runs every transform over d.
func StyleFor(d *design.SectionDesign) SectionStyle {
	typography := make(map[design.TextKind][]string, len(design.TextKinds))
	for _, kind := range design.TextKinds {
		typography[kind] = design.GetTypographyClasses(d, kind)
	}
	return SectionStyle{
		Directives: design.ApplyDesignConfig(d),
		Variants:   design.GetAnimationVariants(d),
		Hover:      design.GetHoverAnimation(d),
		Typography: typography,
	}
}

// Seed creates the configuration at version 1. An existing record is left
// alone unless force is set, in which case its sections are replaced and
// its version bumped.
func (s *Service) Seed(ctx context.Context, adminID string, sections map[string]interface{}, force bool) (SeedResult, error) {
	if len(sections) == 0 {
		return SeedResult{}, newError(ErrorCodeValidation, "seed must contain at least one section", nil)
	}
	if adminID == "" {
		adminID = "seed"
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.repo.GetConfig(ctx)
	exists := true
	switch {
	case errors.Is(err, ErrNotFound):
		exists = false
	case err != nil:
		return SeedResult{}, newError(ErrorCodeInternal, "failed to load site configuration", err)
	}

	if exists && !force {
		return SeedResult{Config: current, Created: false}, nil
	}

	next := model.SiteConfigItem{
		ConfigID:  model.SiteConfigID,
		Version:   current.Version + 1,
		Sections:  prune(cloneMap(sections)),
		UpdatedAt: s.now().UTC().Format(timestampLayout),
		UpdatedBy: adminID,
	}
	if err := s.repo.PutConfig(ctx, next, current.Version); err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return SeedResult{}, newError(ErrorCodeConflict, "site configuration changed while seeding", err)
		}
		return SeedResult{}, newError(ErrorCodeInternal, "failed to save site configuration", err)
	}

	return SeedResult{Config: next, Created: true}, nil
}
