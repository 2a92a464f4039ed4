package site

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/design"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

type memoryRepository struct {
	mu     sync.Mutex
	item   *model.SiteConfigItem
	getErr error
	// beforePut runs before the version check, to simulate a writer in
	// another process.
	beforePut func(m *memoryRepository)
}

func (m *memoryRepository) GetConfig(ctx context.Context) (model.SiteConfigItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return model.SiteConfigItem{}, m.getErr
	}
	if m.item == nil {
		return model.SiteConfigItem{}, ErrNotFound
	}
	item := *m.item
	item.Sections = cloneMap(m.item.Sections)
	return item, nil
}

func (m *memoryRepository) PutConfig(ctx context.Context, item model.SiteConfigItem, baseVersion int64) error {
	if m.beforePut != nil {
		m.beforePut(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := int64(0)
	if m.item != nil {
		stored = m.item.Version
	}
	if (baseVersion == 0 && m.item != nil) || stored != baseVersion {
		return ErrVersionMismatch
	}
	item.Sections = cloneMap(item.Sections)
	m.item = &item
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
}

func errorCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %T (%v)", err, err)
	}
	return svcErr.Code
}

func version(v int64) *int64 {
	return &v
}

func seedSections() map[string]interface{} {
	return map[string]interface{}{
		"hero": map[string]interface{}{
			"title": "Find your next classic",
			"design": map[string]interface{}{
				"spacing": map[string]interface{}{"paddingTop": "lg", "paddingBottom": "unknown-token"},
				"layout":  map[string]interface{}{"maxWidth": "xl", "textAlign": "center"},
				"animations": map[string]interface{}{
					"entrance": map[string]interface{}{"type": "slideUp", "duration": 0.8},
					"hover":    map[string]interface{}{"scale": 1.05},
				},
				"typography": map[string]interface{}{
					"fontSize": map[string]interface{}{"heading": "5xl", "small": "sm"},
				},
			},
		},
		"footer": map[string]interface{}{"copyright": "DesertPort Autos"},
	}
}

func newSeededService(t *testing.T) (*Service, *memoryRepository) {
	t.Helper()
	repo := &memoryRepository{}
	svc := NewWithRepository(repo, fixedNow)
	if _, err := svc.Seed(context.Background(), "", seedSections(), false); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	return svc, repo
}

func TestGetBeforeSeed(t *testing.T) {
	svc := NewWithRepository(&memoryRepository{}, fixedNow)
	_, err := svc.Get(context.Background())
	if code := errorCode(t, err); code != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %s", code)
	}
}

func TestSeed(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	item, err := svc.Get(ctx)
	if err != nil || item.Version != 1 || item.UpdatedBy != "seed" {
		t.Fatalf("unexpected seeded item %#v, %v", item, err)
	}

	res, err := svc.Seed(ctx, "", map[string]interface{}{"hero": "replaced"}, false)
	if err != nil || res.Created || res.Config.Version != 1 {
		t.Fatalf("seed without force should be a no-op: %#v, %v", res, err)
	}

	res, err = svc.Seed(ctx, "admin-1", map[string]interface{}{"hero": "replaced"}, true)
	if err != nil || !res.Created || res.Config.Version != 2 {
		t.Fatalf("forced seed should bump version: %#v, %v", res, err)
	}
	if _, ok := res.Config.Sections["footer"]; ok {
		t.Fatal("forced seed should replace sections")
	}
}

func TestMergePatchBumpsVersion(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	item, err := svc.MergePatch(ctx, "admin-1", map[string]interface{}{
		"hero": map[string]interface{}{"title": "Drive something different"},
	}, nil)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	if item.Version != 2 || item.UpdatedBy != "admin-1" {
		t.Fatalf("unexpected item %#v", item)
	}

	hero := item.Sections["hero"].(map[string]interface{})
	if hero["title"] != "Drive something different" || hero["design"] == nil {
		t.Fatalf("merge lost sibling fields: %#v", hero)
	}
}

func TestMergePatchExpectedVersion(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()
	patch := map[string]interface{}{"about": "Family owned."}

	_, err := svc.MergePatch(ctx, "admin-1", patch, version(7))
	if code := errorCode(t, err); code != ErrorCodeConflict {
		t.Fatalf("expected conflict, got %s", code)
	}

	item, err := svc.MergePatch(ctx, "admin-1", patch, version(1))
	if err != nil || item.Version != 2 {
		t.Fatalf("expected version 2, got %#v, %v", item, err)
	}
}

func TestMergePatchDetectsConcurrentWriter(t *testing.T) {
	svc, repo := newSeededService(t)

	repo.beforePut = func(m *memoryRepository) {
		m.mu.Lock()
		m.item.Version++
		m.mu.Unlock()
		m.beforePut = nil
	}

	_, err := svc.MergePatch(context.Background(), "admin-1", map[string]interface{}{"about": "x"}, nil)
	if code := errorCode(t, err); code != ErrorCodeConflict {
		t.Fatalf("expected conflict, got %s", code)
	}
}

func TestMergePatchCreatesMissingRecord(t *testing.T) {
	svc := NewWithRepository(&memoryRepository{}, fixedNow)
	item, err := svc.MergePatch(context.Background(), "admin-1", map[string]interface{}{"about": "x"}, nil)
	if err != nil || item.Version != 1 {
		t.Fatalf("unexpected result %#v, %v", item, err)
	}
}

func TestMergePatchValidation(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	if _, err := svc.MergePatch(ctx, "", map[string]interface{}{"a": 1}, nil); errorCode(t, err) != ErrorCodeForbidden {
		t.Fatal("expected forbidden without admin")
	}
	if _, err := svc.MergePatch(ctx, "admin-1", nil, nil); errorCode(t, err) != ErrorCodeValidation {
		t.Fatal("expected validation error for empty patch")
	}
}

func TestSetPath(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	item, err := svc.SetPath(ctx, "admin-1", "hero.design.colors.background", "#1a1a1a", nil)
	if err != nil {
		t.Fatalf("set path error: %v", err)
	}
	colors := item.Sections["hero"].(map[string]interface{})["design"].(map[string]interface{})["colors"].(map[string]interface{})
	if colors["background"] != "#1a1a1a" {
		t.Fatalf("unexpected colors %#v", colors)
	}

	item, err = svc.SetPath(ctx, "admin-1", "hero.title", nil, version(item.Version))
	if err != nil {
		t.Fatalf("delete path error: %v", err)
	}
	if _, ok := item.Sections["hero"].(map[string]interface{})["title"]; ok {
		t.Fatal("nil value should remove the key")
	}

	for _, path := range []string{"", "hero..title", ".hero"} {
		if _, err := svc.SetPath(ctx, "admin-1", path, "x", nil); errorCode(t, err) != ErrorCodeValidation {
			t.Fatalf("expected validation error for path %q", path)
		}
	}
}

func TestSectionStyle(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	style, err := svc.SectionStyle(ctx, "hero")
	if err != nil {
		t.Fatalf("section style error: %v", err)
	}
	if style.Directives.Style["paddingTop"] != "2rem" || style.Directives.Style["paddingBottom"] != "unknown-token" {
		t.Fatalf("unexpected spacing %#v", style.Directives.Style)
	}
	if !reflect.DeepEqual(style.Directives.Tags, []string{"max-w-screen-xl", "text-center"}) {
		t.Fatalf("unexpected tags %#v", style.Directives.Tags)
	}
	if style.Variants.Hidden.Y == nil || *style.Variants.Hidden.Y <= 0 || *style.Variants.Hidden.Opacity != 0 {
		t.Fatalf("unexpected hidden state %#v", style.Variants.Hidden)
	}
	if style.Hover.Scale == nil || *style.Hover.Scale != 1.05 {
		t.Fatalf("unexpected hover %#v", style.Hover)
	}
	if len(style.Typography[design.TextSmall]) == 0 {
		t.Fatal("expected small text classes")
	}

	footer, err := svc.SectionStyle(ctx, "footer")
	if err != nil {
		t.Fatalf("footer style error: %v", err)
	}
	if len(footer.Directives.Tags) != 0 || len(footer.Directives.Style) != 0 {
		t.Fatalf("section without design should be unstyled: %#v", footer.Directives)
	}

	if _, err := svc.SectionStyle(ctx, "testimonials"); errorCode(t, err) != ErrorCodeNotFound {
		t.Fatal("expected not found for a missing section")
	}
}

func TestSectionStyleRoundTripIsStable(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	if _, err := svc.SetPath(ctx, "admin-1", "hero.design.colors.text", "#fafafa", nil); err != nil {
		t.Fatalf("set path error: %v", err)
	}

	first, err := svc.SectionStyle(ctx, "hero")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := svc.SectionStyle(ctx, "hero")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("style changed between reads:\n%#v\n%#v", first, second)
	}
	if first.Directives.Style["color"] != "#fafafa" {
		t.Fatalf("patched color not applied: %#v", first.Directives.Style)
	}
}
