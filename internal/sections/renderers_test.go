package sections

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/settings"
	"gorm.io/datatypes"
)

type fakeSource struct {
	sections    map[string]models.ContentSection
	settings    map[string]string
	plans       []models.Plan
	plansLoaded bool
	faqs        []models.FAQ
	faqsLoaded  bool
}

func (f *fakeSource) GetSection(key string) (models.ContentSection, bool) {
	section, ok := f.sections[key]
	return section, ok
}

func (f *fakeSource) GetSetting(key, def string) string {
	if value := strings.TrimSpace(f.settings[key]); value != "" {
		return value
	}
	return def
}

func (f *fakeSource) Plans() ([]models.Plan, bool) { return f.plans, f.plansLoaded }

func (f *fakeSource) FAQs() ([]models.FAQ, bool) { return f.faqs, f.faqsLoaded }

func withSection(key, content string) *fakeSource {
	return &fakeSource{
		sections: map[string]models.ContentSection{
			key: {SectionKey: key, Content: datatypes.JSON(content)},
		},
	}
}

func TestBuildPage_EmptySourceUsesDefaults(t *testing.T) {
	for _, src := range []Source{nil, &fakeSource{}} {
		page := BuildPage(src, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		if page.Hero.Title == "" || len(page.Hero.Cards) != 3 {
			t.Fatalf("expected default hero, got %+v", page.Hero)
		}
		if len(page.HowItWorks.Steps) != 3 || page.HowItWorks.Steps[0].Number != "01" {
			t.Fatalf("expected 3 default steps, got %+v", page.HowItWorks.Steps)
		}
		if len(page.Benefits.Cards) != 6 || len(page.Differential.Cards) != 3 || len(page.WhoCanParticipate.Cards) != 6 {
			t.Fatalf("expected default card lists, got %d/%d/%d", len(page.Benefits.Cards), len(page.Differential.Cards), len(page.WhoCanParticipate.Cards))
		}
		if len(page.Testimonials.Items) != 3 || page.Testimonials.Items[0].Name != "Maria Silva" {
			t.Fatalf("expected default testimonials, got %+v", page.Testimonials.Items)
		}
		if page.Testimonials.Stats.ActiveClients != "5.000+" {
			t.Fatalf("expected default stats, got %+v", page.Testimonials.Stats)
		}
		if len(page.Plans.Plans) != 3 || !page.Plans.Plans[1].Popular {
			t.Fatalf("expected default plans, got %+v", page.Plans.Plans)
		}
		if len(page.FAQ.Items) != 10 {
			t.Fatalf("expected 10 default faqs, got %d", len(page.FAQ.Items))
		}
		if page.Header.AssociationText != "Associação" || page.Header.CTAText != settings.DefaultCTAText {
			t.Fatalf("expected default header, got %+v", page.Header)
		}
		if !strings.HasPrefix(page.Footer.WhatsAppURL, "https://wa.me/5511999999999?text=") {
			t.Fatalf("expected default whatsapp link, got %q", page.Footer.WhatsAppURL)
		}
		if !strings.Contains(page.Footer.Copyright, "2025") {
			t.Fatalf("expected copyright year, got %q", page.Footer.Copyright)
		}
		if len(page.CTAForm.States) != 27 {
			t.Fatalf("expected 27 states, got %d", len(page.CTAForm.States))
		}
	}
}

func TestRenderTestimonials_PartialContent(t *testing.T) {
	src := withSection(KeyTestimonials, `{
		"title": "Clientes",
		"testimonials": [{"name": "Carla", "rating": 4}, {"text": "Ótimo"}],
		"stats": {"active_clients": "10.000+"}
	}`)
	got := RenderTestimonials(src)
	if got.Title != "Clientes" {
		t.Fatalf("expected custom title, got %q", got.Title)
	}
	if len(got.Items) != 3 {
		t.Fatalf("expected 3 testimonials, got %d", len(got.Items))
	}
	if got.Items[0].Name != "Carla" || got.Items[0].Rating != 4 || got.Items[0].Location != "São Paulo, SP" {
		t.Fatalf("expected per-field merge for item 0, got %+v", got.Items[0])
	}
	if got.Items[1].Name != "João Santos" || got.Items[1].Text != "Ótimo" {
		t.Fatalf("expected per-field merge for item 1, got %+v", got.Items[1])
	}
	if got.Items[2].Name != "Ana Costa" {
		t.Fatalf("expected default item 2, got %+v", got.Items[2])
	}
	if got.Stats.ActiveClients != "10.000+" || got.Stats.Recommendation != "98%" {
		t.Fatalf("expected merged stats, got %+v", got.Stats)
	}
}

func TestRenderTestimonials_InvalidRatingClamped(t *testing.T) {
	src := withSection(KeyTestimonials, `{"testimonials": [{"rating": 11}]}`)
	got := RenderTestimonials(src)
	if got.Items[0].Rating != 5 {
		t.Fatalf("expected rating clamped to 5, got %d", got.Items[0].Rating)
	}
}

func TestRenderHowItWorks_UnexpectedShapes(t *testing.T) {
	src := withSection(KeySteps, `{"steps": "not a list", "ctaMessage": 42}`)
	got := RenderHowItWorks(src)
	if len(got.Steps) != 3 {
		t.Fatalf("expected default steps for malformed list, got %d", len(got.Steps))
	}
	if got.CTAMessage == "" {
		t.Fatalf("expected default cta message for non-string value")
	}
}

func TestRenderHowItWorks_ExtraStepNumbered(t *testing.T) {
	src := withSection(KeySteps, `{"steps": [{}, {}, {}, {"title": "Quarto passo"}]}`)
	got := RenderHowItWorks(src)
	if len(got.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(got.Steps))
	}
	if got.Steps[3].Number != "04" || got.Steps[3].Title != "Quarto passo" {
		t.Fatalf("expected numbered extra step, got %+v", got.Steps[3])
	}
}

func TestRenderHero_SettingFallback(t *testing.T) {
	src := &fakeSource{settings: map[string]string{settings.HeroTitleKey: "Título das configurações"}}
	got := RenderHero(src)
	if got.Title != "Título das configurações" {
		t.Fatalf("expected setting fallback, got %q", got.Title)
	}

	src.sections = map[string]models.ContentSection{
		KeyHero: {SectionKey: KeyHero, Content: datatypes.JSON(`{"title":"Título da seção"}`)},
	}
	got = RenderHero(src)
	if got.Title != "Título da seção" {
		t.Fatalf("expected section title to win, got %q", got.Title)
	}
}

func TestRenderPlans_LoadedTableIsAuthoritative(t *testing.T) {
	src := &fakeSource{plansLoaded: true}
	if got := RenderPlans(src); len(got.Plans) != 0 {
		t.Fatalf("expected no plans when loaded table is empty, got %d", len(got.Plans))
	}

	src.plans = []models.Plan{
		{ID: 1, Name: "Ativo", Active: true, Features: datatypes.JSON(`["a"," ","b"]`)},
		{ID: 2, Name: "Inativo", Active: false},
	}
	got := RenderPlans(src)
	if len(got.Plans) != 1 || got.Plans[0].Name != "Ativo" {
		t.Fatalf("expected only active plan, got %+v", got.Plans)
	}
	if len(got.Plans[0].Features) != 2 || got.Plans[0].ButtonText != DefaultPlanButtonText {
		t.Fatalf("expected cleaned features and default button text, got %+v", got.Plans[0])
	}
}

func TestRenderFAQ_LoadedTableIsAuthoritative(t *testing.T) {
	src := &fakeSource{faqsLoaded: true}
	if got := RenderFAQ(src); len(got.Items) != 0 {
		t.Fatalf("expected no faqs when loaded table is empty, got %d", len(got.Items))
	}

	src.faqs = []models.FAQ{{ID: 7, Question: "Q?", Answer: "A.", Active: true}}
	got := RenderFAQ(src)
	if len(got.Items) != 1 || got.Items[0].ID != 7 {
		t.Fatalf("expected single loaded faq, got %+v", got.Items)
	}
}

func TestWhatsAppLink_UsesSetting(t *testing.T) {
	src := &fakeSource{settings: map[string]string{settings.WhatsAppNumberKey: "5548999990000"}}
	got := WhatsAppLink(src, "Olá mundo")
	if got != "https://wa.me/5548999990000?text=Ol%C3%A1+mundo" {
		t.Fatalf("unexpected link %q", got)
	}
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	src := withSection(KeyHero, `{"title":"<script>alert(1)</script>"}`)
	var buf bytes.Buffer
	if err := RenderHTML(&buf, BuildPage(src, time.Now())); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Fatalf("expected escaped hero title")
	}
	if !strings.Contains(out, "Como Funciona a Energia Compartilhada?") {
		t.Fatalf("expected default how-it-works title in page")
	}
}
