package sections

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/settings"
)

// Source is the read side of the content snapshot consumed by renderers.
type Source interface {
	GetSection(key string) (models.ContentSection, bool)
	GetSetting(key, def string) string
	// Plans returns active plans ordered for display; ok is false when the
	// plans table has never been loaded.
	Plans() (plans []models.Plan, ok bool)
	// FAQs returns active FAQ entries ordered for display; ok is false when
	// the FAQ table has never been loaded.
	FAQs() (faqs []models.FAQ, ok bool)
}

// sectionFields returns the decoded content blob for key, or an empty map.
func sectionFields(src Source, key string) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	section, ok := src.GetSection(key)
	if !ok {
		return map[string]any{}
	}
	return Decode(section.Content)
}

func setting(src Source, key, def string) string {
	if src == nil {
		return def
	}
	return src.GetSetting(key, def)
}

// NavItem is a header anchor link.
type NavItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Header is the fixed page header.
type Header struct {
	AssociationText string    `json:"association_text"`
	CTAText         string    `json:"cta_text"`
	Nav             []NavItem `json:"nav"`
	WhatsAppURL     string    `json:"whatsapp_url"`
}

// RenderHeader builds the header from the "header" section.
func RenderHeader(src Source) Header {
	fields := sectionFields(src, KeyHeader)
	nav := MergeList(List(fields, "nav"), defaultNav())
	out := Header{
		AssociationText: String(fields, "associationText", "Associação"),
		CTAText:         String(fields, "ctaText", setting(src, settings.CTATextKey, settings.DefaultCTAText)),
		Nav:             make([]NavItem, 0, len(nav)),
		WhatsAppURL:     WhatsAppLink(src, "Olá! Gostaria de falar com um especialista sobre energia compartilhada."),
	}
	for _, item := range nav {
		out.Nav = append(out.Nav, NavItem{ID: String(item, "id", ""), Label: String(item, "label", "")})
	}
	return out
}

// StatCard is a headline figure with a caption.
type StatCard struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Hero is the top-of-page banner.
type Hero struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PrimaryCTA   string     `json:"primary_cta"`
	SecondaryCTA string     `json:"secondary_cta"`
	Cards        []StatCard `json:"cards"`
}

// RenderHero builds the hero from the "hero" section, then the hero
// settings, then built-in copy.
func RenderHero(src Source) Hero {
	fields := sectionFields(src, KeyHero)
	title := setting(src, settings.HeroTitleKey, "A nova forma de consumir energia limpa chegou.")
	description := setting(src, settings.HeroSubtitleKey, "Qualquer pessoa pode economizar usando energia solar compartilhada, sem obras, sem investimento inicial e sem complicação.")
	cards := MergeList(List(fields, "cards"), defaultHeroCards())
	out := Hero{
		Title:        String(fields, "title", title),
		Description:  String(fields, "description", description),
		PrimaryCTA:   String(fields, "primaryCta", "Saiba Como Funciona"),
		SecondaryCTA: String(fields, "secondaryCta", "Simular Economia"),
		Cards:        make([]StatCard, 0, len(cards)),
	}
	for _, card := range cards {
		out.Cards = append(out.Cards, StatCard{
			ID:       String(card, "id", ""),
			Title:    String(card, "title", ""),
			Subtitle: String(card, "subtitle", ""),
		})
	}
	return out
}

// Step is one numbered how-it-works step.
type Step struct {
	ID          string `json:"id,omitempty"`
	Number      string `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Promo is a highlighted callout.
type Promo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HowItWorks combines the "how_it_works" and "steps" sections.
type HowItWorks struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Promo      Promo  `json:"promo"`
	Steps      []Step `json:"steps"`
	CTAText    string `json:"cta_text"`
	CTAMessage string `json:"cta_message"`
}

// RenderHowItWorks builds the how-it-works block.
func RenderHowItWorks(src Source) HowItWorks {
	fields := sectionFields(src, KeyHowItWorks)
	stepFields := sectionFields(src, KeySteps)
	steps := MergeList(List(stepFields, "steps"), defaultSteps())
	out := HowItWorks{
		Title:    String(fields, "title", "Como Funciona a Energia Compartilhada?"),
		Subtitle: String(fields, "subtitle", "É simples, rápido e sem complicação. Em apenas 3 passos você já está economizando com energia solar compartilhada."),
		Promo: Promo{
			Title:       String(fields, "promo.title", "Sem investimento inicial"),
			Description: String(fields, "promo.description", "Você não paga nada para aderir. A economia começa na primeira conta com créditos."),
		},
		Steps:      make([]Step, 0, len(steps)),
		CTAText:    String(stepFields, "ctaText", "Começar Agora - É Grátis"),
		CTAMessage: String(stepFields, "ctaMessage", "Sem compromisso. Simulação gratuita em menos de 2 minutos."),
	}
	for idx, step := range steps {
		out.Steps = append(out.Steps, Step{
			ID:          String(step, "id", ""),
			Number:      String(step, "number", fmt.Sprintf("%02d", idx+1)),
			Title:       String(step, "title", ""),
			Description: String(step, "description", ""),
			Icon:        String(step, "icon", "user-plus"),
		})
	}
	return out
}

// Card is a titled card with an icon name.
type Card struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CardSection is a heading plus a grid of cards.
type CardSection struct {
	Badge    string `json:"badge,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Cards    []Card `json:"cards"`
}

type cardSectionDefaults struct {
	key      string
	listPath string
	badge    string
	title    string
	subtitle string
	cards    func() []map[string]any
}

func renderCardSection(src Source, defs cardSectionDefaults) CardSection {
	fields := sectionFields(src, defs.key)
	cards := MergeList(List(fields, defs.listPath), defs.cards())
	out := CardSection{
		Badge:    String(fields, "badge", defs.badge),
		Title:    String(fields, "title", defs.title),
		Subtitle: String(fields, "subtitle", defs.subtitle),
		Cards:    make([]Card, 0, len(cards)),
	}
	for _, card := range cards {
		out.Cards = append(out.Cards, Card{
			ID:          String(card, "id", ""),
			Title:       String(card, "title", ""),
			Description: String(card, "description", ""),
			Icon:        String(card, "icon", "zap"),
		})
	}
	return out
}

// RenderDifferential builds the "differential" section.
func RenderDifferential(src Source) CardSection {
	return renderCardSection(src, cardSectionDefaults{
		key:      KeyDifferential,
		listPath: "cards",
		badge:    "Energia Solar por Assinatura",
		title:    "Unindo famílias, Geradores e Consumidores Brasileiros",
		subtitle: "A energia vem de investimentos de famílias brasileiras, não de grandes corporações. Juntos, criamos uma rede de energia limpa, acessível e sustentável.",
		cards:    defaultDifferentials,
	})
}

// RenderBenefits builds the "benefits" section.
func RenderBenefits(src Source) CardSection {
	return renderCardSection(src, cardSectionDefaults{
		key:      KeyBenefits,
		listPath: "cards",
		title:    "Por que a Energee?",
		subtitle: "Descubra as vantagens de fazer parte da maior comunidade de energia compartilhada do Brasil.",
		cards:    defaultBenefits,
	})
}

// RenderWhoCanParticipate builds the "who_can_participate" section.
func RenderWhoCanParticipate(src Source) CardSection {
	return renderCardSection(src, cardSectionDefaults{
		key:      KeyWhoCanParticipate,
		listPath: "cards",
		title:    "Quem Pode Participar?",
		subtitle: "A energia compartilhada é para todos! Desde pessoas físicas até empresas, qualquer um pode aproveitar os benefícios da energia solar.",
		cards:    defaultParticipants,
	})
}

// Testimonial is a customer quote.
type Testimonial struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Rating   int    `json:"rating"`
	Text     string `json:"text"`
	Savings  string `json:"savings"`
}

// TestimonialStats are the social-proof figures under the quotes.
type TestimonialStats struct {
	ActiveClients  string `json:"active_clients"`
	MonthlySavings string `json:"monthly_savings"`
	AverageRating  string `json:"average_rating"`
	Recommendation string `json:"recommendation"`
}

// Testimonials is the customer quotes section.
type Testimonials struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Items    []Testimonial    `json:"items"`
	Stats    TestimonialStats `json:"stats"`
}

// RenderTestimonials builds the "testimonials" section.
func RenderTestimonials(src Source) Testimonials {
	fields := sectionFields(src, KeyTestimonials)
	items := MergeList(List(fields, "testimonials"), defaultTestimonials())
	stats := MergeItem(Object(fields, "stats"), defaultTestimonialStats())
	out := Testimonials{
		Title:    String(fields, "title", "O que nossos clientes dizem?"),
		Subtitle: String(fields, "subtitle", "Milhares de pessoas já estão economizando com energia compartilhada. Veja o que elas têm a dizer sobre a experiência."),
		Items:    make([]Testimonial, 0, len(items)),
		Stats: TestimonialStats{
			ActiveClients:  String(stats, "active_clients", ""),
			MonthlySavings: String(stats, "monthly_savings", ""),
			AverageRating:  String(stats, "average_rating", ""),
			Recommendation: String(stats, "recommendation", ""),
		},
	}
	for idx, item := range items {
		rating := Int(item, "rating", 5)
		if rating < 1 || rating > 5 {
			rating = 5
		}
		out.Items = append(out.Items, Testimonial{
			ID:       String(item, "id", ""),
			Name:     String(item, "name", fmt.Sprintf("Cliente %d", idx+1)),
			Location: String(item, "location", ""),
			Rating:   rating,
			Text:     String(item, "text", ""),
			Savings:  String(item, "savings", ""),
		})
	}
	return out
}

// PlanCard is one plan tier as shown publicly.
type PlanCard struct {
	ID               uint64   `json:"id,omitempty"`
	Name             string   `json:"name"`
	Subtitle         string   `json:"subtitle"`
	Percentage       string   `json:"percentage"`
	ConsumptionRange string   `json:"consumption_range"`
	EstimatedSavings string   `json:"estimated_savings"`
	Features         []string `json:"features"`
	ButtonText       string   `json:"button_text"`
	ButtonVariant    string   `json:"button_variant"`
	Popular          bool     `json:"popular"`
}

// PlansSection is the plans grid.
type PlansSection struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Plans    []PlanCard `json:"plans"`
}

// PlanCardFromModel converts a plan row into its public card.
func PlanCardFromModel(plan models.Plan) PlanCard {
	features := []string{}
	var decoded []string
	if errUnmarshal := json.Unmarshal(plan.Features, &decoded); errUnmarshal == nil {
		for _, feature := range decoded {
			if trimmed := strings.TrimSpace(feature); trimmed != "" {
				features = append(features, trimmed)
			}
		}
	}
	return PlanCard{
		ID:               plan.ID,
		Name:             plan.Name,
		Subtitle:         plan.Subtitle,
		Percentage:       plan.Percentage,
		ConsumptionRange: plan.ConsumptionRange,
		EstimatedSavings: plan.EstimatedSavings,
		Features:         features,
		ButtonText:       firstNonEmpty(plan.ButtonText, DefaultPlanButtonText),
		ButtonVariant:    firstNonEmpty(plan.ButtonVariant, "outline"),
		Popular:          plan.Popular,
	}
}

// RenderPlans builds the plans grid from the active plans. The built-in
// tiers are shown only when the plans table has never been loaded.
func RenderPlans(src Source) PlansSection {
	fields := sectionFields(src, KeyPlans)
	var plans []models.Plan
	loaded := false
	if src != nil {
		plans, loaded = src.Plans()
	}
	if !loaded {
		plans = DefaultPlans()
	}
	out := PlansSection{
		Title:    String(fields, "title", "Escolha seu Plano de Economia"),
		Subtitle: String(fields, "subtitle", "Quanto maior seu consumo, maior sua economia. Escolha o plano ideal para seu perfil e comece a economizar hoje mesmo."),
		Plans:    make([]PlanCard, 0, len(plans)),
	}
	for _, plan := range plans {
		if !plan.Active {
			continue
		}
		out.Plans = append(out.Plans, PlanCardFromModel(plan))
	}
	return out
}

// FAQItem is one question and answer.
type FAQItem struct {
	ID       uint64 `json:"id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQSection is the FAQ accordion.
type FAQSection struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Items    []FAQItem `json:"items"`
}

// RenderFAQ builds the FAQ accordion from the active entries. The built-in
// entries are shown only when the FAQ table has never been loaded.
func RenderFAQ(src Source) FAQSection {
	fields := sectionFields(src, KeyFAQ)
	var faqs []models.FAQ
	loaded := false
	if src != nil {
		faqs, loaded = src.FAQs()
	}
	if !loaded {
		faqs = DefaultFAQs()
	}
	out := FAQSection{
		Title:    String(fields, "title", "Dúvidas Frequentes"),
		Subtitle: String(fields, "subtitle", "Encontre as respostas para as principais dúvidas sobre energia compartilhada. Se não encontrar sua pergunta, entre em contato conosco."),
		Items:    make([]FAQItem, 0, len(faqs)),
	}
	for _, faq := range faqs {
		if !faq.Active {
			continue
		}
		out.Items = append(out.Items, FAQItem{ID: faq.ID, Question: faq.Question, Answer: faq.Answer})
	}
	return out
}

// CTAForm is the lead capture form block.
type CTAForm struct {
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	SubmitText     string  `json:"submit_text"`
	SuccessTitle   string  `json:"success_title"`
	SuccessMessage string  `json:"success_message"`
	Privacy        string  `json:"privacy"`
	States         []State `json:"states"`
}

// RenderCTAForm builds the lead form block.
func RenderCTAForm(src Source) CTAForm {
	fields := sectionFields(src, KeyCTAForm)
	return CTAForm{
		Title:          String(fields, "title", "Comece a Economizar Hoje"),
		Subtitle:       String(fields, "subtitle", "Preencha o formulário e receba uma simulação gratuita da sua economia."),
		SubmitText:     String(fields, "submitText", setting(src, settings.CTATextKey, "Quero Economizar")),
		SuccessTitle:   String(fields, "successTitle", "🎉 Cadastro realizado com sucesso!"),
		SuccessMessage: String(fields, "successMessage", "Em breve nossa equipe entrará em contato para finalizar seu plano de economia."),
		Privacy:        String(fields, "privacy", "Seus dados estão seguros e não serão compartilhados."),
		States:         States(),
	}
}

// Footer is the page footer with company identity and contacts.
type Footer struct {
	CompanyName string `json:"company_name"`
	CNPJ        string `json:"cnpj"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	WhatsAppURL string `json:"whatsapp_url"`
	Copyright   string `json:"copyright"`
}

// RenderFooter builds the footer from settings.
func RenderFooter(src Source, now time.Time) Footer {
	fields := sectionFields(src, KeyFooter)
	company := setting(src, settings.CompanyNameKey, settings.DefaultCompanyName)
	cnpj := setting(src, settings.CompanyCNPJKey, settings.DefaultCompanyCNPJ)
	return Footer{
		CompanyName: company,
		CNPJ:        cnpj,
		Address:     setting(src, settings.CompanyAddressKey, ""),
		Email:       setting(src, settings.ContactEmailKey, settings.DefaultContactEmail),
		Phone:       setting(src, settings.ContactPhoneKey, ""),
		WhatsAppURL: WhatsAppLink(src, ""),
		Copyright: String(fields, "copyright",
			fmt.Sprintf("© %d %s. Todos os direitos reservados. • CNPJ: %s", now.Year(), company, cnpj)),
	}
}

// WhatsAppLink builds a wa.me link using the configured number.
func WhatsAppLink(src Source, message string) string {
	number := setting(src, settings.WhatsAppNumberKey, settings.DefaultWhatsAppNumber)
	if strings.TrimSpace(message) == "" {
		message = DefaultWhatsAppMessage
	}
	return "https://wa.me/" + url.PathEscape(number) + "?text=" + url.QueryEscape(message)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
