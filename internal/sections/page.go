package sections

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/energee/energee-site/internal/settings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.tmpl"))

// Tracking holds third-party tracking identifiers injected in the page head.
type Tracking struct {
	GoogleAnalyticsID string `json:"google_analytics_id,omitempty"`
	FacebookPixelID   string `json:"facebook_pixel_id,omitempty"`
}

// Page is the full landing page view model.
type Page struct {
	Header            Header       `json:"header"`
	Hero              Hero         `json:"hero"`
	HowItWorks        HowItWorks   `json:"how_it_works"`
	Differential      CardSection  `json:"differential"`
	Benefits          CardSection  `json:"benefits"`
	WhoCanParticipate CardSection  `json:"who_can_participate"`
	Testimonials      Testimonials `json:"testimonials"`
	Plans             PlansSection `json:"plans"`
	FAQ               FAQSection   `json:"faq"`
	CTAForm           CTAForm      `json:"cta_form"`
	Footer            Footer       `json:"footer"`
	Tracking          Tracking     `json:"tracking"`
}

// BuildPage renders every section from src. It never fails; a nil or empty
// source yields the built-in page.
func BuildPage(src Source, now time.Time) Page {
	return Page{
		Header:            RenderHeader(src),
		Hero:              RenderHero(src),
		HowItWorks:        RenderHowItWorks(src),
		Differential:      RenderDifferential(src),
		Benefits:          RenderBenefits(src),
		WhoCanParticipate: RenderWhoCanParticipate(src),
		Testimonials:      RenderTestimonials(src),
		Plans:             RenderPlans(src),
		FAQ:               RenderFAQ(src),
		CTAForm:           RenderCTAForm(src),
		Footer:            RenderFooter(src, now),
		Tracking: Tracking{
			GoogleAnalyticsID: setting(src, settings.GoogleAnalyticsIDKey, ""),
			FacebookPixelID:   setting(src, settings.FacebookPixelIDKey, ""),
		},
	}
}

// RenderHTML writes the page shell.
func RenderHTML(w io.Writer, page Page) error {
	if errExecute := pageTemplate.Execute(w, page); errExecute != nil {
		return fmt.Errorf("render page: %w", errExecute)
	}
	return nil
}
