package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/sections"
	internalsettings "github.com/energee/energee-site/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ContentSource is the cached content snapshot read by public endpoints.
type ContentSource interface {
	sections.Source
	Sections() map[string]models.ContentSection
	Settings() map[string]string
}

// SiteHandler serves the public page and its content.
type SiteHandler struct {
	src   ContentSource
	nowFn func() time.Time
}

// NewSiteHandler constructs a SiteHandler.
func NewSiteHandler(src ContentSource) *SiteHandler {
	return &SiteHandler{src: src, nowFn: time.Now}
}

// Page renders the landing page as HTML.
func (h *SiteHandler) Page(c *gin.Context) {
	page := sections.BuildPage(h.src, h.nowFn())
	var buf bytes.Buffer
	if errRender := sections.RenderHTML(&buf, page); errRender != nil {
		log.WithError(errRender).Error("render page failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// PageJSON returns the rendered page view model.
func (h *SiteHandler) PageJSON(c *gin.Context) {
	c.JSON(http.StatusOK, sections.BuildPage(h.src, h.nowFn()))
}

// Content returns the raw content snapshot without secret settings.
func (h *SiteHandler) Content(c *gin.Context) {
	rawSections := h.src.Sections()
	sectionsOut := make(gin.H, len(rawSections))
	for key, section := range rawSections {
		sectionsOut[key] = gin.H{
			"section_key": section.SectionKey,
			"title":       section.Title,
			"description": section.Description,
			"content":     section.Content,
			"images":      section.Images,
			"version":     section.Version,
			"updated_at":  section.UpdatedAt,
		}
	}
	plans, _ := h.src.Plans()
	faqs, _ := h.src.FAQs()
	c.JSON(http.StatusOK, gin.H{
		"sections": sectionsOut,
		"plans":    planCards(plans),
		"faqs":     faqItems(faqs),
		"settings": publicSettings(h.src.Settings()),
	})
}

// Plans returns the plans section.
func (h *SiteHandler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, sections.RenderPlans(h.src))
}

// FAQs returns the FAQ section.
func (h *SiteHandler) FAQs(c *gin.Context) {
	c.JSON(http.StatusOK, sections.RenderFAQ(h.src))
}

func planCards(plans []models.Plan) []sections.PlanCard {
	out := make([]sections.PlanCard, 0, len(plans))
	for _, plan := range plans {
		out = append(out, sections.PlanCardFromModel(plan))
	}
	return out
}

func faqItems(faqs []models.FAQ) []gin.H {
	out := make([]gin.H, 0, len(faqs))
	for _, faq := range faqs {
		out = append(out, gin.H{
			"id":            faq.ID,
			"question":      faq.Question,
			"answer":        faq.Answer,
			"display_order": faq.DisplayOrder,
		})
	}
	return out
}

// publicSettings drops settings marked secret and integration endpoints.
func publicSettings(all map[string]string) map[string]string {
	out := make(map[string]string, len(all))
	for key, value := range all {
		if def, ok := internalsettings.Lookup(key); ok && (def.Secret || def.Group == internalsettings.GroupIntegrations) {
			continue
		}
		out[key] = value
	}
	return out
}
