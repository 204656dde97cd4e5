package handlers

import (
	"errors"
	"net/http"

	"github.com/energee/energee-site/internal/leads"
	"github.com/gin-gonic/gin"
)

const (
	submitSuccessMessage = "Formulário enviado com sucesso!"
	submitFailureMessage = "Erro ao processar formulário. Tente novamente."
)

// FormHandler accepts lead form submissions.
type FormHandler struct {
	leads *leads.Service
}

// NewFormHandler constructs a FormHandler.
func NewFormHandler(svc *leads.Service) *FormHandler {
	return &FormHandler{leads: svc}
}

// Submit stores a lead and answers with its id.
func (h *FormHandler) Submit(c *gin.Context) {
	var req leads.Submission
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados do formulário inválidos."})
		return
	}
	row, errSubmit := h.leads.Submit(c.Request.Context(), req, leads.RequestMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	})
	if errSubmit != nil {
		var verr *leads.ValidationError
		if errors.As(errSubmit, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Message()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": submitFailureMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      submitSuccessMessage,
		"submissionId": row.ID,
	})
}
