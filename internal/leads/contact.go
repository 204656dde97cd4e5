package leads

import (
	"strings"

	"github.com/energee/energee-site/internal/models"
)

// contactTags are attached to every contact created from the site.
var contactTags = []string{"website-lead", "energee-form"}

// Contact is the CRM contact body.
type Contact struct {
	Firstname   string   `json:"firstname"`
	Lastname    string   `json:"lastname"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	State       string   `json:"state"`
	Consumption *string  `json:"consumption"`
	Tags        []string `json:"tags"`
}

// ContactFromSubmission maps a stored lead to a CRM contact. The first
// word of the name is the first name and the rest is the last name.
func ContactFromSubmission(row models.FormSubmission) Contact {
	words := strings.Fields(row.Name)
	contact := Contact{
		Email:       row.Email,
		Phone:       row.Phone,
		State:       row.Estado,
		Consumption: row.Consumption,
		Tags:        append([]string(nil), contactTags...),
	}
	if len(words) > 0 {
		contact.Firstname = words[0]
		contact.Lastname = strings.Join(words[1:], " ")
	}
	return contact
}
