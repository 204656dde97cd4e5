package settings

// Site setting keys and defaults.
const (
	// CompanyNameKey is the legal or trading name shown in the footer.
	CompanyNameKey = "company_name"
	// CompanyAddressKey is the postal address shown in the footer.
	CompanyAddressKey = "company_address"
	// CompanyCNPJKey is the company registration number.
	CompanyCNPJKey = "company_cnpj"
	// ContactEmailKey is the public contact mailbox.
	ContactEmailKey = "contact_email"
	// ContactPhoneKey is the public contact phone.
	ContactPhoneKey = "contact_phone"
	// WhatsAppNumberKey is the number used for wa.me links, digits only.
	WhatsAppNumberKey = "whatsapp_number"
	// CTATextKey overrides the primary call-to-action label.
	CTATextKey = "cta_text"
	// HeroTitleKey overrides the hero title when the hero section has none.
	HeroTitleKey = "hero_title"
	// HeroSubtitleKey overrides the hero description when the hero section has none.
	HeroSubtitleKey = "hero_subtitle"
	// GoogleAnalyticsIDKey is the GA measurement id injected in the page.
	GoogleAnalyticsIDKey = "google_analytics_id"
	// FacebookPixelIDKey is the pixel id injected in the page.
	FacebookPixelIDKey = "facebook_pixel_id"
	// MauticAPIURLKey is the CRM base URL; leads are forwarded only when set.
	MauticAPIURLKey = "mautic_api_url"
	// MauticAPITokenKey is the CRM bearer token.
	MauticAPITokenKey = "mautic_api_token"

	// DefaultCompanyName is the fallback company name.
	DefaultCompanyName = "Energee"
	// DefaultCompanyCNPJ is the fallback registration number.
	DefaultCompanyCNPJ = "61.015.824/0001-20"
	// DefaultContactEmail is the fallback contact mailbox.
	DefaultContactEmail = "contato@energee.org.br"
	// DefaultWhatsAppNumber is the fallback WhatsApp number.
	DefaultWhatsAppNumber = "5511999999999"
	// DefaultCTAText is the fallback call-to-action label.
	DefaultCTAText = "Quero Participar"
)

// Setting groups used by the admin settings screen.
const (
	GroupCompany      = "company"
	GroupContact      = "contact"
	GroupContent      = "content"
	GroupTracking     = "tracking"
	GroupIntegrations = "integrations"
)

// Definition describes a known setting for the admin settings screen.
type Definition struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Group  string `json:"group"`
	Kind   string `json:"kind"`   // text, email, url, phone, secret
	Secret bool   `json:"secret"` // value is masked in listings
}

var definitions = []Definition{
	{Key: CompanyNameKey, Label: "Nome da Empresa", Group: GroupCompany, Kind: "text"},
	{Key: CompanyCNPJKey, Label: "CNPJ", Group: GroupCompany, Kind: "text"},
	{Key: CompanyAddressKey, Label: "Endereço", Group: GroupCompany, Kind: "text"},
	{Key: ContactEmailKey, Label: "Email de Contato", Group: GroupContact, Kind: "email"},
	{Key: ContactPhoneKey, Label: "Telefone de Contato", Group: GroupContact, Kind: "phone"},
	{Key: WhatsAppNumberKey, Label: "Número do WhatsApp", Group: GroupContact, Kind: "phone"},
	{Key: HeroTitleKey, Label: "Título Principal (Hero)", Group: GroupContent, Kind: "text"},
	{Key: HeroSubtitleKey, Label: "Subtítulo (Hero)", Group: GroupContent, Kind: "text"},
	{Key: CTATextKey, Label: "Texto do CTA Principal", Group: GroupContent, Kind: "text"},
	{Key: GoogleAnalyticsIDKey, Label: "Google Analytics ID", Group: GroupTracking, Kind: "text"},
	{Key: FacebookPixelIDKey, Label: "Facebook Pixel ID", Group: GroupTracking, Kind: "text"},
	{Key: MauticAPIURLKey, Label: "Mautic API URL", Group: GroupIntegrations, Kind: "url"},
	{Key: MauticAPITokenKey, Label: "Mautic API Token", Group: GroupIntegrations, Kind: "secret", Secret: true},
}

// Definitions returns the catalog of known settings in display order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for a known key.
func Lookup(key string) (Definition, bool) {
	for _, def := range definitions {
		if def.Key == key {
			return def, true
		}
	}
	return Definition{}, false
}
