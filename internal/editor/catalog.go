package editor

import "github.com/energee/energee-site/internal/sections"

// FieldKind is the input widget used for a content field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindList     FieldKind = "list"
	KindObject   FieldKind = "object"
)

// Field describes one editable field of a section's content blob.
type Field struct {
	Key    string    `json:"key"`
	Label  string    `json:"label"`
	Kind   FieldKind `json:"kind"`
	Fields []Field   `json:"fields,omitempty"` // Sub-fields for list items and objects.
}

// SectionSchema describes an editable section.
type SectionSchema struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

func text(key, label string) Field     { return Field{Key: key, Label: label, Kind: KindText} }
func textarea(key, label string) Field { return Field{Key: key, Label: label, Kind: KindTextarea} }

var cardFields = []Field{
	text("id", "Identificador"),
	text("title", "Título"),
	textarea("description", "Descrição"),
	text("icon", "Ícone"),
}

var catalog = []SectionSchema{
	{
		Key:         sections.KeyHeader,
		Title:       "Cabeçalho",
		Description: "Texto da associação, menu e botão CTA",
		Fields: []Field{
			text("associationText", `Texto "Associação"`),
			text("ctaText", "Texto do botão CTA"),
			{Key: "nav", Label: "Menu", Kind: KindList, Fields: []Field{text("id", "Âncora"), text("label", "Rótulo")}},
		},
	},
	{
		Key:         sections.KeyHero,
		Title:       "Seção Principal",
		Description: "Título, descrição e cards de destaque",
		Fields: []Field{
			text("title", "Título Principal"),
			textarea("description", "Descrição"),
			text("primaryCta", "Botão principal"),
			text("secondaryCta", "Botão secundário"),
			{Key: "cards", Label: "Cards de destaque", Kind: KindList, Fields: []Field{text("id", "Identificador"), text("title", "Título"), text("subtitle", "Subtítulo")}},
		},
	},
	{
		Key:         sections.KeyHowItWorks,
		Title:       "Como Funciona",
		Description: "Título, subtítulo e propaganda",
		Fields: []Field{
			text("title", "Título"),
			textarea("subtitle", "Subtítulo"),
			{Key: "promo", Label: "Propaganda", Kind: KindObject, Fields: []Field{text("title", "Título"), textarea("description", "Descrição")}},
		},
	},
	{
		Key:         sections.KeySteps,
		Title:       "Passos",
		Description: "Passos numerados e chamada final",
		Fields: []Field{
			{Key: "steps", Label: "Passos", Kind: KindList, Fields: []Field{text("id", "Identificador"), text("number", "Número"), text("title", "Título"), textarea("description", "Descrição")}},
			text("ctaText", "Texto do botão"),
			text("ctaMessage", "Mensagem abaixo do botão"),
		},
	},
	{
		Key:         sections.KeyDifferential,
		Title:       "Energia Solar por Assinatura",
		Description: "Título, subtítulo e cards de diferenciais",
		Fields: []Field{
			text("badge", "Selo"),
			text("title", "Título"),
			textarea("subtitle", "Subtítulo"),
			{Key: "cards", Label: "Diferenciais", Kind: KindList, Fields: cardFields},
		},
	},
	{
		Key:         sections.KeyBenefits,
		Title:       "Por que a Energee?",
		Description: "Título, descrição e cards de benefícios",
		Fields: []Field{
			text("title", "Título"),
			textarea("subtitle", "Descrição"),
			{Key: "cards", Label: "Benefícios", Kind: KindList, Fields: cardFields},
		},
	},
	{
		Key:         sections.KeyWhoCanParticipate,
		Title:       "Quem Pode Participar?",
		Description: "Título, descrição e cards de participantes",
		Fields: []Field{
			text("title", "Título"),
			textarea("subtitle", "Descrição"),
			{Key: "cards", Label: "Participantes", Kind: KindList, Fields: cardFields},
		},
	},
	{
		Key:         sections.KeyTestimonials,
		Title:       "Depoimentos",
		Description: "Título, subtítulo, depoimentos e estatísticas",
		Fields: []Field{
			text("title", "Título"),
			textarea("subtitle", "Subtítulo"),
			{Key: "testimonials", Label: "Depoimentos", Kind: KindList, Fields: []Field{
				text("id", "Identificador"),
				text("name", "Nome"),
				text("location", "Cidade"),
				{Key: "rating", Label: "Nota", Kind: KindNumber},
				textarea("text", "Depoimento"),
				text("savings", "Economia"),
			}},
			{Key: "stats", Label: "Estatísticas", Kind: KindObject, Fields: []Field{
				text("active_clients", "Clientes Ativos"),
				text("monthly_savings", "Economizado por Mês"),
				text("average_rating", "Avaliação Média"),
				text("recommendation", "Recomendam"),
			}},
		},
	},
}

// genericFields is the schema for sections outside the catalog.
var genericFields = []Field{
	text("title", "Título"),
	textarea("subtitle", "Subtítulo"),
}

// Catalog returns the fixed list of editable sections.
func Catalog() []SectionSchema {
	out := make([]SectionSchema, len(catalog))
	copy(out, catalog)
	return out
}

// Schema returns the schema for key. Unknown keys get a title/subtitle schema.
func Schema(key string) SectionSchema {
	for _, schema := range catalog {
		if schema.Key == key {
			return schema
		}
	}
	return SectionSchema{Key: key, Title: key, Fields: genericFields}
}

// IsCataloged reports whether key is one of the fixed sections.
func IsCataloged(key string) bool {
	for _, schema := range catalog {
		if schema.Key == key {
			return true
		}
	}
	return false
}
