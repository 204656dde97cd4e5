package sections

import (
	"encoding/json"

	"github.com/energee/energee-site/internal/models"
	"gorm.io/datatypes"
)

// Section keys read by the renderers.
const (
	KeyHeader            = "header"
	KeyHero              = "hero"
	KeyHowItWorks        = "how_it_works"
	KeySteps             = "steps"
	KeyDifferential      = "differential"
	KeyBenefits          = "benefits"
	KeyWhoCanParticipate = "who_can_participate"
	KeyTestimonials      = "testimonials"
	KeyPlans             = "plans"
	KeyFAQ               = "faq"
	KeyCTAForm           = "cta_form"
	KeyFooter            = "footer"
)

// DefaultWhatsAppMessage is the prefilled message for WhatsApp links.
const DefaultWhatsAppMessage = "Olá! Vi o site da Energee e gostaria de saber mais sobre energia compartilhada."

func defaultNav() []map[string]any {
	return []map[string]any{
		{"id": "como-funciona", "label": "Como Funciona"},
		{"id": "planos", "label": "Planos"},
		{"id": "depoimentos", "label": "Depoimentos"},
		{"id": "faq", "label": "FAQ"},
	}
}

func defaultHeroCards() []map[string]any {
	return []map[string]any{
		{"id": "savings", "title": "Até 30%", "subtitle": "de economia na conta de luz"},
		{"id": "no-works", "title": "Zero", "subtitle": "obras ou instalação"},
		{"id": "clean", "title": "100%", "subtitle": "energia limpa e renovável"},
	}
}

func defaultSteps() []map[string]any {
	return []map[string]any{
		{
			"id":          "calculate",
			"number":      "01",
			"title":       "Calcule sua economia e envie seu consumo",
			"description": "Preencha nosso formulário com seus dados e consumo. Selecione sua distribuidora de energia para uma simulação precisa.",
			"icon":        "user-plus",
		},
		{
			"id":          "choose-plan",
			"number":      "02",
			"title":       "Escolha o Plano e Assine o Termo de Adesão",
			"description": "Selecione o plano ideal para seu perfil e assine o termo de adesão digitalmente. Todo o processo é 100% online.",
			"icon":        "settings",
		},
		{
			"id":          "start-saving",
			"number":      "03",
			"title":       "Comece a economizar",
			"description": "Receba créditos de energia limpa na sua conta de luz em até 30 dias e veja a economia acontecer todo mês.",
			"icon":        "trending-down",
		},
	}
}

func defaultDifferentials() []map[string]any {
	return []map[string]any{
		{
			"id":          "families",
			"title":       "Investimento de Famílias",
			"description": "Nossa energia vem de investimentos de famílias brasileiras, não de grandes corporações",
			"icon":        "heart",
		},
		{
			"id":          "community",
			"title":       "Comunidade Brasileira",
			"description": "Unindo famílias, geradores e consumidores em uma rede de energia colaborativa",
			"icon":        "users",
		},
		{
			"id":          "subscription",
			"title":       "Energia por Assinatura",
			"description": "Modelo inovador que democratiza o acesso à energia solar para todos os brasileiros",
			"icon":        "zap",
		},
	}
}

func defaultBenefits() []map[string]any {
	return []map[string]any{
		{"id": "savings", "title": "Economia Garantida", "description": "Reduza até 30% na sua conta de luz todo mês com energia limpa e renovável.", "icon": "wallet"},
		{"id": "sustainable", "title": "100% Sustentável", "description": "Contribua para um planeta mais limpo usando energia solar sem poluição.", "icon": "leaf"},
		{"id": "no-lock-in", "title": "Sem Fidelidade", "description": "Cancele quando quiser, sem multas, sem taxa de cancelamento.", "icon": "calendar"},
		{"id": "no-works", "title": "Sem Obras", "description": "Não precisa instalar nada em casa. A energia vem direto na sua conta.", "icon": "wrench"},
		{"id": "reliable", "title": "Seguro e Confiável", "description": "Regulamentado pela ANEEL e com garantia de fornecimento constante.", "icon": "shield"},
		{"id": "immediate", "title": "Resultado Imediato", "description": "Comece a economizar já no primeiro mês após a contratação.", "icon": "zap"},
	}
}

func defaultParticipants() []map[string]any {
	return []map[string]any{
		{"id": "cpf", "title": "Pessoa Física (CPF)", "description": "Residências, apartamentos, casas e propriedades rurais com consumo mensal a partir de 100 kWh.", "icon": "user"},
		{"id": "mei", "title": "Microempreendedor (MEI)", "description": "MEIs com baixo consumo de energia que querem reduzir custos operacionais.", "icon": "store"},
		{"id": "cnpj", "title": "Pequenas Empresas (CNPJ)", "description": "Comércios, consultórios, escritórios e pequenos negócios com consumo até 500 kWh/mês.", "icon": "building"},
		{"id": "condos", "title": "Condomínios", "description": "Áreas comuns de condomínios residenciais e comerciais que querem economizar.", "icon": "home"},
		{"id": "coops", "title": "Cooperativas", "description": "Cooperativas agrícolas, de crédito e outras associações sem fins lucrativos.", "icon": "users"},
		{"id": "industry", "title": "Indústrias", "description": "Pequenas indústrias e empresas de médio porte com alto consumo energético.", "icon": "factory"},
	}
}

func defaultTestimonials() []map[string]any {
	return []map[string]any{
		{
			"id":       "maria-silva",
			"name":     "Maria Silva",
			"location": "São Paulo, SP",
			"rating":   float64(5),
			"text":     "Economizo R$ 180 por mês na conta de luz! O processo foi super fácil e em 30 dias já estava recebendo os créditos. Recomendo para todos!",
			"savings":  "R$ 180/mês",
		},
		{
			"id":       "joao-santos",
			"name":     "João Santos",
			"location": "Rio de Janeiro, RJ",
			"rating":   float64(5),
			"text":     "Como empresário, a economia na conta de luz faz toda diferença no meu negócio. Já são 8 meses economizando com energia limpa.",
			"savings":  "R$ 420/mês",
		},
		{
			"id":       "ana-costa",
			"name":     "Ana Costa",
			"location": "Belo Horizonte, MG",
			"rating":   float64(5),
			"text":     "Estava cética no início, mas realmente funciona! Minha conta que era R$ 300 agora vem R$ 210. Energia limpa e economia garantida.",
			"savings":  "R$ 90/mês",
		},
	}
}

func defaultTestimonialStats() map[string]any {
	return map[string]any{
		"active_clients":  "5.000+",
		"monthly_savings": "R$ 2.5M",
		"average_rating":  "4.9/5",
		"recommendation":  "98%",
	}
}

// defaultPlan mirrors models.Plan for the built-in tiers.
type defaultPlan struct {
	Name             string
	Subtitle         string
	Percentage       string
	ConsumptionRange string
	EstimatedSavings string
	Features         []string
	ButtonVariant    string
	Popular          bool
}

var builtinPlans = []defaultPlan{
	{
		Name:             "Econômico",
		Subtitle:         "Ideal para começar",
		Percentage:       "10%",
		ConsumptionRange: "100-250 kWh",
		EstimatedSavings: "R$ 30-75",
		Features:         []string{"Economia de até 10% na conta", "Energia 100% limpa", "Sem taxa de adesão", "Suporte por email"},
		ButtonVariant:    "outline",
	},
	{
		Name:             "Eficiente",
		Subtitle:         "Mais escolhido",
		Percentage:       "20%",
		ConsumptionRange: "250-500 kWh",
		EstimatedSavings: "R$ 125-250",
		Features:         []string{"Economia de até 20% na conta", "Energia 100% limpa", "Sem taxa de adesão", "Suporte prioritário", "Relatórios detalhados"},
		ButtonVariant:    "cta",
		Popular:          true,
	},
	{
		Name:             "Máximo",
		Subtitle:         "Máxima economia",
		Percentage:       "30%",
		ConsumptionRange: "500+ kWh",
		EstimatedSavings: "R$ 375+",
		Features:         []string{"Economia de até 30% na conta", "Energia 100% limpa", "Sem taxa de adesão", "Suporte VIP 24/7", "Relatórios detalhados", "Consultoria energética"},
		ButtonVariant:    "hero",
	},
}

// DefaultPlanButtonText is the call-to-action label on plan cards.
const DefaultPlanButtonText = "Contratar Plano"

// DefaultPlans returns the built-in plan tiers as active rows.
func DefaultPlans() []models.Plan {
	out := make([]models.Plan, 0, len(builtinPlans))
	for idx, plan := range builtinPlans {
		features, _ := json.Marshal(plan.Features)
		out = append(out, models.Plan{
			Name:             plan.Name,
			Subtitle:         plan.Subtitle,
			Percentage:       plan.Percentage,
			ConsumptionRange: plan.ConsumptionRange,
			EstimatedSavings: plan.EstimatedSavings,
			Features:         datatypes.JSON(features),
			ButtonText:       DefaultPlanButtonText,
			ButtonVariant:    plan.ButtonVariant,
			Active:           true,
			Popular:          plan.Popular,
			DisplayOrder:     idx,
		})
	}
	return out
}

var builtinFAQs = [][2]string{
	{"O que é energia compartilhada?", "Energia compartilhada é um modelo onde você recebe créditos de energia solar diretamente na sua conta de luz, sem precisar instalar painéis na sua propriedade. A energia é gerada em usinas solares e os créditos são distribuídos aos participantes."},
	{"Como funciona na prática?", "Você se cadastra, escolhe um plano de acordo com seu consumo, e automaticamente passa a receber créditos de energia limpa na sua conta. Esses créditos reduzem o valor da sua conta de luz todos os meses."},
	{"Preciso fazer alguma instalação em casa?", "Não! Esse é um dos principais benefícios. Você não precisa instalar nada em casa, não há obras, não há investimento inicial. A energia vem direto na sua conta através dos créditos."},
	{"Quanto posso economizar?", "A economia varia de acordo com seu consumo e o plano escolhido, podendo chegar a até 30% na sua conta de luz. Oferecemos uma simulação gratuita para você saber exatamente quanto pode economizar."},
	{"Há algum contrato de fidelidade?", "Não! Você pode cancelar quando quiser, sem multas e sem taxa de cancelamento. Nosso objetivo é sua satisfação, não te prender em contratos longos."},
	{"Como sei que é seguro e confiável?", "Todo o processo é regulamentado pela ANEEL (Agência Nacional de Energia Elétrica). As usinas solares são registradas e licenciadas, garantindo total segurança e legalidade do serviço."},
	{"Em quanto tempo começo a economizar?", "Normalmente em até 30 dias após a contratação você já começa a receber os primeiros créditos na sua conta de luz. O processo de ativação é rápido e sem burocracia."},
	{"Posso mudar de plano depois?", "Sim! Você pode alterar seu plano a qualquer momento para se adequar melhor ao seu consumo atual. Nosso time de suporte está sempre disponível para ajudar."},
	{"E se eu me mudar de endereço?", "Não há problema! Seus créditos de energia podem ser transferidos para o novo endereço, desde que seja na mesma área de concessão da distribuidora de energia."},
	{"Qual a diferença para instalar painéis em casa?", "Com energia compartilhada você não tem investimento inicial (que pode chegar a R$ 50.000), não tem manutenção, não tem obras, e pode cancelar quando quiser. É mais flexível e acessível."},
}

// DefaultFAQs returns the built-in FAQ entries as active rows.
func DefaultFAQs() []models.FAQ {
	out := make([]models.FAQ, 0, len(builtinFAQs))
	for idx, entry := range builtinFAQs {
		out = append(out, models.FAQ{
			Question:     entry[0],
			Answer:       entry[1],
			Active:       true,
			DisplayOrder: idx,
		})
	}
	return out
}

// State is a Brazilian federative unit offered in the lead form.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var brazilianStates = []State{
	{"AC", "Acre"}, {"AL", "Alagoas"}, {"AP", "Amapá"}, {"AM", "Amazonas"},
	{"BA", "Bahia"}, {"CE", "Ceará"}, {"DF", "Distrito Federal"}, {"ES", "Espírito Santo"},
	{"GO", "Goiás"}, {"MA", "Maranhão"}, {"MT", "Mato Grosso"}, {"MS", "Mato Grosso do Sul"},
	{"MG", "Minas Gerais"}, {"PA", "Pará"}, {"PB", "Paraíba"}, {"PR", "Paraná"},
	{"PE", "Pernambuco"}, {"PI", "Piauí"}, {"RJ", "Rio de Janeiro"}, {"RN", "Rio Grande do Norte"},
	{"RS", "Rio Grande do Sul"}, {"RO", "Rondônia"}, {"RR", "Roraima"}, {"SC", "Santa Catarina"},
	{"SP", "São Paulo"}, {"SE", "Sergipe"}, {"TO", "Tocantins"},
}

// States returns the lead form state options.
func States() []State {
	out := make([]State, len(brazilianStates))
	copy(out, brazilianStates)
	return out
}
