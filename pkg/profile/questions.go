package profile

// Question is one questionnaire item.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

var beginnerQuestions = []Question{
	{
		ID:      "area",
		Text:    "Qual é sua principal área de atuação profissional?",
		Options: []string{"Liderança/Gestão", "Vendas/Comercial", "Atendimento ao Cliente", "Recursos Humanos", "Outra área"},
	},
	{
		ID:      "communication_challenge",
		Text:    "Qual seu maior desafio na comunicação no trabalho?",
		Options: []string{"Dar feedback difícil", "Lidar com conflitos", "Negociar com clientes", "Motivar a equipe", "Expressar opiniões"},
	},
	{
		ID:      "conflict_reaction",
		Text:    "Quando surge um conflito, você geralmente:",
		Options: []string{"Evita o confronto", "Tenta resolver imediatamente", "Busca mediação", "Analisa antes de agir", "Prefere não se envolver"},
	},
	{
		ID:      "communication_style",
		Text:    "Como você se descreveria ao comunicar:",
		Options: []string{"Direto e objetivo", "Empático e cuidadoso", "Analítico e detalhista", "Energético e persuasivo", "Calmo e observador"},
	},
	{
		ID:      "learning_goal",
		Text:    "O que mais gostaria de melhorar na sua comunicação?",
		Options: []string{"Escuta ativa", "Clareza na fala", "Controle emocional", "Persuasão", "Empatia"},
	},
}

var advancedQuestions = []Question{
	{
		ID:      "cnv_experience",
		Text:    "Há quanto tempo você conhece CNV?",
		Options: []string{"Menos de 1 ano", "1-2 anos", "3-5 anos", "Mais de 5 anos", "Estudei formalmente"},
	},
	{
		ID:      "cnv_application",
		Text:    "Onde você mais aplica os princípios de CNV?",
		Options: []string{"Vida pessoal", "Ambiente profissional", "Ambos igualmente", "Raramente aplico", "Ainda estou aprendendo"},
	},
	{
		ID:      "cnv_challenges",
		Text:    "Qual sua maior dificuldade ao praticar CNV?",
		Options: []string{"Identificar sentimentos", "Reconhecer necessidades", "Fazer pedidos claros", "Observar sem julgar", "Manter a prática consistente"},
	},
	{
		ID:      "professional_context",
		Text:    "Em que contexto profissional você mais gostaria de aplicar CNV?",
		Options: []string{"Reuniões de equipe", "Feedback para colaboradores", "Negociações", "Resolução de conflitos", "Atendimento ao cliente"},
	},
	{
		ID:      "cnv_advancement",
		Text:    "O que gostaria de aprofundar em CNV?",
		Options: []string{"Autoconexão", "Expressar raiva construtivamente", "Gratidão e celebração", "Mediação de conflitos", "Liderança compassiva"},
	},
}

// Questionnaire returns the question bank for the learner's prior knowledge.
func Questionnaire(knowsCNV bool) []Question {
	if knowsCNV {
		return advancedQuestions
	}
	return beginnerQuestions
}
