package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/cnv-trainer/pkg/profile"
	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/scoring"
	"github.com/jwebster45206/cnv-trainer/pkg/state"
)

// SummaryMaxWords bounds the closing narrative.
const SummaryMaxWords = 250

// ScenarioPrompt asks for a batch of personalised scenarios.
// Arguments: count, name, name, knows CNV, answers, count.
const ScenarioPrompt = `Como especialista em Comunicação Não Violenta (CNV), crie EXATAMENTE %d cenários do COTIDIANO CORPORATIVO personalizados para %s.

Perfil do usuário:
- Nome: %s
- Conhece CNV: %s
- Respostas do questionário: %s

IMPORTANTE: Crie situações do DIA A DIA no AMBIENTE CORPORATIVO (reuniões, conversas com colegas, feedbacks, conflitos no trabalho, comunicação com chefe, etc).

Para cada cenário, forneça:
1. Uma situação corporativa cotidiana específica e realista
2. Exatamente 4 opções de resposta com TAMANHO SIMILAR (máximo 2 linhas cada):
   - PASSIVA: Evita o conflito, não resolve
   - CNV: Aplica CNV de forma CONCISA
   - NEUTRA: Resposta comum mas não resolve
   - PROBLEMÁTICA: Resposta conflituosa

TODAS as respostas devem ter tamanho similar, ser concisas e SEM caracteres especiais como asteriscos, aspas duplas ou simples.

Responda apenas com JSON válido contendo exatamente %d cenários, no formato:
{
  "scenarios": [
    {
      "situation": "descrição da situação corporativa cotidiana",
      "options": {
        "passive": "resposta passiva concisa",
        "cnv": "resposta CNV concisa",
        "neutral": "resposta neutra concisa",
        "problematic": "resposta problemática concisa"
      }
    }
  ]
}
`

// FeedbackPrompt asks for a remark and a rationale on one choice.
// Arguments: name, situation, chosen, category, name, points.
const FeedbackPrompt = `Como especialista em CNV, analise a escolha de %s no seguinte cenário:

CENÁRIO: %s
RESPOSTA ESCOLHIDA: %s
TIPO DA RESPOSTA: %s

Forneça feedback em JSON:
{
  "immediate": "feedback imediato curto e personalizado usando o nome %s",
  "detailed": "explicação detalhada sobre por que a opção CNV seria ideal, mencionando os princípios da CNV aplicados",
  "points": %d
}

O feedback deve ser construtivo, educativo, motivador e SEM caracteres especiais como asteriscos, aspas duplas ou simples. Use linguagem natural e humana.
`

// SummaryPrompt asks for the closing narrative.
const SummaryPrompt = `Crie um feedback final personalizado para %s sobre seu desempenho no treinamento de CNV.

PONTUAÇÃO: %d de %d pontos possíveis (%.1f%%)
DISTRIBUIÇÃO DAS RESPOSTAS:
- Respostas CNV: %d de %d
- Respostas Neutras: %d de %d
- Respostas Passivas: %d de %d
- Respostas Problemáticas: %d de %d

Instruções para o feedback:
1. Use o nome %s de forma personalizada
2. Seja motivador e construtivo
3. Destaque pontos fortes baseados no desempenho
4. Sugira áreas específicas de melhoria
5. Relacione os resultados com benefícios no ambiente corporativo
6. Use tom profissional mas acolhedor
7. Remova completamente asteriscos, aspas duplas ou simples
8. Use linguagem natural e conversacional
9. Máximo %d palavras
10. Termine com uma mensagem motivadora

Escreva apenas o texto do feedback, sem formatação especial.
`

// BuildScenarioPrompt embeds the learner profile and requests n scenarios.
func BuildScenarioPrompt(p profile.UserProfile, n int) (string, error) {
	if strings.TrimSpace(p.Name) == "" {
		return "", fmt.Errorf("profile name is required")
	}
	if n <= 0 {
		return "", fmt.Errorf("scenario count must be positive, got %d", n)
	}
	knows := "Não"
	if p.KnowsCNV {
		knows = "Sim"
	}
	answers := strings.Join(p.Answers, ", ")
	if answers == "" {
		answers = "nenhuma"
	}
	return fmt.Sprintf(ScenarioPrompt, n, p.Name, p.Name, knows, answers, n), nil
}

// BuildFeedbackPrompt embeds the deterministic point value for the choice.
func BuildFeedbackPrompt(situation, chosen string, category scenario.OptionCategory, name string) (string, error) {
	points, err := scoring.Points(category)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(FeedbackPrompt, name, situation, chosen, category, name, points), nil
}

// BuildSummaryPrompt describes the final score and answer distribution.
func BuildSummaryPrompt(name string, score, possible int, counts state.CategoryCounts) string {
	total := possible / scoring.MaxPoints
	return fmt.Sprintf(SummaryPrompt,
		name,
		score, possible, scoring.Percentage(score, possible),
		counts[scenario.CNV], total,
		counts[scenario.Neutral], total,
		counts[scenario.Passive], total,
		counts[scenario.Problematic], total,
		name,
		SummaryMaxWords,
	)
}
