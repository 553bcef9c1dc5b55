package session

import (
	"fmt"

	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/scoring"
)

var fallbackImmediate = map[scenario.OptionCategory]string{
	scenario.CNV:         "Excelente escolha, %s! Sua resposta segue os princípios da Comunicação Não Violenta.",
	scenario.Neutral:     "%s, sua resposta é educada, mas poderia expressar melhor sentimentos e necessidades.",
	scenario.Passive:     "%s, sua resposta evita o conflito, porém deixa suas próprias necessidades de lado.",
	scenario.Problematic: "%s, essa resposta tende a gerar defensividade e afastar as pessoas envolvidas.",
}

const fallbackDetailed = "A resposta em CNV combina observação sem julgamento, expressão de sentimentos, " +
	"identificação de necessidades e um pedido claro. Esses quatro componentes ajudam a manter a conexão " +
	"e a resolver a situação de forma colaborativa."

// fallbackFeedback is the local explanation used when the feedback call fails.
func fallbackFeedback(category scenario.OptionCategory, name string) (immediate, detailed string) {
	tmpl, ok := fallbackImmediate[category]
	if !ok {
		tmpl = "%s, obrigado pela sua resposta."
	}
	return fmt.Sprintf(tmpl, name), fallbackDetailed
}

// fallbackSummary is the closing text used when the summary call fails.
func fallbackSummary(name string, score, possible int) string {
	pct := scoring.Percentage(score, possible)

	msg := fmt.Sprintf("Parabéns, %s! ", name)
	switch {
	case pct >= 80:
		msg += fmt.Sprintf("Você teve um excelente desempenho com %d pontos! Demonstrou forte domínio dos princípios de CNV.", score)
	case pct >= 60:
		msg += fmt.Sprintf("Você teve um bom desempenho com %d pontos! Está no caminho certo para dominar a CNV.", score)
	case pct >= 40:
		msg += fmt.Sprintf("Você fez um bom esforço com %d pontos! Há espaço para crescimento na aplicação da CNV.", score)
	default:
		msg += fmt.Sprintf("Você completou o treinamento com %d pontos! Este é apenas o início da sua jornada de aprendizado em CNV.", score)
	}
	msg += " Continue praticando essas habilidades no seu dia a dia corporativo. A Comunicação Não Violenta é uma " +
		"ferramenta poderosa para melhorar relacionamentos e aumentar a produtividade no trabalho. " +
		"Parabéns por investir no seu desenvolvimento pessoal e profissional!"
	return msg
}
