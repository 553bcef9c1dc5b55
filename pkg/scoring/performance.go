package scoring

import "fmt"

// Performance is the band a final score falls into.
type Performance struct {
	Level           string
	Recommendations []string

	describe string
}

// Describe personalises the band description for the learner.
func (p Performance) Describe(name string) string {
	return fmt.Sprintf(p.describe, name)
}

var bands = []struct {
	min  float64
	perf Performance
}{
	{80, Performance{
		Level:    "Expert em CNV",
		describe: "Parabéns, %s! Você demonstrou excelente domínio dos princípios da CNV.",
		Recommendations: []string{
			"Continue praticando em situações do dia a dia",
			"Considere compartilhar seu conhecimento com colegas",
			"Explore técnicas avançadas de mediação",
		},
	}},
	{60, Performance{
		Level:    "Praticante Avançado",
		describe: "Muito bem, %s! Você tem uma boa compreensão da CNV e está no caminho certo.",
		Recommendations: []string{
			"Pratique mais a identificação de necessidades",
			"Trabalhe na expressão de sentimentos",
			"Continue aplicando no ambiente profissional",
		},
	}},
	{40, Performance{
		Level:    "Iniciante Promissor",
		describe: "%s, você está começando bem! Há um bom potencial para crescimento.",
		Recommendations: []string{
			"Estude os 4 componentes da CNV",
			"Pratique observação sem julgamento",
			"Comece aplicando em situações simples",
		},
	}},
	{0, Performance{
		Level:    "Explorador CNV",
		describe: "%s, toda jornada começa com o primeiro passo! Você tem muito a descobrir.",
		Recommendations: []string{
			"Leia sobre os fundamentos da CNV",
			"Comece praticando autoconexão",
			"Observe padrões de comunicação no dia a dia",
		},
	}},
}

// Evaluate maps a final score to its performance band.
func Evaluate(score, possible int) Performance {
	pct := Percentage(score, possible)
	for _, b := range bands {
		if pct >= b.min {
			return b.perf
		}
	}
	return bands[len(bands)-1].perf
}
