package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDiagnosisPrompt(t *testing.T) {
	prompt := BuildDiagnosisPrompt("motor con agua", "Excavadora CAT 320")

	assert.Contains(t, prompt, `Eres "HeavyDiag AI"`)
	assert.Contains(t, prompt, `Contexto de maquinaria: "Excavadora CAT 320".`)
	assert.Contains(t, prompt, `Pregunta del usuario: "motor con agua"`)
	for _, section := range []string{SectionSymptoms, SectionCauses, SectionSteps, SectionSolutions, SectionSafety} {
		assert.Contains(t, prompt, "**"+section+":**")
	}
}

func TestBuildDiagnosisPromptDefaultContext(t *testing.T) {
	prompt := BuildDiagnosisPrompt("frenos ruidosos", "")

	assert.Contains(t, prompt, `Contexto de maquinaria: "Maquinaria General".`)
}

func TestBuildDiagnosisPromptKeepsFormatVerbs(t *testing.T) {
	prompt := BuildDiagnosisPrompt("presión al 100%d", "")

	assert.Contains(t, prompt, "presión al 100%d")
	assert.False(t, strings.Contains(prompt, "%!"))
}
