package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleDiagnosis = `Aquí tiene el diagnóstico:

**Síntomas:**
* Humo blanco por el escape
* Nivel de refrigerante bajo
  que baja cada día

**Causas Probables:**
* Junta de culata dañada
- Culata fisurada

**Pasos de Diagnóstico:**
1. Revisar el aceite
2) Prueba de compresión

**Soluciones Recomendadas:**
1. Reemplazar la **junta de culata**

**Alerta de Seguridad:**
No abra el radiador en caliente.
Use guantes.`

func TestParseDiagnosis(t *testing.T) {
	report := ParseDiagnosis(sampleDiagnosis)

	assert.True(t, report.Structured())
	assert.Equal(t, []string{"Aquí tiene el diagnóstico:"}, report.Notes)
	assert.Equal(t, []string{"Humo blanco por el escape", "Nivel de refrigerante bajo que baja cada día"}, report.Symptoms.Items)
	assert.Equal(t, []string{"Junta de culata dañada", "Culata fisurada"}, report.Causes.Items)
	assert.Equal(t, []string{"Revisar el aceite", "Prueba de compresión"}, report.Steps.Items)
	assert.Equal(t, []string{"Reemplazar la junta de culata"}, report.Solutions.Items)
	assert.Equal(t, "No abra el radiador en caliente. Use guantes.", report.Safety)
	assert.Equal(t, sampleDiagnosis, report.Raw)
}

func TestParseDiagnosisHeadingVariants(t *testing.T) {
	report := ParseDiagnosis("## síntomas\n- ruido\n### Alerta de Seguridad\nNinguna alerta específica")

	assert.Equal(t, []string{"ruido"}, report.Symptoms.Items)
	assert.Equal(t, "Ninguna alerta específica", report.Safety)
}

func TestParseDiagnosisUnstructured(t *testing.T) {
	report := ParseDiagnosis("La presión hidráulica nominal es de 350 bar.")

	assert.False(t, report.Structured())
	assert.Equal(t, []string{"La presión hidráulica nominal es de 350 bar."}, report.Notes)
	for _, s := range report.Sections() {
		assert.Empty(t, s.Items)
	}
}

func TestSectionsOrder(t *testing.T) {
	report := ParseDiagnosis("")

	var titles []string
	for _, s := range report.Sections() {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{SectionSymptoms, SectionCauses, SectionSteps, SectionSolutions}, titles)
}

func TestParseDiagnosisInlineHeadings(t *testing.T) {
	report := ParseDiagnosis("**Síntomas:** Humo blanco por el escape\n\n" +
		"**Causas Probables:**\n* Junta de culata\n\n" +
		"**Alerta de Seguridad:** No abra el radiador en caliente.")

	assert.Equal(t, []string{"Humo blanco por el escape"}, report.Symptoms.Items)
	assert.Equal(t, []string{"Junta de culata"}, report.Causes.Items)
	assert.Equal(t, "No abra el radiador en caliente.", report.Safety)
	assert.Empty(t, report.Notes)
}

func TestParseDiagnosisBulletedHeadings(t *testing.T) {
	report := ParseDiagnosis("* **Síntomas:**\n  * Ruido metálico\n* **Soluciones Recomendadas**: Cambiar el rodamiento\n- **Alerta de Seguridad:**\n  Bloquee la máquina.")

	assert.Equal(t, []string{"Ruido metálico"}, report.Symptoms.Items)
	assert.Equal(t, []string{"Cambiar el rodamiento"}, report.Solutions.Items)
	assert.Equal(t, "Bloquee la máquina.", report.Safety)
	assert.Empty(t, report.Notes)
}

func TestSectionHeadingNeedsSeparator(t *testing.T) {
	_, _, ok := sectionHeading("**Síntomas del motor:** ruido")
	assert.False(t, ok)

	_, _, ok = sectionHeading("* Síntomas leves")
	assert.False(t, ok)

	title, rest, ok := sectionHeading("### pasos de diagnóstico")
	assert.True(t, ok)
	assert.Equal(t, SectionSteps, title)
	assert.Empty(t, rest)
}
