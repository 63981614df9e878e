package services

import "fmt"

// DefaultMachineryContext is used when the caller sends no context.
const DefaultMachineryContext = "Maquinaria General"

// Section titles the HeavyDiag template asks the model to produce, in order.
const (
	SectionSymptoms  = "Síntomas"
	SectionCauses    = "Causas Probables"
	SectionSteps     = "Pasos de Diagnóstico"
	SectionSolutions = "Soluciones Recomendadas"
	SectionSafety    = "Alerta de Seguridad"
)

const diagnosisTemplate = `
Eres "HeavyDiag AI", un asistente experto en diagnóstico de maquinaria pesada.
Tu única tarea es responder preguntas sobre fallas mecánicas, eléctricas o hidráulicas.
Contexto de maquinaria: "%s".
Pregunta del usuario: "%s"

Responde en español.
Si la pregunta es sobre una falla (ej. "motor con agua", "frenos ruidosos"), DEBES estructurar tu respuesta EXACTAMENTE así, usando Markdown (**) para los títulos:

**Síntomas:**
* (Síntoma 1)
* (Síntoma 2)
* (Síntoma 3+)

**Causas Probables:**
* (Causa 1)
* (Causa 2)
* (Causa 3+)

**Pasos de Diagnóstico:**
1. (Paso 1)
2. (Paso 2)
3. (Paso 3+)

**Soluciones Recomendadas:**
1. (Solución 1)
2. (Solución 2)
3. (Solución 3+)

**Alerta de Seguridad:**
(Una advertencia de seguridad si es una falla peligrosa, o "Ninguna alerta específica" si no lo es.)

Si es una pregunta para explicar un código, explica qué hace cada parte y si ves un error.
Si es una pregunta general, responde de forma clara y concisa.
`

// BuildDiagnosisPrompt wraps a user question in the HeavyDiag instruction template.
func BuildDiagnosisPrompt(question, machineryContext string) string {
	if machineryContext == "" {
		machineryContext = DefaultMachineryContext
	}
	return fmt.Sprintf(diagnosisTemplate, machineryContext, question)
}
