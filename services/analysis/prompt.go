package analysis

import "strings"

const promptTemplate = `Analiza el siguiente currículum y proporciona la información en formato JSON:

{{RESUME}}

Devuelve un JSON con esta estructura exacta:
{
  "department": "departamento sugerido (ej: Desarrollo de Software, Marketing Digital, Recursos Humanos, Finanzas, Ventas, etc.)",
  "education_level": "nivel educativo más alto (ej: Bachillerato, Técnico, Licenciatura, Ingeniería, Máster, Doctorado)",
  "hierarchical_level": "nivel jerárquico sugerido (Junior, Semi-Senior, Senior, Lead, Manager, Director)",
  "skills": ["array", "de", "habilidades", "técnicas", "y", "blandas"],
  "executive_summary": "resumen ejecutivo de 2-3 líneas destacando experiencia y fortalezas principales",
  "relevance_score": número entero del 1 al 100 indicando la calidad del perfil
}

Responde SOLO con el JSON, sin texto adicional.`

func BuildPrompt(resumeText string) string {
	return strings.Replace(promptTemplate, "{{RESUME}}", strings.TrimSpace(resumeText), 1)
}
