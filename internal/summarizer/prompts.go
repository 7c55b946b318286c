package summarizer

import (
	"fmt"

	"docsum/internal/domain"
)

const systemPrompt = "You are an expert document summarizer. Provide accurate, well-structured summaries " +
	"that capture the essence of the original text while being concise and readable."

const (
	standardTemplate = `Please provide a comprehensive summary of the following text. The summary should be:
- Clear and concise
- Well-structured
- Capture the main points and key information
- Maintain the original meaning and context

Text to summarize:
%s

Please provide the summary in a well-formatted manner.`

	executiveTemplate = `Please provide an executive summary of the following text. The summary should be:
- High-level overview focused on business implications
- Concise and actionable
- Highlight key decisions, recommendations, and business impact
- Suitable for busy executives and decision-makers

Text to summarize:
%s

Please provide the executive summary in a clear, business-appropriate format.`

	technicalTemplate = `Please provide a technical summary of the following text. The summary should be:
- Detailed technical analysis
- Include technical specifications, methodologies, and technical implications
- Maintain technical accuracy and precision
- Suitable for technical professionals and engineers

Text to summarize:
%s

Please provide the technical summary with appropriate technical detail.`

	bulletPointsTemplate = `Please provide a bullet-point summary of the following text. The summary should be:
- Organized in clear, concise bullet points
- Easy to scan and understand quickly
- Capture all main points and key information
- Use proper bullet point hierarchy when needed

Text to summarize:
%s

Please provide the summary in well-structured bullet points.`
)

// BuildPrompt interpolates text into the template for summaryType.
// Unknown types use the standard template.
func BuildPrompt(summaryType domain.SummaryType, text string) string {
	var template string

	switch summaryType {
	case domain.SummaryTypeExecutive:
		template = executiveTemplate
	case domain.SummaryTypeTechnical:
		template = technicalTemplate
	case domain.SummaryTypeBulletPoints:
		template = bulletPointsTemplate
	default:
		template = standardTemplate
	}

	return fmt.Sprintf(template, text)
}
