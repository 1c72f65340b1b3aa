package judge

import (
	"bytes"
	"text/template"
)

var (
	systemPromptTemplate = template.Must(template.New("systemPrompt").Parse(
		`You are a specialized evaluator for AI agent transcripts. Your **one and only job** is to decide whether the [EVIDENCE] satisfies a single rubric criterion.

### The Criterion

{{.Criterion}}

* **Pass (passed: true)**: The evidence demonstrably satisfies the criterion. The relevant information can appear in any form (prose, tool output, structured data).
* **Fail (passed: false)**: The evidence does not satisfy the criterion, contradicts it, or is missing the information the criterion asks for.
* **Important**: Judge only this criterion. Unrelated mistakes in the evidence are out of scope.
* **Failure Categories**:
  - Use "missing_information" if the evidence lacks what the criterion requires
  - Use "incorrect_behavior" if the evidence shows the criterion was violated
  - Use "n/a" if passing

You MUST always respond by calling the ` + "`submit_judgement`" + ` tool with:
- passed: boolean (true/false)
- reason: detailed explanation referencing the specific criterion
- failureCategory: one of the categories listed above

Do not add any conversational text.
`))

	userPromptTemplate = template.Must(template.New("userPrompt").Parse(
		`<evidence>
{{.Evidence}}
</evidence>

Evaluate whether the content in <evidence> satisfies the criterion from your instructions. Remember to judge semantic substance, not wording or format.
`))
)

type SystemPromptData struct {
	Criterion string
}

type UserPromptData struct {
	Evidence string
}

func BuildSystemPrompt(data SystemPromptData) (string, error) {
	var out bytes.Buffer
	err := systemPromptTemplate.Execute(&out, data)
	if err != nil {
		return "", err
	}

	return out.String(), nil
}

func BuildUserPrompt(data UserPromptData) (string, error) {
	var out bytes.Buffer
	err := userPromptTemplate.Execute(&out, data)
	if err != nil {
		return "", err
	}

	return out.String(), nil
}
