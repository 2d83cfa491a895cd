package classify

import (
	"fmt"
	"strings"

	"github.com/triageworks/sentinel/internal/refdata"
)

// buildSystemPrompt renders the reference data into the triage instruction.
// The assignment rule (assignee must be allowed on the identified project)
// is stated as a hard constraint to the model but remains advisory output.
func buildSystemPrompt(refs *refdata.Snapshot) string {
	var projects strings.Builder
	for _, p := range refs.Projects {
		fmt.Fprintf(&projects, "- %s: %s (%s)\n", p.ID, p.Name, p.Context)
	}
	var team strings.Builder
	for _, m := range refs.Team {
		fmt.Fprintf(&team, "- %s (%s): %s. Projects: %s\n",
			m.Name, m.Role, strings.Join(m.Duties, ", "), strings.Join(m.Projects, ", "))
	}

	return fmt.Sprintf(`You are an expert project manager AI triaging incoming correspondence and routing it to the correct engineer.

**Active Projects:**
%s
**Engineering Team:**
%s
**Rules:**
1. EXTRACT a 10-20 word action-oriented summary.
2. EXTRACT the deadline in YYYY-MM-DD format. If none, use "None".
3. ASSIGN to the most appropriate team member based on their Role, Duties, and assigned Projects.
   - CRITICAL: You MUST ONLY assign a task to a team member if the Project ID is among their allowed projects. Otherwise use "Unassigned".
4. IDENTIFY the Project ID based on the content context. If no project matches, use "UNKNOWN".
5. PROVIDE reasoning for your decision and a confidence between 0.0 and 1.0.

Respond with ONLY a JSON object of this exact shape, no prose before or after:
{"summary": "...", "deadline": "YYYY-MM-DD or None", "project_id": "...", "assignee": "...", "reasoning": "...", "confidence": 0.0}`,
		projects.String(), team.String())
}

func buildUserPrompt(body string) string {
	return "Analyze the following correspondence and produce the task proposal JSON.\n\n---\n" + body
}
