// Package graph renders a flow's step graph as Mermaid flowchart syntax
// for the graph CLI command and documentation.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/espalier-dev/espalier/pkg/flow"
)

// Mermaid produces a flowchart for a flow. Shapes carry the semantics:
// the start step is a circle, terminal steps are double rectangles,
// question steps are parallelograms. Edges are labeled with the outcome
// that takes them.
func Mermaid(f *flow.Flow) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	if f.EffectiveMode() == flow.ModeSlots {
		return mermaidSlots(f, &sb)
	}

	ids := make([]string, 0, len(f.Steps))
	for id := range f.Steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		step := f.Steps[id]
		safeID := sanitizeID(id)

		opener, closer := "[/", "/]"
		switch {
		case id == f.Start:
			opener, closer = "((", "))"
		case step.Terminal:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, id, closer)

		outcomes := make([]string, 0, len(step.Next))
		for outcome := range step.Next {
			outcomes = append(outcomes, outcome)
		}
		sort.Strings(outcomes)
		for _, outcome := range outcomes {
			fmt.Fprintf(&sb, "    %s -->|%s| %s\n", safeID, outcome, sanitizeID(step.Next[outcome]))
		}
	}
	return sb.String()
}

// mermaidSlots draws the elicitation order of a slots-mode flow, with
// conditional slots annotated by their gate.
func mermaidSlots(f *flow.Flow, sb *strings.Builder) string {
	prev := ""
	for i := range f.Slots {
		def := &f.Slots[i]
		safeID := sanitizeID(def.Name)
		label := def.Name
		if def.RequiredWhen != nil {
			label = fmt.Sprintf("%s<br/>when %s = %s", def.Name, def.RequiredWhen.Slot, def.RequiredWhen.Is)
		}
		fmt.Fprintf(sb, "    %s[/\"%s\"/]\n", safeID, label)
		if prev != "" {
			fmt.Fprintf(sb, "    %s --> %s\n", prev, safeID)
		}
		prev = safeID
	}
	if prev != "" {
		fmt.Fprintf(sb, "    %s --> fulfillment((\"fulfillment\"))\n", prev)
	}
	return sb.String()
}

func sanitizeID(id string) string {
	replacer := strings.NewReplacer("-", "_", " ", "_", "/", "_", ".", "_")
	return replacer.Replace(id)
}
