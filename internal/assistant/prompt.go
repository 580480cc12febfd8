package assistant

import "strings"

// buildSystemPrompt renders the diagram snapshot into the system message
// that anchors every turn. The model only ever sees the schema through this
// text.
func buildSystemPrompt(ctx *DiagramContext) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant helping with database schema design. ")
	b.WriteString("Current diagram context:\n")
	b.WriteString("- Diagram: " + ctx.DiagramName + "\n")
	b.WriteString("- Database Type: " + ctx.DatabaseType + "\n\n")

	if len(ctx.Tables) > 0 {
		b.WriteString("CURRENT SCHEMA:\n")
		for _, table := range ctx.Tables {
			b.WriteString("\nTable: " + table.Name + "\n")
			if len(table.Columns) > 0 {
				b.WriteString("Columns:\n")
				for _, col := range table.Columns {
					b.WriteString("  - " + col.Name + " (" + col.Type + ")")
					if col.PrimaryKey {
						b.WriteString(" [PK]")
					}
					if !col.Nullable {
						b.WriteString(" NOT NULL")
					}
					if col.Unique {
						b.WriteString(" UNIQUE")
					}
					b.WriteString("\n")
				}
			}
			if len(table.Indexes) > 0 {
				b.WriteString("Indexes: " + strings.Join(table.Indexes, ", ") + "\n")
			}
		}
		if len(ctx.Relationships) > 0 {
			b.WriteString("\nRELATIONSHIPS:\n")
			for _, rel := range ctx.Relationships {
				b.WriteString("- " + rel.From + " -> " + rel.To + " (" + rel.Type + ")\n")
			}
		}
	} else {
		b.WriteString("\n[Empty diagram - no tables yet]\n")
	}

	b.WriteString("\nYou can see the complete schema above. When the user asks about 'this diagram' or 'the diagram', ")
	b.WriteString("you are referring to the schema shown above. Help with schema design, relationships, queries, ")
	b.WriteString("optimization, and best practices. If the user asks you to review or modify the diagram, ")
	b.WriteString("you can reference the specific tables and columns shown above.")

	return b.String()
}
