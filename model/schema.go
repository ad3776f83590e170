package model

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the response shape. Each provider
// translates it into its own dialect.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	// Order lists property names in the order they should be generated.
	Order    []string
	Items    *Schema
	Required []string
}

func stringSchema(desc string) *Schema {
	return &Schema{Type: TypeString, Description: desc}
}

func stringList(desc string) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: &Schema{Type: TypeString}}
}

func methodSchema(desc string) *Schema {
	return &Schema{
		Type:        TypeObject,
		Description: desc,
		Properties: map[string]*Schema{
			"method_name":  stringSchema("Name of the solving method"),
			"steps":        stringList("Ordered solution steps; math in LaTeX"),
			"final_answer": stringSchema("The final answer"),
		},
		Order:    []string{"method_name", "steps", "final_answer"},
		Required: []string{"method_name", "steps", "final_answer"},
	}
}

// SolutionSchema is the output schema every solve request carries.
var SolutionSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"understanding": {
			Type:        TypeObject,
			Description: "What the problem is about",
			Properties: map[string]*Schema{
				"topic":        stringSchema("Subject area and topic"),
				"difficulty":   stringSchema("Difficulty level"),
				"key_concepts": stringList("Concepts needed to solve the problem"),
			},
			Order:    []string{"topic", "difficulty", "key_concepts"},
			Required: []string{"topic", "difficulty", "key_concepts"},
		},
		"primary_solution":     methodSchema("The main academic solution"),
		"alternative_solution": methodSchema("A second method (graphical, intuitive, or shortcut)"),
		"validation": {
			Type:        TypeObject,
			Description: "Consistency checks between methods",
			Properties: map[string]*Schema{
				"is_consistent":    {Type: TypeBoolean},
				"checks_performed": stringList("Checks that were carried out"),
			},
			Order:    []string{"is_consistent", "checks_performed"},
			Required: []string{"is_consistent", "checks_performed"},
		},
		"pedagogical_notes": stringSchema("Exam tips and memory aids"),
	},
	Order: []string{
		"understanding",
		"primary_solution",
		"alternative_solution",
		"validation",
		"pedagogical_notes",
	},
	Required: []string{"understanding", "primary_solution", "validation", "pedagogical_notes"},
}

// JSONSchema renders s as a JSON Schema document (map form), the dialect used by
// OpenAI, Ollama and the Anthropic prompt.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Required) > 0 {
		req := make([]any, len(s.Required))
		for i, r := range s.Required {
			req[i] = r
		}
		out["required"] = req
	}
	return out
}
