package fields

// Outline is a JSON-friendly snapshot of a compiled field tree.
type Outline struct {
	Name        string         `json:"name,omitempty"`
	Path        string         `json:"path,omitempty"`
	Type        string         `json:"type"`
	Factory     string         `json:"factory,omitempty"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required"`
	Readonly    bool           `json:"readonly,omitempty"`
	Format      string         `json:"format,omitempty"`
	Missing     string         `json:"missing"`
	Validators  int            `json:"validators,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Items       *Outline       `json:"items,omitempty"`
	Fields      []Outline      `json:"fields,omitempty"`
	Projections []string       `json:"projections,omitempty"`
}

// Outline describes f and its descendants. A factory that cannot be resolved
// yet (an array with neither items nor choices) is left empty.
func (f *Field) Outline() Outline {
	out := Outline{
		Name:        f.Name,
		Path:        f.Path,
		Type:        f.Type,
		Label:       f.Label,
		Description: f.Description,
		Required:    f.Required,
		Readonly:    f.Readonly,
		Format:      f.Format,
		Missing:     f.Missing.String(),
		Validators:  len(f.Validators),
	}
	if kind, err := f.Factory(); err == nil {
		out.Factory = string(kind)
	}
	if len(f.Attributes) > 0 {
		out.Attributes = f.Attributes
	}
	if f.Items != nil {
		items := f.Items.Outline()
		out.Items = &items
	}
	for _, child := range f.Fields.All() {
		out.Fields = append(out.Fields, child.Outline())
	}
	for _, projection := range f.Projections {
		out.Projections = append(out.Projections, projection.Keyword)
	}
	return out
}
