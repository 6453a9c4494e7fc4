package fields

import (
	"fmt"

	"github.com/goliatone/go-schemafields/pkg/node"
)

var stringFormats = map[string]node.Kind{
	"date":      node.KindDate,
	"time":      node.KindTime,
	"date-time": node.KindDateTime,
}

// Factory returns the runtime node kind the field materializes into.
func (f *Field) Factory() (node.Kind, error) {
	switch f.Kind {
	case KindString:
		if kind, ok := stringFormats[f.Format]; ok {
			return kind, nil
		}
		return node.KindString, nil
	case KindNumber:
		if f.Type == "integer" {
			return node.KindInteger, nil
		}
		return node.KindFloat, nil
	case KindBoolean:
		return node.KindBoolean, nil
	case KindArray:
		if f.Items != nil {
			return node.KindSequence, nil
		}
		if _, ok := f.Attribute(AttrChoices); ok {
			return node.KindSet, nil
		}
		return "", &UnsupportedArrayShapeError{Path: f.Path}
	case KindObject:
		return node.KindMapping, nil
	default:
		return "", fmt.Errorf("fields: unknown field kind %q", f.Kind)
	}
}

// Materialize builds a fresh runtime node tree for the field. Object
// projections and object-level config validators run as post-validators once
// every child deserialized.
func (f *Field) Materialize() (*node.Node, error) {
	return f.materialize(f.Name)
}

func (f *Field) materialize(name string) (*node.Node, error) {
	kind, err := f.Factory()
	if err != nil {
		return nil, err
	}

	title := f.Label
	if title == "" {
		title = name
	}
	options := []node.Option{
		node.WithName(name),
		node.WithTitle(title),
		node.WithDescription(f.Description),
		node.WithMissing(f.Missing),
	}
	for key, value := range f.Attributes {
		options = append(options, node.WithOption(key, value))
	}
	if f.Readonly {
		options = append(options, node.WithOption(node.OptionReadonly, true))
	}
	if f.Format != "" {
		options = append(options, node.WithOption(node.OptionFormat, f.Format))
	}

	switch f.Kind {
	case KindArray:
		options = append(options, node.WithValidator(combine(f.Validators)))
		if f.Items != nil {
			item, err := f.Items.materialize(itemName(f.Items))
			if err != nil {
				return nil, err
			}
			options = append(options, node.WithChildren(item))
		}
	case KindObject:
		for _, child := range f.Fields.All() {
			materialized, err := child.Materialize()
			if err != nil {
				return nil, err
			}
			options = append(options, node.WithChildren(materialized))
		}
		for _, projection := range f.Projections {
			options = append(options, node.WithPostValidator(projection.Validator(f)))
		}
		for _, validator := range f.Validators {
			options = append(options, node.WithPostValidator(validator))
		}
	default:
		options = append(options, node.WithValidator(combine(f.Validators)))
	}
	return node.New(kind, options...), nil
}

func combine(validators []node.Validator) node.Validator {
	switch len(validators) {
	case 0:
		return nil
	case 1:
		return validators[0]
	default:
		return node.All(validators...)
	}
}
