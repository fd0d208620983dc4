package defs

import (
	"gopkg.in/yaml.v3"

	"waketimed-go/internal/model"
)

// rawVarDef mirrors the YAML shape of a variable definition file. Kind is a
// tagged union: the node under the `kind:` key carries a custom YAML tag
// (`!builtin_poll` or `!category_any`) selecting which kind-specific fields
// its body holds, matching the wire format built-in definitions use.
type rawVarDef struct {
	DataType   string    `yaml:"data_type"`
	Categories []string  `yaml:"categories,omitempty"`
	Kind       yaml.Node `yaml:"kind"`
}

type rawBuiltinPoll struct {
	BuiltinName string         `yaml:"builtin_name"`
	Params      map[string]any `yaml:"params,omitempty"`
}

type rawCategoryAny struct {
	CategoryName string `yaml:"category_name"`
}

// toVarDef converts a parsed raw definition into a model.VarDef, validating
// the file stem as the definition's name along the way.
func (r rawVarDef) toVarDef(stem string) (model.VarDef, error) {
	name, err := model.NewVarName(stem)
	if err != nil {
		return model.VarDef{}, err
	}

	cats := make([]model.VarName, 0, len(r.Categories))
	for _, c := range r.Categories {
		cn, err := model.NewVarName(c)
		if err != nil {
			return model.VarDef{}, err
		}
		cats = append(cats, cn)
	}

	def := model.VarDef{
		Name:       name,
		DataType:   model.DataType(r.DataType),
		Categories: cats,
	}

	switch r.Kind.Tag {
	case "!builtin_poll":
		var b rawBuiltinPoll
		if err := r.Kind.Decode(&b); err != nil {
			return model.VarDef{}, errParse(stem+".yaml", err)
		}
		def.Kind = model.KindBuiltinPoll
		def.BuiltinPoll = model.BuiltinPollKind{
			BuiltinName: b.BuiltinName,
			Params:      b.Params,
		}
	case "!category_any":
		var c rawCategoryAny
		if err := r.Kind.Decode(&c); err != nil {
			return model.VarDef{}, errParse(stem+".yaml", err)
		}
		catName, err := model.NewVarName(c.CategoryName)
		if err != nil {
			return model.VarDef{}, err
		}
		def.Kind = model.KindCategoryAny
		def.CategoryAny = model.CategoryAnyKind{CategoryName: catName}
	default:
		return model.VarDef{}, errDefInvalidKind(r.Kind.Tag)
	}

	if err := def.Validate(); err != nil {
		return model.VarDef{}, err
	}
	return def, nil
}

// rawRuleDef mirrors the YAML shape of a rule definition file. Kind is the
// same tag-union shape as rawVarDef.Kind.
type rawRuleDef struct {
	Kind yaml.Node `yaml:"kind"`
}

type rawStayupBool struct {
	ValueScript string `yaml:"value_script"`
}

func (r rawRuleDef) toRuleDef(stem string) (model.RuleDef, error) {
	name, err := model.NewRuleName(stem)
	if err != nil {
		return model.RuleDef{}, err
	}

	def := model.RuleDef{Name: name}
	switch r.Kind.Tag {
	case "!stayup_bool":
		var s rawStayupBool
		if err := r.Kind.Decode(&s); err != nil {
			return model.RuleDef{}, errParse(stem+".yaml", err)
		}
		def.Kind = model.KindStayupBool
		def.StayupBool = model.StayupBoolKind{ValueScript: s.ValueScript}
	default:
		return model.RuleDef{}, errDefInvalidKind(r.Kind.Tag)
	}

	if err := def.Validate(); err != nil {
		return model.RuleDef{}, err
	}
	return def, nil
}
