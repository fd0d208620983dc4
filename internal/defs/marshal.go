package defs

import (
	"gopkg.in/yaml.v3"

	"waketimed-go/errcode"
	"waketimed-go/internal/model"
)

// MarshalVarDef serializes a VarDef back into the tag-union YAML shape
// rawVarDef.toVarDef parses, the inverse half of the loader's
// parse/serialize round trip. The file stem (the definition's Name) is not
// part of the body; callers that write it to disk name the file themselves.
func MarshalVarDef(d model.VarDef) ([]byte, error) {
	r, err := varDefToRaw(d)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(r)
}

// MarshalRuleDef serializes a RuleDef back into the tag-union YAML shape
// rawRuleDef.toRuleDef parses.
func MarshalRuleDef(d model.RuleDef) ([]byte, error) {
	r, err := ruleDefToRaw(d)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(r)
}

func varDefToRaw(d model.VarDef) (rawVarDef, error) {
	var kind yaml.Node
	switch d.Kind {
	case model.KindBuiltinPoll:
		if err := kind.Encode(rawBuiltinPoll{
			BuiltinName: d.BuiltinPoll.BuiltinName,
			Params:      d.BuiltinPoll.Params,
		}); err != nil {
			return rawVarDef{}, err
		}
		kind.Tag = "!builtin_poll"
	case model.KindCategoryAny:
		if err := kind.Encode(rawCategoryAny{
			CategoryName: string(d.CategoryAny.CategoryName),
		}); err != nil {
			return rawVarDef{}, err
		}
		kind.Tag = "!category_any"
	default:
		return rawVarDef{}, &errcode.E{C: errcode.DefInvalid, Op: "defs.marshal", Msg: "unrecognized VarDefKind"}
	}

	cats := make([]string, len(d.Categories))
	for i, c := range d.Categories {
		cats[i] = string(c)
	}

	return rawVarDef{
		DataType:   string(d.DataType),
		Categories: cats,
		Kind:       kind,
	}, nil
}

func ruleDefToRaw(d model.RuleDef) (rawRuleDef, error) {
	var kind yaml.Node
	switch d.Kind {
	case model.KindStayupBool:
		if err := kind.Encode(rawStayupBool{ValueScript: d.StayupBool.ValueScript}); err != nil {
			return rawRuleDef{}, err
		}
		kind.Tag = "!stayup_bool"
	default:
		return rawRuleDef{}, &errcode.E{C: errcode.DefInvalid, Op: "defs.marshal", Msg: "unrecognized RuleDefKind"}
	}
	return rawRuleDef{Kind: kind}, nil
}
