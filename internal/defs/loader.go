// Package defs loads variable and rule definitions from a stack of YAML
// directories: embedded defaults first, then zero or more configured
// override directories, each taking precedence over the last. Definitions
// are keyed by file stem; the last directory in the stack to contain a given
// file name wins, and every earlier occurrence of that name is reported as
// overridden. An empty ("void") file is silently dropped from the result,
// but still reported so operators can see it was seen.
package defs

import (
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"waketimed-go/internal/model"
)

// Report summarizes the non-fatal outcomes of a load: file names that were
// shadowed by a higher-precedence directory, and file names whose winning
// occurrence was empty.
type Report struct {
	Overridden []string
	Void       []string
}

func (r *Report) addOverridden(name string) { r.Overridden = append(r.Overridden, name) }
func (r *Report) addVoid(name string)       { r.Void = append(r.Void, name) }

// occurrence records where a *.yaml file with a given stem was found.
type occurrence struct {
	source Source
	path   string
}

// collect walks every source in precedence order (lowest first) and returns,
// for each file stem seen, its list of occurrences in the order encountered.
// The last element of each slice is the winner.
func collect(sources []Source) (map[string][]occurrence, error) {
	byStem := map[string][]occurrence{}
	for _, src := range sources {
		entries, err := fs.ReadDir(src.FS, ".")
		if err != nil {
			// A missing or unreadable directory contributes nothing; this
			// lets a configured override directory be absent.
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			stem := strings.TrimSuffix(name, ".yaml")
			byStem[stem] = append(byStem[stem], occurrence{source: src, path: name})
		}
	}
	return byStem, nil
}

// loadDefs is the shared directory-stack resolution algorithm; parse
// converts the winning file's raw bytes plus its stem into a T, or an error.
func loadDefs[T any](sources []Source, parse func(stem string, raw []byte) (T, error)) (map[string]T, Report, error) {
	byStem, err := collect(sources)
	if err != nil {
		return nil, Report{}, err
	}

	out := map[string]T{}
	var report Report

	stems := make([]string, 0, len(byStem))
	for stem := range byStem {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	for _, stem := range stems {
		occs := byStem[stem]
		for _, o := range occs[:len(occs)-1] {
			report.addOverridden(o.source.Label + "/" + o.path)
		}
		winner := occs[len(occs)-1]

		raw, err := fs.ReadFile(winner.source.FS, winner.path)
		if err != nil {
			return nil, Report{}, errParse(winner.source.Label+"/"+winner.path, err)
		}
		if len(strings.TrimSpace(string(raw))) == 0 {
			report.addVoid(winner.source.Label + "/" + winner.path)
			continue
		}

		v, err := parse(stem, raw)
		if err != nil {
			return nil, Report{}, err
		}
		out[stem] = v
	}

	return out, report, nil
}

// LoadVarDefs resolves the variable-definition directory stack into a map
// keyed by variable name.
func LoadVarDefs(sources []Source) (map[model.VarName]model.VarDef, Report, error) {
	raw, report, err := loadDefs(sources, func(stem string, b []byte) (model.VarDef, error) {
		var r rawVarDef
		if err := yaml.Unmarshal(b, &r); err != nil {
			return model.VarDef{}, errParse(stem+".yaml", err)
		}
		return r.toVarDef(stem)
	})
	if err != nil {
		return nil, Report{}, err
	}
	out := make(map[model.VarName]model.VarDef, len(raw))
	for _, def := range raw {
		out[def.Name] = def
	}
	return out, report, nil
}

// LoadRuleDefs resolves the rule-definition directory stack into a map keyed
// by rule name.
func LoadRuleDefs(sources []Source) (map[model.RuleName]model.RuleDef, Report, error) {
	raw, report, err := loadDefs(sources, func(stem string, b []byte) (model.RuleDef, error) {
		var r rawRuleDef
		if err := yaml.Unmarshal(b, &r); err != nil {
			return model.RuleDef{}, errParse(stem+".yaml", err)
		}
		return r.toRuleDef(stem)
	})
	if err != nil {
		return nil, Report{}, err
	}
	out := make(map[model.RuleName]model.RuleDef, len(raw))
	for _, def := range raw {
		out[def.Name] = def
	}
	return out, report, nil
}
