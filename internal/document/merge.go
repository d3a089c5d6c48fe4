package document

import (
	"fmt"
	"slices"

	"dario.cat/mergo"
)

// Merge folds an ordered chain of documents into a single Configuration.
// Later documents win: an entity re-declaring an id already defined earlier
// in the chain replaces the earlier definition entirely, unless the incoming
// entity opts into merge semantics (`"merge": true`), in which case its
// non-zero fields overlay the earlier ones and task dependencies are
// concatenated and deduplicated. Entities keep their first-seen position in
// declaration order so variable resolution stays stable under inheritance.
//
// After folding, ids must be unique across the three entity kinds; a shared
// id fails with a DuplicateIDError naming both kinds.
func Merge(docs []*Configuration) (*Configuration, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to merge")
	}

	merged := &Configuration{
		SourceURL: docs[len(docs)-1].SourceURL,
	}

	taskIdx := make(map[string]int)
	promptIdx := make(map[string]int)
	varIdx := make(map[string]int)

	for _, doc := range docs {
		if doc.EngineVersion != "" {
			merged.EngineVersion = doc.EngineVersion
		}

		for _, t := range doc.Tasks {
			if err := ValidateID(KindTask, t.ID); err != nil {
				return nil, err
			}
			if i, ok := taskIdx[t.ID]; ok {
				folded, err := foldTask(merged.Tasks[i], t)
				if err != nil {
					return nil, err
				}
				merged.Tasks[i] = folded
				continue
			}
			taskIdx[t.ID] = len(merged.Tasks)
			merged.Tasks = append(merged.Tasks, t)
		}

		for _, p := range doc.Prompts {
			if err := ValidateID(KindPrompt, p.ID); err != nil {
				return nil, err
			}
			if i, ok := promptIdx[p.ID]; ok {
				folded, err := foldPrompt(merged.Prompts[i], p)
				if err != nil {
					return nil, err
				}
				merged.Prompts[i] = folded
				continue
			}
			promptIdx[p.ID] = len(merged.Prompts)
			merged.Prompts = append(merged.Prompts, p)
		}

		for _, v := range doc.Variables {
			if err := ValidateID(KindVariable, v.ID); err != nil {
				return nil, err
			}
			if i, ok := varIdx[v.ID]; ok {
				folded, err := foldVariable(merged.Variables[i], v)
				if err != nil {
					return nil, err
				}
				merged.Variables[i] = folded
				continue
			}
			varIdx[v.ID] = len(merged.Variables)
			merged.Variables = append(merged.Variables, v)
		}
	}

	if err := validateUniqueIDs(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// foldTask applies override-or-merge semantics for a re-declared task id.
func foldTask(existing, incoming TaskDefinition) (TaskDefinition, error) {
	if !incoming.Merge {
		return incoming, nil
	}
	deps := dedupe(append(slices.Clone(existing.Dependencies), incoming.Dependencies...))
	folded := existing
	if err := mergo.Merge(&folded, incoming, mergo.WithOverride); err != nil {
		return TaskDefinition{}, fmt.Errorf("merging task %q: %w", incoming.ID, err)
	}
	folded.Dependencies = deps
	folded.SourceURL = incoming.SourceURL
	return folded, nil
}

func foldPrompt(existing, incoming PromptDefinition) (PromptDefinition, error) {
	if !incoming.Merge {
		return incoming, nil
	}
	folded := existing
	if err := mergo.Merge(&folded, incoming, mergo.WithOverride); err != nil {
		return PromptDefinition{}, fmt.Errorf("merging prompt %q: %w", incoming.ID, err)
	}
	folded.SourceURL = incoming.SourceURL
	return folded, nil
}

func foldVariable(existing, incoming VariableDefinition) (VariableDefinition, error) {
	if !incoming.Merge {
		return incoming, nil
	}
	folded := existing
	if err := mergo.Merge(&folded, incoming, mergo.WithOverride); err != nil {
		return VariableDefinition{}, fmt.Errorf("merging variable %q: %w", incoming.ID, err)
	}
	folded.SourceURL = incoming.SourceURL
	folded.DocEnabled = incoming.DocEnabled
	return folded, nil
}

// validateUniqueIDs rejects ids shared across entity kinds. Re-declaring an
// id within one kind is an override and was already folded away.
func validateUniqueIDs(cfg *Configuration) error {
	kinds := make(map[string]string)
	check := func(kind, id string) error {
		if prior, ok := kinds[id]; ok {
			return &DuplicateIDError{ID: id, Kinds: []string{prior, kind}}
		}
		kinds[id] = kind
		return nil
	}
	for _, t := range cfg.Tasks {
		if err := check(KindTask, t.ID); err != nil {
			return err
		}
	}
	for _, v := range cfg.Variables {
		if err := check(KindVariable, v.ID); err != nil {
			return err
		}
	}
	for _, p := range cfg.Prompts {
		if err := check(KindPrompt, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
