package wrapper

import (
	"fmt"
	"maps"
)

// PromptArgs maps template-variable names to their values. Names are UPPERCASE
// by caller convention (e.g. QUESTION, TASK, CONTENT); the convention is
// documented, not enforced, so lowercase names pass validation. Values may be
// plain strings or arbitrary JSON-marshalable structures, including nested
// maps, which renderers serialize as needed.
//
// A PromptArgs value is treated as immutable for the duration of a call:
// implementations never mutate the caller's map and hand out defensive copies
// through [PromptArgs.Clone].
type PromptArgs map[string]any

// Validate checks the structural rules every implementation relies on.
// An empty argument name is rejected; a nil or empty map is valid (a query may
// carry all of its intent in api arguments or a system prompt).
func (p PromptArgs) Validate() error {
	for name := range p {
		if name == "" {
			return fmt.Errorf("llmwrap: prompt argument with empty name")
		}
	}
	return nil
}

// Clone returns a shallow copy of the argument map. Values are shared; callers
// that hand out clones rely on values being treated as read-only.
func (p PromptArgs) Clone() PromptArgs {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Merge returns a new map containing the receiver's arguments overlaid with
// over's. On name collision over wins. Neither input is modified.
func (p PromptArgs) Merge(over PromptArgs) PromptArgs {
	merged := make(PromptArgs, len(p)+len(over))
	maps.Copy(merged, p)
	maps.Copy(merged, over)
	return merged
}

// ApiArgs carries the execution parameters forwarded to the backend. All
// tuning fields are pointers so that "unset" is distinguishable from a zero
// value, which is what makes [ApiArgs.Merge] work for layered defaults.
//
// Extra holds provider-specific parameters the contract does not model; they
// are passed through to the backend untouched.
type ApiArgs struct {
	Model            string         `json:"model,omitempty"`             // Model name or identifier
	Temperature      *float64       `json:"temperature,omitempty"`       // Sampling temperature [0..2]
	TopP             *float64       `json:"top_p,omitempty"`             // Nucleus sampling (0..1]; alternative to temperature
	MaxTokens        *int           `json:"max_tokens,omitempty"`        // Max tokens for the response
	Stop             []string       `json:"stop,omitempty"`              // Stop sequences
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`  // Penalty [-2..2] encouraging new topics
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"` // Penalty [-2..2] reducing repetition
	Seed             *int           `json:"seed,omitempty"`              // Best-effort deterministic sampling
	Extra            map[string]any `json:"extra,omitempty"`             // Opaque provider passthrough
}

// Validate range-checks every set field. Unset (nil) fields are always valid.
func (a ApiArgs) Validate() error {
	if a.Temperature != nil && (*a.Temperature < 0 || *a.Temperature > 2) {
		return fmt.Errorf("llmwrap: temperature %v out of range [0, 2]", *a.Temperature)
	}
	if a.TopP != nil && (*a.TopP <= 0 || *a.TopP > 1) {
		return fmt.Errorf("llmwrap: top_p %v out of range (0, 1]", *a.TopP)
	}
	if a.MaxTokens != nil && *a.MaxTokens <= 0 {
		return fmt.Errorf("llmwrap: max_tokens %d must be positive", *a.MaxTokens)
	}
	if a.PresencePenalty != nil && (*a.PresencePenalty < -2 || *a.PresencePenalty > 2) {
		return fmt.Errorf("llmwrap: presence_penalty %v out of range [-2, 2]", *a.PresencePenalty)
	}
	if a.FrequencyPenalty != nil && (*a.FrequencyPenalty < -2 || *a.FrequencyPenalty > 2) {
		return fmt.Errorf("llmwrap: frequency_penalty %v out of range [-2, 2]", *a.FrequencyPenalty)
	}
	return nil
}

// Clone returns a deep copy: pointer fields, the stop slice and the extra map
// are all duplicated so the copy can be modified independently.
func (a ApiArgs) Clone() ApiArgs {
	cloned := a
	cloned.Temperature = clonePtr(a.Temperature)
	cloned.TopP = clonePtr(a.TopP)
	cloned.MaxTokens = clonePtr(a.MaxTokens)
	cloned.PresencePenalty = clonePtr(a.PresencePenalty)
	cloned.FrequencyPenalty = clonePtr(a.FrequencyPenalty)
	cloned.Seed = clonePtr(a.Seed)
	if a.Stop != nil {
		cloned.Stop = append([]string(nil), a.Stop...)
	}
	if a.Extra != nil {
		cloned.Extra = maps.Clone(a.Extra)
	}
	return cloned
}

// Merge returns a copy of the receiver with every set field of over applied on
// top. Unset fields of over keep the receiver's values, so defaults configured
// on a client survive unless a call overrides them. Extra maps are merged
// key-by-key with over winning collisions.
func (a ApiArgs) Merge(over ApiArgs) ApiArgs {
	merged := a.Clone()
	if over.Model != "" {
		merged.Model = over.Model
	}
	if over.Temperature != nil {
		merged.Temperature = clonePtr(over.Temperature)
	}
	if over.TopP != nil {
		merged.TopP = clonePtr(over.TopP)
	}
	if over.MaxTokens != nil {
		merged.MaxTokens = clonePtr(over.MaxTokens)
	}
	if over.Stop != nil {
		merged.Stop = append([]string(nil), over.Stop...)
	}
	if over.PresencePenalty != nil {
		merged.PresencePenalty = clonePtr(over.PresencePenalty)
	}
	if over.FrequencyPenalty != nil {
		merged.FrequencyPenalty = clonePtr(over.FrequencyPenalty)
	}
	if over.Seed != nil {
		merged.Seed = clonePtr(over.Seed)
	}
	if len(over.Extra) > 0 {
		if merged.Extra == nil {
			merged.Extra = make(map[string]any, len(over.Extra))
		}
		maps.Copy(merged.Extra, over.Extra)
	}
	return merged
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
