package cache

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/leofalp/llmwrap/core/wrapper"
)

// keyPayload is the canonical form hashed into a cache key. encoding/json
// sorts map keys, so equal argument maps produce equal encodings regardless
// of insertion order. Object queries also carry the decode target's type:
// the same arguments decoded into different Go types are different answers.
type keyPayload struct {
	Op        string             `json:"op"`
	BlockType string             `json:"block_type,omitempty"`
	Target    string             `json:"target,omitempty"`
	Prompt    wrapper.PromptArgs `json:"prompt"`
	API       wrapper.ApiArgs    `json:"api"`
}

// computeKey hashes the canonical JSON encoding of the query identity with
// xxhash. Arguments that cannot be marshaled make the query uncacheable.
func computeKey(op wrapper.Op, blockType, target string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
	encoded, err := json.Marshal(keyPayload{
		Op:        op.String(),
		BlockType: blockType,
		Target:    target,
		Prompt:    prompt,
		API:       api,
	})
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(encoded)), nil
}
