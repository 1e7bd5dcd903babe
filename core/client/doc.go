// Package client adapts a concrete backend to the wrapper contract. A
// [Client] owns one [ai.Provider], renders prompt arguments into chat
// messages, drives blocking completions through bridge.Call and streamed
// completions through bridge.Pipe, and classifies every provider failure as
// wrapper.ErrBackend with the cause preserved.
//
// Structured and block queries are ordinary completions with an appended
// OUTPUT FORMAT instruction: QueryObject carries the JSON schema generated
// from the target type and decodes through core/parse, QueryBlock asks for a
// fenced block and extracts it. The tolerant parsing layers mean a model that
// answers with prose around the payload still decodes.
//
// Clients compose with core/decorator: build the client once, then stack
// decorators for restyling, capture, caching or retries around it.
package client
