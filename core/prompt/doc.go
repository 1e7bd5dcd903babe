// Package prompt renders prompt arguments into the text sent to a model.
//
// [Sections] is the default renderer: each argument becomes a markdown
// section, deterministically ordered, which keeps prompts reproducible across
// runs. [Template] renders through a mustache template for callers that want
// full control over the final prompt text.
package prompt
