// Package enrich rewrites HTML prompt argument values as Markdown before
// each query dispatches, so scraped pages can be passed to a wrapper
// without wasting the context window on markup.
//
// By default every string argument that looks like HTML is converted:
//
//	enriched := enrich.New(client)
//	answer, _, err := enriched.QueryResponse(ctx,
//	    wrapper.PromptArgs{"PAGE": scrapedHTML, "TASK": "Summarize the PAGE."},
//	    wrapper.ApiArgs{})
//
// When the HTML-bearing arguments are known up front, name them with
// [WithKeys] to convert them unconditionally and leave everything else
// alone:
//
//	enriched := enrich.New(client, enrich.WithKeys("PAGE"))
package enrich
