// Package usage meters token consumption at the provider seam. A [Meter]
// wraps any [ai.Provider], passes every request through untouched, and
// accumulates the usage each successful response reports.
//
// Because the Meter sits below the wrapper contract, one instance observes
// every query made through the client it backs, concurrent workflow
// branches included:
//
//	meter := usage.New(openaichat.New(apiKey))
//	client, _ := client.New(meter, client.WithSystemPrompt("Be terse."))
//
//	// ... run queries ...
//
//	totals := meter.Totals()
//	estimate, priced := meter.Cost()
//	fmt.Printf("%d tokens, %s (complete pricing: %v)\n",
//	    totals.TotalTokens, estimate, priced)
package usage
