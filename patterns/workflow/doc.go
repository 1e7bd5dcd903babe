// Package workflow coordinates multi-step query plans behind the ordinary
// wrapper contract. [NewQA] is the bundled plan: it analyzes the audience's
// knowledge level and the key points a good answer must cover as two
// concurrent sub-queries, then synthesizes the final answer from both. The
// fan-out joins in submission order and is all-or-nothing, so a failed
// analysis fails the query before anything reaches the backend twice.
package workflow
