// Package capture records completed queries. The [Recorder] wraps any
// wrapper in the chain and appends one [history.Record] per successful query
// to a [history.Store]: the prompt and api arguments on the way in, the
// ordered output chunks on the way out. Failed queries are never recorded,
// and a streamed query is recorded only once its stream has drained cleanly.
//
// By default records land in an in-memory store owned by the Recorder and
// are read back with [Recorder.History]; pass [WithStore] to persist them
// instead, for example with the sqlitehistory store:
//
//	recorder := capture.New(client, capture.WithStore(store))
//	answer, _, err := recorder.QueryResponse(ctx, prompt, api)
//	records, _ := recorder.History(ctx)
package capture
