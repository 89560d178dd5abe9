// Package fred is a small client for the FRED (Federal Reserve Economic Data)
// REST API, limited to what the category crawler needs.
//
// The only call is category/children:
//
//	GET https://api.stlouisfed.org/fred/category/children?category_id=0&file_type=json&api_key=...
//
// Responses are decoded into a dataset.Table with the notes column dropped.
// Every request waits on the ratelimit.Limiter passed to NewClient first.
// Nothing is retried. Non-2xx responses become *errors.Error values typed
// by status code, and FRED's error_message is used when the body has one.
//
//	limiter, _ := ratelimit.New("window", 1, 2*time.Second, nil)
//	client := fred.NewClient(cfg.API, limiter, log)
//	children, err := client.FetchChildren(ctx, fred.RootCategoryID)
package fred
