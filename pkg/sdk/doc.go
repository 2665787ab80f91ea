// Package comparables is an embedded Go SDK for the comparables property store.
//
// It opens the same storage backends as the HTTP service (SQLite, PostGIS or
// Redis) and runs the same validation, upsert and proximity-filter logic
// in-process.
//
//	client, _ := comparables.New(ctx, comparables.WithSQLite("comparables.db"))
//	defer client.Close()
//
//	res, _ := client.Properties().Load(ctx, records, false)
//	hits, _ := client.Search().
//	    Near(-34.6037, -58.3816).
//	    Meters(800).
//	    Operation("venta").
//	    Rooms(3).
//	    MaxAge(20).
//	    Do(ctx)
package comparables
