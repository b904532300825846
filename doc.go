// Package esdex provides a resource-oriented data access layer on top
// of Elasticsearch.
//
// A resource pairs a name with a schema and an index; the client
// derives mappings from the schema, keeps a stable alias in front of
// each physical index, and normalizes documents on the way in and out.
//
// # Registering resources and writing
//
//	client, _ := esdex.New(esdex.WithURL("http://localhost:9200"))
//	_ = client.Register(esdex.Resource{
//	    Name: "articles",
//	    Schema: esdex.Schema{
//	        "headline": {Type: esdex.Text},
//	        "published": {Type: esdex.Datetime},
//	    },
//	})
//	_ = client.InitIndexes(ctx)
//	ids, _ := client.Insert(ctx, "articles", doc)
//
// # Searching
//
//	cursor, _ := client.Search("articles").
//	    Query("fulfillment").
//	    Sort("-published").
//	    MaxResults(25).
//	    Do(ctx)
//	for _, doc := range cursor.Docs() {
//	    ...
//	}
//
// Schemas can also be derived from struct tags with SchemaFromStruct:
//
//	type Article struct {
//	    Headline  string    `esdex:"headline"`
//	    Published time.Time `esdex:"published,datetime"`
//	}
package esdex
