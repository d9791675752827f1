// Package pkgdex embeds the pkgdex package-discovery search engine in a Go
// program, without the HTTP API.
//
// The client connects to the same backing services as the server: a catalog
// store (PostgreSQL with pgvector, or an in-memory JSON seed), Redis for the
// full-text index and an OpenAI-compatible embedding server.
//
//	client, err := pkgdex.New(ctx,
//	    pkgdex.WithPostgres("postgres://localhost/pkgdex?sslmode=disable"),
//	    pkgdex.WithRedis("localhost:6379", ""),
//	    pkgdex.WithEmbeddingServer("http://localhost:8081/v1", "", "all-MiniLM-L6-v2", 384),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, pkgdex.ModeHybrid, pkgdex.Query{Text: "web framework", Language: "go"})
//	for _, h := range res.Hits {
//	    fmt.Println(h.Slug, h.Relevance, h.Source)
//	}
//
// Batch jobs are available too:
//
//	report, _ := client.SyncEmbeddings(ctx, false)
//	report, _ = client.RebuildIndex(ctx)
package pkgdex
