// Package tastefeed provides an embedded Go client for the tastefeed
// personalized retrieval engine backed by Redis with search modules.
//
// The client maintains per-user taste profiles built from like/dislike
// feedback on reference items and serves hybrid searches that blend the
// taste profile with a free-text query:
//
//	client, _ := tastefeed.New(ctx,
//	    tastefeed.WithRedis("localhost:6379", ""),
//	    tastefeed.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	_ = client.Catalog().Upsert(ctx, tastefeed.Item{
//	    ID:       "sofa-42",
//	    Category: "furniture",
//	    Numerics: map[string]float64{"price": 499},
//	    Vector:   vec,
//	})
//
//	profile, _ := client.UpdateTaste(ctx, "user-1", "ref-liked", "ref-disliked")
//
//	results, _ := client.Search(ctx, tastefeed.Query{
//	    UserID: "user-1",
//	    Text:   "mid-century walnut coffee table",
//	    Limit:  10,
//	})
//
// Items without a precomputed vector can carry Content instead; the
// configured embedder vectorizes it on ingestion.
package tastefeed
