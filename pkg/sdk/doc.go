// Package flavorsearch embeds the flavorsearch recipe search engine in a Go
// program without running the HTTP service.
//
// The client loads a pretrained word embedding table and a recipe dataset,
// then answers free-text queries with recipes ranked by semantic relevance.
// Misspelled query words are corrected against the embedding vocabulary.
//
//	client, err := flavorsearch.New(ctx,
//	    flavorsearch.WithModel("data/recipe_word2vec.vec", ""),
//	    flavorsearch.WithDataset("data/cleaned_recipes.csv", ""),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	res, _ := client.Search(ctx, flavorsearch.Query{Text: "chiken curry", TopK: 10})
//	for _, r := range res.Recipes {
//	    fmt.Println(r.Title, r.Score)
//	}
//
// An optional Redis result cache is enabled with WithRedis.
package flavorsearch
