package websearch_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"

	"quizolute/pkg/websearch"
)

func ExampleWebSearchService_Search() {
	// Stand-in for the instant-answer API
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Abstract":"Go is a statically typed language.","AbstractSource":"Wikipedia",
			"RelatedTopics":[{"Text":"Goroutines","FirstURL":"https://duckduckgo.com/Goroutine"}]}`)
	}))
	defer upstream.Close()

	searchService := websearch.NewWebSearchService(websearch.Config{
		BaseURL: upstream.URL,
		Timeout: 5,
	})

	answer, err := searchService.Search(context.Background(), "golang")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s (%s)\n", answer.Abstract, answer.AbstractSource)
	for _, topic := range answer.RelatedTopics {
		fmt.Printf("- %s\n", topic.Text)
	}
	// Output:
	// Go is a statically typed language. (Wikipedia)
	// - Goroutines
}

func ExampleInstantAnswer_Context() {
	answer := &websearch.InstantAnswer{
		Definition: "An abstract machine.",
		Answer:     "Yes",
	}
	fmt.Print(answer.Context())
	// Output:
	// Definition: An abstract machine.
	// Answer: Yes
}
