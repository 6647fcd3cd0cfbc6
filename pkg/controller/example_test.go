package controller_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/controller"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

func ExampleController() {
	raw := graph.RawGraph{
		Nodes: []graph.RawNode{
			{ID: "1", Name: "parseJSON", Language: "javascript"},
			{ID: "2", Name: "render", Language: "javascript"},
			{ID: "3", Name: "parseXML", Language: "javascript"},
			{ID: "4", Name: "mount", Language: "javascript"},
			{ID: "5", Name: "main", Language: "python"},
		},
		Links: []graph.RawLink{{Source: "5", Target: "2"}},
	}

	c := controller.New(controller.Options{
		Source:   pipeline.StaticSource{Graph: raw},
		Strategy: layout.Grid,
	})
	c.Subscribe(func(ev controller.Event) {
		fmt.Printf("%s -> %s\n", ev.From, ev.To)
	})

	ctx := context.Background()
	_ = c.Load(ctx, controller.Filters{Project: "demo", Cluster: true})
	fmt.Println("nodes:", c.Graph().NodeCount())

	c.ClickNode("cluster:javascript")
	fmt.Println("nodes:", c.Graph().NodeCount())
	// Output:
	// idle -> loading
	// loading -> ready
	// nodes: 2
	// ready -> ready
	// nodes: 5
}
