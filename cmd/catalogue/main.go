package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/input"
	"github.com/passbi/transport_catalogue/internal/routing"
)

// Reads a JSON document from stdin and writes the answers to its
// stat requests to stdout as a JSON array
func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Failed: %v", err)
	}
}

func run(r io.Reader, w io.Writer) error {
	doc, err := input.Parse(r)
	if err != nil {
		return err
	}

	c := catalogue.New()
	if err := input.FillCatalogue(doc, c); err != nil {
		return err
	}

	var router input.RouteBuilder
	if doc.RoutingSettings != nil {
		transit, err := routing.NewTransitRouter(doc.RoutingSettings.ToModel(), c)
		if err != nil {
			return err
		}
		router = transit
	}

	responses := input.NewHandler(c, router).Apply(doc.StatRequests)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(responses); err != nil {
		return fmt.Errorf("failed to write responses: %w", err)
	}
	return nil
}
