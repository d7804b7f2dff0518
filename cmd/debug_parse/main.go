package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"ankisync/feature/document"
	"ankisync/feature/sync"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: debug_parse <file.md>")
	}

	src, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	doc, err := document.Parse(src)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== DOCUMENT ===")
	fmt.Printf("title: %q\n", doc.Title())
	fmt.Printf("deck override: %q\n", doc.DeckOverride())
	fmt.Printf("cards: %d\n", len(doc.Cards()))

	base, err := doc.BaseDeck("Ankify")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("base deck: %q\n", base)

	fmt.Println("\n=== CARDS ===")
	_ = doc.Walk(base, func(deckPath string, card *document.Card) error {
		fmt.Printf("[%s] %q (id=%q, line=%d)\n", deckPath, card.Title(), card.RemoteID(), card.Line())
		return nil
	})

	fmt.Println("\n=== PLAN ===")
	plan, err := sync.BuildPlan(doc, sync.Options{RootDeck: "Ankify", DryRun: true})
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
