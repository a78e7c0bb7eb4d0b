package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/rizzani/grovi-sub000/internal/service"
)

// seedNamespace keeps product ids stable across runs.
var seedNamespace = uuid.MustParse("6f1c2a1e-4b7d-4c39-9d51-0c8a7e5b2f10")

type category struct {
	ID     string
	Name   string
	Parent string
}

var categories = []category{
	{"cat-pantry", "Pantry", ""},
	{"cat-canned", "Canned Goods", "cat-pantry"},
	{"cat-rice", "Rice & Grains", "cat-pantry"},
	{"cat-dairy", "Dairy", ""},
	{"cat-milk", "Milk", "cat-dairy"},
	{"cat-cheese", "Cheese", "cat-dairy"},
	{"cat-produce", "Produce", ""},
	{"cat-bakery", "Bakery", ""},
	{"cat-drinks", "Beverages", ""},
}

type productDef struct {
	Title    string
	Brand    string
	Category string
	Price    int64 // cents
}

var products = []productDef{
	{"Corned Beef", "Grace", "cat-canned", 850},
	{"Corned Beef Hash", "Hormel", "cat-canned", 925},
	{"Vienna Sausages", "Grace", "cat-canned", 300},
	{"Mackerel in Tomato Sauce", "Grace", "cat-canned", 450},
	{"Baked Beans", "Heinz", "cat-canned", 275},
	{"Jasmine Rice", "Tilda", "cat-rice", 1250},
	{"Basmati Rice", "Tilda", "cat-rice", 1400},
	{"Parboiled Rice", "Uncle Ben's", "cat-rice", 990},
	{"Rolled Oats", "Quaker", "cat-rice", 575},
	{"Whole Milk", "Dairy Farms", "cat-milk", 350},
	{"Evaporated Milk", "Carnation", "cat-milk", 225},
	{"Condensed Milk", "Nestle", "cat-milk", 310},
	{"Cheddar Cheese", "Tastee", "cat-cheese", 1100},
	{"Processed Cheese", "Kraft", "cat-cheese", 860},
	{"Plantain", "", "cat-produce", 120},
	{"Scotch Bonnet Pepper", "", "cat-produce", 80},
	{"Sweet Potato", "", "cat-produce", 150},
	{"Hardo Bread", "National", "cat-bakery", 420},
	{"Coco Bread", "Hilo", "cat-bakery", 180},
	{"Ginger Beer", "D&G", "cat-drinks", 190},
	{"Kola Champagne", "D&G", "cat-drinks", 190},
	{"Carrot Juice", "Tropical Rhythms", "cat-drinks", 260},
}

var sizes = []string{"", "200g", "340g", "450g", "1kg", "2kg", "500ml", "1L", "12oz"}

func categoryByID(id string) category {
	for _, c := range categories {
		if c.ID == id {
			return c
		}
	}
	return category{}
}

// categoryPath lists id and its ancestors, root first.
func categoryPath(id string) []string {
	var path []string
	for c := categoryByID(id); c.ID != ""; c = categoryByID(c.Parent) {
		path = append([]string{c.ID}, path...)
	}
	return path
}

// generateListings builds count products and offers each one at every
// store, with per-store price and stock variation drawn from rng.
func generateListings(rng *rand.Rand, stores, count int) []service.ListingInput {
	listings := make([]service.ListingInput, 0, stores*count)
	for i := 0; i < count; i++ {
		def := products[i%len(products)]
		size := sizes[(i/len(products))%len(sizes)]

		title := def.Title
		if size != "" {
			title = title + " " + size
		}
		if def.Brand != "" {
			title = def.Brand + " " + title
		}

		cat := categoryByID(def.Category)
		productID := uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("product:%d", i))).String()
		sku := fmt.Sprintf("SKU-%s-%05d", strings.ToUpper(strings.TrimPrefix(cat.ID, "cat-")), i)

		for s := 1; s <= stores; s++ {
			listings = append(listings, service.ListingInput{
				StoreID:         fmt.Sprintf("store-%02d", s),
				ProductID:       productID,
				SKU:             sku,
				Title:           title,
				Brand:           def.Brand,
				CategoryID:      cat.ID,
				CategoryName:    cat.Name,
				LeafCategoryID:  cat.ID,
				CategoryPathIDs: categoryPath(cat.ID),
				InStock:         rng.Intn(10) > 0,
				Price:           def.Price + int64(rng.Intn(int(def.Price/4)+1)),
			})
		}
	}
	return listings
}

// batches splits listings into chunks of at most size.
func batches(listings []service.ListingInput, size int) [][]service.ListingInput {
	var out [][]service.ListingInput
	for start := 0; start < len(listings); start += size {
		out = append(out, listings[start:min(start+size, len(listings))])
	}
	return out
}
