package store

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kobzarvs/qstock/internal/record"
)

// seedSpace namespaces the name-based ids of demo data, so the same seed
// always produces the same ids.
var seedSpace = uuid.MustParse("6f1c7f52-4a0e-4d8e-9a57-0c3c1f0f6a11")

var (
	seedFamilies = []string{
		"Bakery", "Dairy", "Fruit", "Vegetables", "Pantry", "Frozen",
		"Drinks", "Snacks", "Spices", "Cleaning",
	}
	seedProducts = []string{
		"bread", "milk", "apples", "carrots", "rice", "peas",
		"juice", "crackers", "pepper", "soap",
	}
	seedFormats   = []string{"", "500g", "1l", "1kg", "6 pack"}
	seedProducers = []string{"Acme Foods", "Northfield", "Green Valley", "Harbor & Co"}
	seedShops     = []string{"Corner Market", "Hypermart", "Farmers Market"}
)

func seedID(kind string, i int) string {
	return uuid.NewSHA1(seedSpace, []byte(fmt.Sprintf("%s/%d", kind, i))).String()
}

// Seed replaces the store contents with n demo records. Every ninth name
// is left out of the catalog and every fourth record goes to the other
// list.
func (s *Store) Seed(n int) {
	doc := Document{
		Producers: make(map[string]string),
		Shops:     make(map[string]string),
	}
	producers := make([]string, len(seedProducers))
	for i, name := range seedProducers {
		producers[i] = seedID("producer", i)
		doc.Producers[producers[i]] = name
	}
	shops := make([]string, len(seedShops))
	for i, name := range seedShops {
		shops[i] = seedID("shop", i)
		doc.Shops[shops[i]] = name
	}

	for i := range n {
		fam := i % len(seedFamilies)
		name := fmt.Sprintf("%s %d", seedProducts[fam], i/len(seedFamilies)+1)
		r := record.Record{
			ID:         seedID("record", i),
			Name:       name,
			Family:     seedFamilies[fam],
			Format:     seedFormats[i%len(seedFormats)],
			ProducerID: producers[i%len(producers)],
			ShopIDs:    []string{shops[i%len(shops)]},
			Have:       i%3 == 0,
			Buy:        i%5 == 0,
		}
		if i%4 == 3 {
			r.Kind = record.KindOther
		}
		if i%7 == 0 {
			r.Notes = "check expiry"
		}
		doc.Records = append(doc.Records, r)
		if i%9 != 8 {
			doc.Catalog = append(doc.Catalog, name)
		}
	}

	s.mu.Lock()
	s.replace(doc)
	s.log.Info("seeded demo inventory", zap.Int("records", n))
	s.changed()
}
