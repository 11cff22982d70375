package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"catalogfinder/internal/repository"
	"catalogfinder/internal/service"
	"catalogfinder/internal/tree"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("catalogfinder")

	catalogRepo := repository.NewCatalogRepo(db)
	treeRepo := repository.NewTreeRepo(db)
	catalogSvc := service.NewCatalogService(catalogRepo, treeRepo, nil, tree.Options{MaxDepth: 6, MinLeafSize: 2})

	headers := []string{"product_id", "name", "price", "rating", "Category", "Origin"}
	rows := [][]string{
		{"p01", "House Blend", "12.50", "4.2", "Coffee", "Brazil"},
		{"p02", "Dark Roast", "13.00", "4.5", "Coffee", "Colombia"},
		{"p03", "Single Origin Kenya", "18.50", "4.8", "Coffee", "Kenya"},
		{"p04", "Decaf Classic", "11.00", "3.9", "Coffee", "Brazil"},
		{"p05", "Earl Grey", "8.50", "4.1", "Tea", "India"},
		{"p06", "Green Sencha", "9.00", "4.4", "Tea", "Japan"},
		{"p07", "Chamomile", "7.50", "3.8", "Tea", "Egypt"},
		{"p08", "Espresso Roast", "14.50", "4.7", "Coffee", "Italy"},
		{"p09", "Masala Chai", "10.00", "4.3", "Tea", "India"},
		{"p10", "Cold Brew Blend", "16.00", "4.6", "Coffee", "Ethiopia"},
		{"p11", "White Peony", "15.50", "4.5", "Tea", "China"},
		{"p12", "Breakfast Blend", "11.50", "4.0", "Coffee", "Brazil"},
	}

	catalog, snapshot, err := catalogSvc.Create(ctx, "merchant_seed", "Demo Coffee & Tea", headers, rows, tree.Options{})
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	fmt.Printf("Seeded catalog %s with %d products\n", catalog.ID, catalog.ProductCount)
	fmt.Printf("Tree %s: depth=%d leaves=%d built in %dms\n",
		snapshot.ID, snapshot.Metrics.Depth, snapshot.Metrics.LeafCount, snapshot.Metrics.BuildTimeMs)
	for _, p := range snapshot.Profiles {
		if p.IsPreferenceRelevant {
			fmt.Printf("  askable: %s\n", p.Description)
		}
	}
}
