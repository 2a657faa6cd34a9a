// Command catalog-seed loads an initial catalog (categories, products, deals)
// from a JSON file into the record store. It can also hash an admin API key
// into the format FRESHCART_ADMIN_KEY_HASHES expects.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
	"github.com/freshcart/storefront/internal/recordstore"
	storestorage "github.com/freshcart/storefront/internal/storage/recordstore"
)

type tierJSON struct {
	MinQuantity int             `json:"minQuantity"`
	Price       decimal.Decimal `json:"price"`
}

type productJSON struct {
	Name                 string     `json:"name"`
	Category             string     `json:"category"`
	Images               []string   `json:"images"`
	Description          string     `json:"description"`
	PriceTiers           []tierJSON `json:"priceTiers"`
	StockCount           *int       `json:"stockCount"`
	Featured             bool       `json:"featured"`
	FeaturedOrder        int        `json:"featuredOrder"`
	DietaryTags          []string   `json:"dietaryTags"`
	FrequentlyBoughtWith []string   `json:"frequentlyBoughtWith"`
}

type categoryJSON struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Image string `json:"image"`
}

type dealJSON struct {
	Title      string    `json:"title"`
	ProductIDs []string  `json:"productIds"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Position   int       `json:"position"`
}

type catalogJSON struct {
	Categories []categoryJSON `json:"categories"`
	Products   []productJSON  `json:"products"`
	Deals      []dealJSON     `json:"deals"`
}

func main() {
	var (
		catalogFile string
		baseURL     string
		project     string
		apiKey      string
		adminKey    string
		pepper      string
	)

	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&baseURL, "record-store-url", "", "record store base URL (or FRESHCART_RECORD_STORE_BASE_URL env)")
	flag.StringVar(&project, "record-store-project", "", "record store project ID (or FRESHCART_RECORD_STORE_PROJECT_ID env)")
	flag.StringVar(&apiKey, "record-store-key", "", "record store API key (or FRESHCART_RECORD_STORE_API_KEY env)")
	flag.StringVar(&adminKey, "admin-key", "", "admin API key to hash (or FRESHCART_SEED_ADMIN_KEY env)")
	flag.StringVar(&pepper, "admin-key-pepper", "", "HMAC pepper for admin key hashing (or FRESHCART_ADMIN_KEY_PEPPER env)")
	flag.Parse()

	if baseURL == "" {
		baseURL = os.Getenv("FRESHCART_RECORD_STORE_BASE_URL")
	}
	if project == "" {
		project = os.Getenv("FRESHCART_RECORD_STORE_PROJECT_ID")
	}
	if apiKey == "" {
		apiKey = os.Getenv("FRESHCART_RECORD_STORE_API_KEY")
	}
	if adminKey == "" {
		adminKey = os.Getenv("FRESHCART_SEED_ADMIN_KEY")
	}
	if pepper == "" {
		pepper = os.Getenv("FRESHCART_ADMIN_KEY_PEPPER")
	}
	if baseURL == "" {
		slog.Error("record store URL is required: set --record-store-url or FRESHCART_RECORD_STORE_BASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, catalogFile, baseURL, project, apiKey); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if adminKey != "" {
		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(adminKey))
		slog.Info("admin key hashed; add to FRESHCART_ADMIN_KEY_HASHES",
			slog.String("hash", hex.EncodeToString(mac.Sum(nil))))
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, catalogFile, baseURL, project, apiKey string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	client := recordstore.NewClient(recordstore.Config{
		BaseURL:   baseURL,
		ProjectID: project,
		APIKey:    apiKey,
	})

	if err := seedCategories(ctx, client, catalog.Categories); err != nil {
		return errors.Wrap(err, "seed categories")
	}

	created, err := seedProducts(ctx, client, catalog.Products)
	if err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedDeals(ctx, client, catalog.Deals, created); err != nil {
		return errors.Wrap(err, "seed deals")
	}

	return nil
}

func seedCategories(ctx context.Context, client *recordstore.Client, categories []categoryJSON) error {
	for _, c := range categories {
		_, err := client.CreateRecord(ctx, "category", map[string]any{
			"Name":  c.Name,
			"icon":  c.Icon,
			"image": c.Image,
		})
		if err != nil {
			return errors.Wrapf(err, "create category %s", c.Name)
		}
		slog.Info("category created", slog.String("name", c.Name))
	}
	return nil
}

// seedProducts creates products through the repository so tiers are validated
// and discounts derived exactly as the admin API would. Returns assigned IDs
// keyed by product name, for deal references.
func seedProducts(ctx context.Context, client *recordstore.Client, products []productJSON) (map[string]string, error) {
	repo := storestorage.NewProductRepository(client)
	created := make(map[string]string, len(products))

	for _, p := range products {
		tiers := make([]pricing.Tier, len(p.PriceTiers))
		for i, t := range p.PriceTiers {
			tiers[i] = pricing.Tier{MinQuantity: t.MinQuantity, Price: t.Price}
		}

		stock := product.StockUnknown
		if p.StockCount != nil {
			stock = *p.StockCount
		}

		stored, err := repo.Create(ctx, product.Product{
			Name:                 p.Name,
			Category:             p.Category,
			Images:               p.Images,
			Description:          p.Description,
			InStock:              stock != 0,
			StockCount:           stock,
			PriceTiers:           tiers,
			Featured:             p.Featured,
			FeaturedOrder:        p.FeaturedOrder,
			DietaryTags:          p.DietaryTags,
			FrequentlyBoughtWith: p.FrequentlyBoughtWith,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "create product %s", p.Name)
		}

		created[p.Name] = stored.ID
		slog.Info("product created", slog.String("name", p.Name), slog.String("id", stored.ID))
	}
	return created, nil
}

// seedDeals resolves product references by name when no ID matches, so the
// catalog file can reference products it just defined.
func seedDeals(ctx context.Context, client *recordstore.Client, deals []dealJSON, created map[string]string) error {
	for _, d := range deals {
		ids := make([]string, 0, len(d.ProductIDs))
		for _, ref := range d.ProductIDs {
			if id, ok := created[ref]; ok {
				ids = append(ids, id)
				continue
			}
			ids = append(ids, ref)
		}

		_, err := client.CreateRecord(ctx, "deal", map[string]any{
			"title":      d.Title,
			"productIds": strings.Join(ids, ","),
			"expiresAt":  d.ExpiresAt.UTC().Format(time.RFC3339),
			"position":   d.Position,
		})
		if err != nil {
			return errors.Wrapf(err, "create deal %s", d.Title)
		}
		slog.Info("deal created", slog.String("title", d.Title))
	}
	return nil
}
