package models

import (
	"strings"
)

// Product is a catalog entry served by the fixture storefront
type Product struct {
	Slug        string
	Name        string
	Description string
	Price       int64 // minor units
	Taxon       string
	Sizes       []string
	Heights     []string
	Attributes  map[string]string
	// Position orders products by creation, oldest first
	Position int
}

// Taxon is a catalog category, addressed by its slash separated path
type Taxon struct {
	Path     string
	Name     string
	Parent   string
	Children []string
}

// Catalog is the fixture product list with its category tree
type Catalog struct {
	Taxons   []Taxon
	Products []Product
}

// Slugify turns a product name into its URL slug
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DefaultCatalog returns the demo catalog the page objects are written against
func DefaultCatalog() *Catalog {
	caps := "fashion-category/caps"
	simple := "fashion-category/caps/simple"
	dresses := "fashion-category/dresses"

	products := []Product{
		{Name: "Beautiful cap for woman", Price: 4599, Taxon: simple},
		{Name: "Sport cap", Price: 2930, Taxon: simple},
		{Name: "Cap with logo", Price: 123456, Taxon: simple},
		{Name: "Classic summer cap", Price: 1750, Taxon: simple},
		{Name: "Beige strappy summer dress", Price: 8990, Taxon: dresses, Sizes: []string{"S", "M", "L", "XL"}, Heights: []string{"Petite", "Regular", "Tall"}},
		{Name: "Raglan grey & black dress", Price: 6425, Taxon: dresses, Sizes: []string{"S", "M", "L", "XL", "XXL"}, Heights: []string{"Petite", "Regular", "Tall"}},
		{Name: "Loose white designer tunic", Price: 5230, Taxon: dresses, Sizes: []string{"S", "M", "L"}, Heights: []string{"Petite", "Regular"}},
		{Name: "Striped tunic with pockets", Price: 4100, Taxon: dresses, Sizes: []string{"S", "M"}, Heights: []string{"Petite", "Regular", "Tall"}},
		{Name: "Ribbed copper slim fit Tee", Price: 3100, Taxon: dresses, Sizes: []string{"S", "M", "L"}, Heights: []string{"Petite", "Regular"}},
	}
	for i := range products {
		products[i].Slug = Slugify(products[i].Name)
		products[i].Position = i
		products[i].Description = "Fixture product " + products[i].Name + "."
		products[i].Attributes = map[string]string{"Material": "100% cotton", "Collection": "Summer"}
	}

	return &Catalog{
		Taxons: []Taxon{
			{Path: "fashion-category", Name: "Fashion Category", Children: []string{caps, dresses}},
			{Path: caps, Name: "Caps", Parent: "fashion-category", Children: []string{simple}},
			{Path: simple, Name: "Simple", Parent: caps},
			{Path: dresses, Name: "Dresses", Parent: "fashion-category"},
		},
		Products: products,
	}
}

// Taxon finds a category by path. Aliases without the root segment resolve too,
// so "caps/simple" finds "fashion-category/caps/simple".
func (c *Catalog) Taxon(path string) (Taxon, bool) {
	path = strings.Trim(path, "/")
	for _, t := range c.Taxons {
		if t.Path == path || strings.TrimPrefix(t.Path, "fashion-category/") == path {
			return t, true
		}
	}
	return Taxon{}, false
}

// Product finds a product by slug
func (c *Catalog) Product(slug string) (Product, bool) {
	for _, p := range c.Products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}

// InTaxon lists the products in a category and its descendants, optionally
// filtered by a case-insensitive name search
func (c *Catalog) InTaxon(path, search string) []Product {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []Product
	for _, p := range c.Products {
		if p.Taxon != path && !strings.HasPrefix(p.Taxon, path+"/") {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// OptionValue is the form value of a size or height option, e.g. "dress_m"
// or "dress_height_regular"
func OptionValue(kind, label string) string {
	v := strings.ToLower(strings.ReplaceAll(label, " ", "_"))
	if kind == "height" {
		return "dress_height_" + v
	}
	return "dress_" + v
}
