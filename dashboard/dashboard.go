// Package dashboard binds the admin API to the query cache: one cached query
// per screen and one mutation per action, each invalidating the resources it
// makes stale.
package dashboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/query"
)

// Cache resource names.
const (
	Categories   = "categories"
	Languages    = "languages"
	Regions      = "regions"
	Users        = "users"
	Products     = "products"
	Product      = "product"
	ProductSizes = "product-sizes"
)

// Resources that change whenever a product or one of its children changes.
var (
	productResources     = []string{Products, Product}
	productSizeResources = []string{Products, Product, ProductSizes}
)

// Dashboard is the data layer behind the admin screens.
type Dashboard struct {
	client *ramik.Client
	cache  *query.Cache
	log    *slog.Logger
}

// New creates a Dashboard. A nil cache gets a fresh one; a nil logger means
// slog.Default().
func New(client *ramik.Client, cache *query.Cache, log *slog.Logger) *Dashboard {
	if cache == nil {
		cache = query.NewCache(query.Options{})
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dashboard{client: client, cache: cache, log: log.With("component", "dashboard")}
}

// Client returns the underlying API client.
func (d *Dashboard) Client() *ramik.Client {
	return d.client
}

// Cache returns the query cache.
func (d *Dashboard) Cache() *query.Cache {
	return d.cache
}

// notify logs a failed action the way the UI would raise a toast, and hands
// the error back unchanged.
func (d *Dashboard) notify(ctx context.Context, action string, err error) error {
	if err == nil {
		return nil
	}
	level := slog.LevelError
	if errors.Is(err, ramik.ErrSessionEnded) {
		level = slog.LevelWarn
	}
	d.log.Log(ctx, level, action+" failed", "error", err)
	return err
}

func fetch[T any](ctx context.Context, d *Dashboard, action string, q query.Query[T]) (T, error) {
	v, err := q.Run(ctx, d.cache)
	return v, d.notify(ctx, action, err)
}

func mutate[In, Out any](ctx context.Context, d *Dashboard, action string, m query.Mutation[In, Out], in In) (Out, error) {
	out, err := m.Run(ctx, d.cache, in)
	if err == nil {
		d.log.InfoContext(ctx, action+" succeeded")
	}
	return out, d.notify(ctx, action, err)
}

// noResult adapts a call that returns only an error.
func noResult[In any](fn func(context.Context, In) error) func(context.Context, In) (struct{}, error) {
	return func(ctx context.Context, in In) (struct{}, error) {
		return struct{}{}, fn(ctx, in)
	}
}

// Categories

func (d *Dashboard) Categories(ctx context.Context) ([]ramik.Category, error) {
	return fetch(ctx, d, "load categories", query.Query[[]ramik.Category]{
		Key:  query.K(Categories),
		Call: d.client.Categories.List,
	})
}

func (d *Dashboard) CreateCategory(ctx context.Context, name string) (*ramik.Category, error) {
	return mutate(ctx, d, "create category", query.Mutation[string, *ramik.Category]{
		Call:        d.client.Categories.Create,
		Invalidates: []string{Categories},
	}, name)
}

type rename struct {
	id   int64
	name string
}

func (d *Dashboard) UpdateCategory(ctx context.Context, id int64, name string) (*ramik.Category, error) {
	return mutate(ctx, d, "update category", query.Mutation[rename, *ramik.Category]{
		Call: func(ctx context.Context, r rename) (*ramik.Category, error) {
			return d.client.Categories.Update(ctx, r.id, r.name)
		},
		Invalidates: []string{Categories},
	}, rename{id, name})
}

func (d *Dashboard) DeleteCategory(ctx context.Context, id int64) error {
	_, err := mutate(ctx, d, "delete category", query.Mutation[int64, struct{}]{
		Call:        noResult(d.client.Categories.Delete),
		Invalidates: []string{Categories},
	}, id)
	return err
}

// Languages

func (d *Dashboard) Languages(ctx context.Context) ([]ramik.Language, error) {
	return fetch(ctx, d, "load languages", query.Query[[]ramik.Language]{
		Key:  query.K(Languages),
		Call: d.client.Languages.List,
	})
}

func (d *Dashboard) CreateLanguage(ctx context.Context, in ramik.LanguageInput) (*ramik.Language, error) {
	return mutate(ctx, d, "create language", query.Mutation[ramik.LanguageInput, *ramik.Language]{
		Call:        d.client.Languages.Create,
		Invalidates: []string{Languages},
	}, in)
}

func (d *Dashboard) UpdateLanguage(ctx context.Context, id int64, name string) (*ramik.Language, error) {
	return mutate(ctx, d, "update language", query.Mutation[rename, *ramik.Language]{
		Call: func(ctx context.Context, r rename) (*ramik.Language, error) {
			return d.client.Languages.Update(ctx, r.id, r.name)
		},
		Invalidates: []string{Languages},
	}, rename{id, name})
}

func (d *Dashboard) DeleteLanguage(ctx context.Context, id int64) error {
	_, err := mutate(ctx, d, "delete language", query.Mutation[int64, struct{}]{
		Call:        noResult(d.client.Languages.Delete),
		Invalidates: []string{Languages},
	}, id)
	return err
}

// Regions

func (d *Dashboard) Regions(ctx context.Context) ([]ramik.Region, error) {
	return fetch(ctx, d, "load regions", query.Query[[]ramik.Region]{
		Key:  query.K(Regions),
		Call: d.client.Regions.List,
	})
}

func (d *Dashboard) Region(ctx context.Context, id int64) (*ramik.Region, error) {
	return fetch(ctx, d, "load region", query.Query[*ramik.Region]{
		Key: query.K(Regions, id),
		Call: func(ctx context.Context) (*ramik.Region, error) {
			return d.client.Regions.Get(ctx, id)
		},
	})
}

func (d *Dashboard) CreateRegion(ctx context.Context, in ramik.RegionInput) (*ramik.Region, error) {
	return mutate(ctx, d, "create region", query.Mutation[ramik.RegionInput, *ramik.Region]{
		Call:        d.client.Regions.Create,
		Invalidates: []string{Regions},
	}, in)
}

type regionUpdate struct {
	id int64
	in ramik.RegionInput
}

func (d *Dashboard) UpdateRegion(ctx context.Context, id int64, in ramik.RegionInput) (*ramik.Region, error) {
	return mutate(ctx, d, "update region", query.Mutation[regionUpdate, *ramik.Region]{
		Call: func(ctx context.Context, u regionUpdate) (*ramik.Region, error) {
			return d.client.Regions.Update(ctx, u.id, u.in)
		},
		Invalidates: []string{Regions},
	}, regionUpdate{id, in})
}

func (d *Dashboard) DeleteRegion(ctx context.Context, id int64) error {
	_, err := mutate(ctx, d, "delete region", query.Mutation[int64, struct{}]{
		Call:        noResult(d.client.Regions.Delete),
		Invalidates: []string{Regions},
	}, id)
	return err
}

// Users

func (d *Dashboard) Users(ctx context.Context) ([]ramik.User, error) {
	return fetch(ctx, d, "load users", query.Query[[]ramik.User]{
		Key:  query.K(Users),
		Call: d.client.Users.List,
	})
}

type userUpdate struct {
	id int64
	in ramik.UserUpdate
}

// UpdateUser applies the change to the cached user list before the call
// resolves, restores the list if the call fails, and always marks the list
// stale afterwards.
func (d *Dashboard) UpdateUser(ctx context.Context, id int64, in ramik.UserUpdate) (*ramik.User, error) {
	u, err := query.Optimistic[[]ramik.User, userUpdate, *ramik.User]{
		Key: query.K(Users),
		Apply: func(current []ramik.User, u userUpdate) []ramik.User {
			next := make([]ramik.User, len(current))
			for i, user := range current {
				if user.ID == u.id {
					user = u.in.Apply(user)
				}
				next[i] = user
			}
			return next
		},
		Call: func(ctx context.Context, u userUpdate) (*ramik.User, error) {
			return d.client.Users.Update(ctx, u.id, u.in)
		},
	}.Run(ctx, d.cache, userUpdate{id, in})
	return u, d.notify(ctx, "update user", err)
}

func (d *Dashboard) DeleteUser(ctx context.Context, id int64) error {
	_, err := mutate(ctx, d, "delete user", query.Mutation[int64, struct{}]{
		Call:        noResult(d.client.Users.Delete),
		Invalidates: []string{Users},
	}, id)
	return err
}

// Products

func (d *Dashboard) Products(ctx context.Context) ([]ramik.Product, error) {
	return fetch(ctx, d, "load products", query.Query[[]ramik.Product]{
		Key:  query.K(Products),
		Call: d.client.Products.List,
	})
}

func (d *Dashboard) Product(ctx context.Context, id int64) (*ramik.ProductDetails, error) {
	return fetch(ctx, d, "load product", query.Query[*ramik.ProductDetails]{
		Key: query.K(Product, id),
		Call: func(ctx context.Context) (*ramik.ProductDetails, error) {
			return d.client.Products.Get(ctx, id)
		},
	})
}

func (d *Dashboard) CreateProduct(ctx context.Context, in ramik.CreateProductInput) (int64, error) {
	return mutate(ctx, d, "create product", query.Mutation[ramik.CreateProductInput, int64]{
		Call:        d.client.Products.Create,
		Invalidates: productResources,
	}, in)
}

// SubmitProduct uploads the draft's images and creates the product.
func (d *Dashboard) SubmitProduct(ctx context.Context, draft ramik.ProductDraft) (int64, error) {
	return mutate(ctx, d, "submit product", query.Mutation[ramik.ProductDraft, int64]{
		Call:        d.client.SubmitProduct,
		Invalidates: productResources,
	}, draft)
}

type productUpdate struct {
	id int64
	in ramik.UpdateProductInput
}

func (d *Dashboard) UpdateProduct(ctx context.Context, id int64, in ramik.UpdateProductInput) (*ramik.Product, error) {
	return mutate(ctx, d, "update product", query.Mutation[productUpdate, *ramik.Product]{
		Call: func(ctx context.Context, u productUpdate) (*ramik.Product, error) {
			return d.client.Products.Update(ctx, u.id, u.in)
		},
		Invalidates: productResources,
	}, productUpdate{id, in})
}

func (d *Dashboard) DeleteProduct(ctx context.Context, id int64) error {
	_, err := mutate(ctx, d, "delete product", query.Mutation[int64, struct{}]{
		Call:        noResult(d.client.Products.Delete),
		Invalidates: productResources,
	}, id)
	return err
}

// Product sizes

func (d *Dashboard) ProductSizes(ctx context.Context, productID int64) ([]ramik.ProductSize, error) {
	return fetch(ctx, d, "load product sizes", query.Query[[]ramik.ProductSize]{
		Key: query.K(ProductSizes, productID),
		Call: func(ctx context.Context) ([]ramik.ProductSize, error) {
			return d.client.ProductSizes.List(ctx, productID)
		},
	})
}

func (d *Dashboard) CreateProductSize(ctx context.Context, in ramik.ProductSizeInput) (*ramik.ProductSize, error) {
	return mutate(ctx, d, "create product size", query.Mutation[ramik.ProductSizeInput, *ramik.ProductSize]{
		Call:        d.client.ProductSizes.Create,
		Invalidates: productSizeResources,
	}, in)
}

type sizeUpdate struct {
	id int64
	in ramik.ProductSizeUpdate
}

func (d *Dashboard) UpdateProductSize(ctx context.Context, id int64, in ramik.ProductSizeUpdate) (*ramik.ProductSize, error) {
	return mutate(ctx, d, "update product size", query.Mutation[sizeUpdate, *ramik.ProductSize]{
		Call: func(ctx context.Context, u sizeUpdate) (*ramik.ProductSize, error) {
			return d.client.ProductSizes.Update(ctx, u.id, u.in)
		},
		Invalidates: productSizeResources,
	}, sizeUpdate{id, in})
}

func (d *Dashboard) DeleteProductSize(ctx context.Context, id int64) error {
	_, err := mutate(ctx, d, "delete product size", query.Mutation[int64, struct{}]{
		Call:        noResult(d.client.ProductSizes.Delete),
		Invalidates: productSizeResources,
	}, id)
	return err
}

// Product translations

func (d *Dashboard) CreateProductTranslation(ctx context.Context, in ramik.ProductTranslationInput) (*ramik.ProductTranslation, error) {
	return mutate(ctx, d, "create product translation", query.Mutation[ramik.ProductTranslationInput, *ramik.ProductTranslation]{
		Call:        d.client.ProductTranslations.Create,
		Invalidates: productResources,
	}, in)
}

type translationUpdate struct {
	id int64
	in ramik.ProductTranslationUpdate
}

func (d *Dashboard) UpdateProductTranslation(ctx context.Context, id int64, in ramik.ProductTranslationUpdate) (*ramik.ProductTranslation, error) {
	return mutate(ctx, d, "update product translation", query.Mutation[translationUpdate, *ramik.ProductTranslation]{
		Call: func(ctx context.Context, u translationUpdate) (*ramik.ProductTranslation, error) {
			return d.client.ProductTranslations.Update(ctx, u.id, u.in)
		},
		Invalidates: productResources,
	}, translationUpdate{id, in})
}

func (d *Dashboard) DeleteProductTranslation(ctx context.Context, id int64) error {
	_, err := mutate(ctx, d, "delete product translation", query.Mutation[int64, struct{}]{
		Call:        noResult(d.client.ProductTranslations.Delete),
		Invalidates: productResources,
	}, id)
	return err
}
