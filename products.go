package ramik

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// PerfumeType is the target audience of a perfume.
type PerfumeType string

const (
	PerfumeMale   PerfumeType = "male"
	PerfumeFemale PerfumeType = "female"
	PerfumeUnisex PerfumeType = "unisex"
)

// Image is a hosted picture: its public URL and the media service's id.
type Image struct {
	URL      string `json:"url" validate:"required"`
	PublicID string `json:"publicId" validate:"required"`
}

// Product is a row of the admin product list. Title and description come
// from the English translation and are nil when it is missing.
type Product struct {
	ID                 int64         `json:"id"`
	Title              *string       `json:"title"`
	Description        *string       `json:"description"`
	Price              Amount        `json:"price"`
	DiscountPercentage Amount        `json:"discountPercentage"`
	InStock            bool          `json:"inStock"`
	Active             bool          `json:"active"`
	ThumbnailURL       string        `json:"thumbnailUrl,omitempty"`
	Sizes              []ProductSize `json:"sizes,omitempty"`
}

// TranslationDetail is a translation as embedded in ProductDetails.
type TranslationDetail struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Language    Language `json:"language"`
}

// ProductDetails is the full admin view of one product.
type ProductDetails struct {
	ID                 int64               `json:"id"`
	PerfumeType        PerfumeType         `json:"perfumeType"`
	DiscountPercentage Amount              `json:"discountPercentage"`
	ThumbnailURL       *string             `json:"thumbnailUrl"`
	ThumbnailPublicID  *string             `json:"thumbnailPublicId"`
	Image1URL          *string             `json:"image1Url"`
	Image1PublicID     *string             `json:"image1PublicId"`
	Image2URL          *string             `json:"image2Url"`
	Image2PublicID     *string             `json:"image2PublicId"`
	Image3URL          *string             `json:"image3Url"`
	Image3PublicID     *string             `json:"image3PublicId"`
	Active             bool                `json:"active"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
	Translations       []TranslationDetail `json:"translations"`
	Sizes              []ProductSize       `json:"sizes"`
}

// Gallery returns the non-empty gallery images in slot order.
func (p *ProductDetails) Gallery() []Image {
	var out []Image
	slots := [][2]*string{
		{p.Image1URL, p.Image1PublicID},
		{p.Image2URL, p.Image2PublicID},
		{p.Image3URL, p.Image3PublicID},
	}
	for _, s := range slots {
		if s[0] != nil && *s[0] != "" {
			img := Image{URL: *s[0]}
			if s[1] != nil {
				img.PublicID = *s[1]
			}
			out = append(out, img)
		}
	}
	return out
}

// SizeInput is one size of a new product. A nil Size is the default size.
type SizeInput struct {
	Size  *string `json:"size"`
	Stock int     `json:"stock"`
	Price Amount  `json:"price"`
}

// TranslationInput is one translation of a new product.
type TranslationInput struct {
	LanguageID  int64  `json:"languageId" validate:"required"`
	CategoryID  int64  `json:"categoryId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// CreateProductInput is the payload of a product creation.
type CreateProductInput struct {
	DiscountPercentage *Amount            `json:"discountPercentage,omitempty"`
	PerfumeType        PerfumeType        `json:"perfumeType" validate:"required,oneof=male female unisex"`
	Thumbnail          Image              `json:"thumbnail" validate:"required"`
	Images             []Image            `json:"images,omitempty" validate:"max=3,dive"`
	Sizes              []SizeInput        `json:"sizes" validate:"required,min=1,dive"`
	Translations       []TranslationInput `json:"translations" validate:"required,min=1,dive"`
}

// ImageSlot names one of the four image positions of a product.
type ImageSlot string

const (
	SlotThumbnail ImageSlot = "thumbnail"
	SlotImage1    ImageSlot = "image1"
	SlotImage2    ImageSlot = "image2"
	SlotImage3    ImageSlot = "image3"
)

// UpdateProductInput patches a product. Nil fields are left untouched;
// Images sets slots to new pictures and Clear nulls slots out.
type UpdateProductInput struct {
	PerfumeType        *PerfumeType
	DiscountPercentage *Amount
	Active             *bool
	Images             map[ImageSlot]Image
	Clear              []ImageSlot
}

func (in UpdateProductInput) validate() error {
	if in.PerfumeType != nil {
		switch *in.PerfumeType {
		case PerfumeMale, PerfumeFemale, PerfumeUnisex:
		default:
			return invalidf("unknown perfume type %q", *in.PerfumeType)
		}
	}
	for slot := range in.Images {
		if !slot.valid() {
			return invalidf("unknown image slot %q", slot)
		}
	}
	for _, slot := range in.Clear {
		if !slot.valid() {
			return invalidf("unknown image slot %q", slot)
		}
		if _, ok := in.Images[slot]; ok {
			return invalidf("image slot %q both set and cleared", slot)
		}
	}
	return nil
}

func (s ImageSlot) valid() bool {
	switch s {
	case SlotThumbnail, SlotImage1, SlotImage2, SlotImage3:
		return true
	}
	return false
}

// MarshalJSON writes only the fields being changed; cleared slots are sent
// as explicit nulls.
func (in UpdateProductInput) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if in.PerfumeType != nil {
		out["perfumeType"] = *in.PerfumeType
	}
	if in.DiscountPercentage != nil {
		out["discountPercentage"] = *in.DiscountPercentage
	}
	if in.Active != nil {
		out["active"] = *in.Active
	}
	for slot, img := range in.Images {
		out[string(slot)+"Url"] = img.URL
		out[string(slot)+"PublicId"] = img.PublicID
	}
	for _, slot := range in.Clear {
		out[string(slot)+"Url"] = nil
		out[string(slot)+"PublicId"] = nil
	}
	return json.Marshal(out)
}

// ProductService talks to /api/products.
type ProductService struct {
	c *Client
}

// List returns all products, newest first, with English titles.
func (s *ProductService) List(ctx context.Context) ([]Product, error) {
	return call[[]Product](ctx, s.c, Request{Path: "/api/products/admin"}, "products")
}

func (s *ProductService) Get(ctx context.Context, id int64) (*ProductDetails, error) {
	return call[*ProductDetails](ctx, s.c, Request{Path: idPath("/api/products/admin", id)}, "product")
}

// Create creates a product from already uploaded images and returns its id.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (int64, error) {
	if err := s.c.check(in); err != nil {
		return 0, err
	}
	return call[int64](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/products",
		Body:   in,
	}, "productId")
}

func (s *ProductService) Update(ctx context.Context, id int64, in UpdateProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return call[*Product](ctx, s.c, Request{
		Method: http.MethodPatch,
		Path:   idPath("/api/products", id),
		Body:   in,
	}, "product")
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: idPath("/api/products", id)})
	return err
}
