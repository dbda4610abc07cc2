package ramik

import (
	"context"
	"fmt"
)

// MaxGalleryImages is how many images a product holds besides the thumbnail.
const MaxGalleryImages = 3

// ProductDraft is a new product whose images are still local files.
type ProductDraft struct {
	DiscountPercentage *Amount
	PerfumeType        PerfumeType
	Thumbnail          File
	Gallery            []File
	Sizes              []SizeInput
	Translations       []TranslationInput
}

// SubmitProduct uploads the draft's images concurrently, waits for all of
// them, then creates the product. If any upload or the creation fails, the
// images that did upload are destroyed unless Media.KeepOrphans is set.
func (c *Client) SubmitProduct(ctx context.Context, d ProductDraft) (int64, error) {
	if len(d.Gallery) > MaxGalleryImages {
		return 0, invalidf("at most %d gallery images, got %d", MaxGalleryImages, len(d.Gallery))
	}
	if d.Thumbnail.Content == nil {
		return 0, invalidf("thumbnail is required")
	}
	if err := c.validate.Var(d.PerfumeType, "required,oneof=male female unisex"); err != nil {
		return 0, invalidf("perfume type: %v", err)
	}
	if err := c.validate.Var(d.Sizes, "required,min=1,dive"); err != nil {
		return 0, invalidf("sizes: %v", err)
	}
	if err := c.validate.Var(d.Translations, "required,min=1,dive"); err != nil {
		return 0, invalidf("translations: %v", err)
	}

	files := append([]File{d.Thumbnail}, d.Gallery...)
	images, err := c.Media.UploadAll(ctx, files)
	if err != nil {
		c.discard(ctx, images)
		return 0, err
	}

	in := CreateProductInput{
		DiscountPercentage: d.DiscountPercentage,
		PerfumeType:        d.PerfumeType,
		Thumbnail:          images[0],
		Images:             images[1:],
		Sizes:              d.Sizes,
		Translations:       d.Translations,
	}
	id, err := c.Products.Create(ctx, in)
	if err != nil {
		c.discard(ctx, images)
		return 0, fmt.Errorf("ramik: failed to create product: %w", err)
	}

	c.log.InfoContext(ctx, "product created", "product_id", id, "images", len(images))
	return id, nil
}

// discard destroys uploaded images after a failed submission.
// Failures are logged and otherwise ignored.
func (c *Client) discard(ctx context.Context, images []Image) {
	if c.config.Media.KeepOrphans {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := c.Media.Destroy(ctx, img.PublicID); err != nil {
			c.log.WarnContext(ctx, "failed to remove orphaned image", "public_id", img.PublicID, "error", err)
			continue
		}
		c.log.InfoContext(ctx, "removed orphaned image", "public_id", img.PublicID)
	}
}
