package product

import (
	"context"

	"go.uber.org/zap"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
	"github.com/anuvataru/jewelry-catalog/internal/upload"
)

// Images are the accepted files that came with a create or update request.
type Images struct {
	Main    *upload.Image
	Gallery []upload.Image
}

type Service struct {
	repo   Repository
	images upload.Store
}

func NewService(repo Repository, images upload.Store) *Service {
	return &Service{repo: repo, images: images}
}

func (s *Service) ListPublic(ctx context.Context, f Filter) ([]Product, error) {
	products, err := s.repo.ListPublic(ctx, f)
	return products, apperr.Storage("product: list public", err)
}

func (s *Service) GetPublic(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.GetPublic(ctx, id)
	return p, apperr.Storage("product: get public", err)
}

func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListAll(ctx)
	return products, apperr.Storage("product: list all", err)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	return p, apperr.Storage("product: get", err)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	c, err := s.repo.Categories(ctx)
	return c, apperr.Storage("product: categories", err)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	st, err := s.repo.Stats(ctx)
	return st, apperr.Storage("product: stats", err)
}

// Create stores any attached images and then the row. Images stored for a
// row that could not be written are removed again.
func (s *Service) Create(ctx context.Context, in CreateInput, imgs Images) (Product, error) {
	mainRef, galleryRefs, err := s.store(ctx, imgs)
	if err != nil {
		return Product{}, err
	}
	if mainRef != "" {
		in.ImageURL = &mainRef
	}
	in.GalleryImages = append(in.GalleryImages, galleryRefs...)

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		s.discard(ctx, mainRef, galleryRefs)
		return Product{}, apperr.Storage("product: create", err)
	}
	return p, nil
}

// Update merges the supplied fields. A new main image replaces image_url; new
// gallery files are appended after any gallery_images sent in the same request
// and together replace the stored gallery. Files the row referenced before are
// left in place: any other product may point at the same URL.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, imgs Images) (Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Product{}, apperr.Storage("product: update", err)
	}

	mainRef, galleryRefs, err := s.store(ctx, imgs)
	if err != nil {
		return Product{}, err
	}
	if mainRef != "" {
		in.ImageURL = Some(&mainRef)
	}
	if len(galleryRefs) > 0 {
		gallery := []string{}
		if in.GalleryImages.Set {
			gallery = append(gallery, in.GalleryImages.Value...)
		}
		in.GalleryImages = Some(append(gallery, galleryRefs...))
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		s.discard(ctx, mainRef, galleryRefs)
		return Product{}, apperr.Storage("product: update", err)
	}
	return p, nil
}

func (s *Service) SetVisibility(ctx context.Context, id int64, visible bool) (Product, error) {
	p, err := s.repo.SetVisibility(ctx, id, visible)
	return p, apperr.Storage("product: set visibility", err)
}

// Delete removes the row only. Image URLs are free text and may be shared
// between products, so stored files are not reclaimed here.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return apperr.Storage("product: delete", s.repo.Delete(ctx, id))
}

func (s *Service) store(ctx context.Context, imgs Images) (string, []string, error) {
	var mainRef string
	var galleryRefs []string

	if imgs.Main != nil {
		ref, err := s.images.Save(ctx, *imgs.Main)
		if err != nil {
			return "", nil, apperr.Storage("product: save image", err)
		}
		mainRef = ref
	}
	for _, img := range imgs.Gallery {
		ref, err := s.images.Save(ctx, img)
		if err != nil {
			s.discard(ctx, mainRef, galleryRefs)
			return "", nil, apperr.Storage("product: save gallery image", err)
		}
		galleryRefs = append(galleryRefs, ref)
	}
	return mainRef, galleryRefs, nil
}

func (s *Service) discard(ctx context.Context, main string, gallery []string) {
	refs := gallery
	if main != "" {
		refs = append([]string{main}, gallery...)
	}
	for _, ref := range refs {
		if err := s.images.Delete(context.WithoutCancel(ctx), ref); err != nil {
			zap.L().Warn("product: remove stored image", zap.String("ref", ref), zap.Error(err))
		}
	}
}
