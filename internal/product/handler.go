package product

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/anuvataru/jewelry-catalog/internal/upload"
	"github.com/anuvataru/jewelry-catalog/internal/validation"
)

type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHandler builds the product handler. maxImageBytes caps each uploaded image.
func NewHandler(service *Service, maxImageBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxImageBytes}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/products", h.listPublic)
	r.Get("/api/products/:id", h.getPublic)
	r.Get("/api/categories", h.categories)
}

// RegisterProtectedRoutes expects r to be the guarded /api/admin group.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/products", h.listAll)
	r.Get("/products/:id", h.get)
	r.Post("/products", h.create)
	r.Put("/products/:id", h.update)
	r.Delete("/products/:id", h.delete)
	r.Patch("/products/:id/visibility", h.setVisibility)
}

func (h *Handler) listPublic(c *fiber.Ctx) error {
	var v validation.Collector
	f := Filter{Category: strings.TrimSpace(c.Query("category")), Sort: SortNewest}

	if raw := c.Query("featured"); raw != "" {
		featured, err := validation.ParseBool(raw)
		if err != nil {
			v.Add("featured", "featured must be a boolean")
		}
		f.FeaturedOnly = featured
	}
	if raw := c.Query("sort"); raw != "" {
		switch s := Sort(strings.ToLower(raw)); s {
		case SortNewest, SortPriceLow, SortPriceHigh, SortName:
			f.Sort = s
		default:
			v.Add("sort", "sort must be one of newest, price-low, price-high, name")
		}
	}
	if err := v.Err(); err != nil {
		return err
	}

	products, err := h.service.ListPublic(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getPublic(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	p, err := h.service.GetPublic(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) categories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	products, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) create(c *fiber.Ctx) error {
	// image rules are checked first so a rejected file never leaves a row behind
	imgs, err := h.images(c)
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	in, err := parseCreate(p)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), in, imgs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"id":      created.ID,
		"product": created,
	})
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	imgs, err := h.images(c)
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	in, err := parseUpdate(p)
	if err != nil {
		return err
	}

	updated, err := h.service.Update(c.UserContext(), id, in, imgs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": updated,
	})
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

func (h *Handler) setVisibility(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	visible, err := parseVisibility(p)
	if err != nil {
		return err
	}

	updated, err := h.service.SetVisibility(c.UserContext(), id, visible)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Product visibility updated successfully",
		"product": updated,
	})
}

// images checks the optional "image" file and any "gallery" files.
func (h *Handler) images(c *fiber.Ctx) (Images, error) {
	var imgs Images
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return imgs, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return imgs, nil
	}

	if files := form.File["image"]; len(files) > 0 {
		img, err := upload.CheckImage(files[0], h.maxBytes)
		if err != nil {
			return Images{}, err
		}
		imgs.Main = &img
	}
	for _, fh := range form.File["gallery"] {
		img, err := upload.CheckImage(fh, h.maxBytes)
		if err != nil {
			return Images{}, err
		}
		imgs.Gallery = append(imgs.Gallery, img)
	}
	return imgs, nil
}

// productID parses :id. Anything that is not a positive integer cannot name
// a product, so it gets the same 404 as a missing one.
func productID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, ErrNotFound
	}
	return id, nil
}
