package devserver

import "github.com/five82/backoffice/internal/content"

func (s *Server) seed() {
	now := s.now()

	for _, p := range []*content.Product{
		{Name: "Walnut desk lamp", Brand: "Lumen", Category: "Lighting", Price: 89, Featured: true},
		{Name: "Linen armchair", Brand: "Hearth", Category: "Seating", Price: 420},
		{Name: "Oak side table", Brand: "Hearth", Category: "Tables", Price: 160},
	} {
		s.products.create(p, now)
	}

	for _, b := range []*content.Blog{
		{Title: "Choosing warm light", Author: "Studio", Excerpt: "Colour temperature at home.", Body: "Start with 2700K in living spaces.", Tags: []string{"lighting"}, Published: true},
		{Title: "Caring for oiled oak", Author: "Studio", Body: "Re-oil twice a year.", Tags: []string{"care", "wood"}},
	} {
		s.blogs.create(b, now)
	}

	for _, g := range []*content.GalleryItem{
		{Title: "Showroom entrance", Category: "Showroom"},
		{Title: "Reading corner", Category: "Interiors"},
		{Title: "Workshop bench", Category: "Workshop"},
		{Title: "Lamp detail", Category: "Products"},
		{Title: "Autumn window", Category: "Showroom"},
	} {
		s.gallery.create(g, now)
	}

	for _, p := range []*content.PortfolioItem{
		{Title: "Harbour cafe fit-out", Client: "Quay Coffee", Year: 2023},
		{Title: "Library reading room", Client: "City Library", Year: 2024, Link: "https://example.com/library"},
	} {
		s.portfolio.create(p, now)
	}

	for _, c := range []*content.Customer{
		{Name: "Quay Coffee", Company: "Quay Coffee Ltd", Email: "hello@quay.example.com"},
		{Name: "City Library", Company: "City Council", Email: "facilities@library.example.com"},
	} {
		s.customers.create(c, now)
	}

	productID := int64(1)
	s.inquiries.create(&content.Inquiry{
		Name:      "Rowan",
		Email:     "rowan@example.com",
		Message:   "Is the desk lamp available in black?",
		ProductID: &productID,
	}, now)

	s.contact = &content.ContactInfo{
		Address: "12 Mill Lane",
		Phone:   "+44 20 0000 0000",
		Email:   "studio@example.com",
		Hours:   "Tue-Sat 10:00-17:00",
	}
	s.contact.Stamp(1, now, now)
	s.contact.SetPhotoRefs(nil)
}
