package content

import (
	"strconv"
	"strings"
)

func idColumn[T Entity]() Column[T] {
	return Column[T]{Title: "ID", Width: 5, Value: func(v T) string { return strconv.FormatInt(v.EntityID(), 10) }}
}

func photosColumn[T Entity]() Column[T] {
	return Column[T]{Title: "Photos", Width: 6, Value: func(v T) string { return strconv.Itoa(len(v.PhotoRefs())) }}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func ProductSchema() Schema[*Product] {
	return Schema[*Product]{
		Kind:  KindProduct,
		Title: "Products",
		Path:  PathProducts,
		New:   func() *Product { return &Product{} },
		Label: func(p *Product) string { return p.Name },
		Columns: []Column[*Product]{
			idColumn[*Product](),
			{Title: "Name", Width: 28, Value: func(p *Product) string { return p.Name }},
			{Title: "Brand", Width: 16, Value: func(p *Product) string { return p.Brand }},
			{Title: "Category", Width: 16, Value: func(p *Product) string { return p.Category }},
			{Title: "Price", Width: 10, Value: func(p *Product) string { return strconv.FormatFloat(p.Price, 'f', 2, 64) }},
			{Title: "Featured", Width: 8, Value: func(p *Product) string { return yesNo(p.Featured) }},
			photosColumn[*Product](),
		},
		Fields: []Field[*Product]{
			TextField("name", "Name", func(p *Product) *string { return &p.Name }),
			TextField("brand", "Brand", func(p *Product) *string { return &p.Brand }),
			TextField("category", "Category", func(p *Product) *string { return &p.Category }),
			MultilineField("description", "Description", func(p *Product) *string { return &p.Description }),
			NumberField("price", "Price", func(p *Product) *float64 { return &p.Price }),
			BoolField("featured", "Featured", func(p *Product) *bool { return &p.Featured }),
		},
	}
}

func BlogSchema() Schema[*Blog] {
	return Schema[*Blog]{
		Kind:  KindBlog,
		Title: "Blogs",
		Path:  PathBlogs,
		New:   func() *Blog { return &Blog{} },
		Label: func(b *Blog) string { return b.Title },
		Columns: []Column[*Blog]{
			idColumn[*Blog](),
			{Title: "Title", Width: 32, Value: func(b *Blog) string { return b.Title }},
			{Title: "Author", Width: 16, Value: func(b *Blog) string { return b.Author }},
			{Title: "Tags", Width: 20, Value: func(b *Blog) string { return strings.Join(b.Tags, ", ") }},
			{Title: "Published", Width: 9, Value: func(b *Blog) string { return yesNo(b.Published) }},
			photosColumn[*Blog](),
		},
		Fields: []Field[*Blog]{
			TextField("title", "Title", func(b *Blog) *string { return &b.Title }),
			TextField("author", "Author", func(b *Blog) *string { return &b.Author }),
			TextField("excerpt", "Excerpt", func(b *Blog) *string { return &b.Excerpt }),
			MultilineField("body", "Body", func(b *Blog) *string { return &b.Body }),
			TagsField("tags", "Tags", func(b *Blog) *[]string { return &b.Tags }),
			BoolField("published", "Published", func(b *Blog) *bool { return &b.Published }),
		},
	}
}

func GallerySchema() Schema[*GalleryItem] {
	return Schema[*GalleryItem]{
		Kind:  KindGallery,
		Title: "Gallery",
		Path:  PathGallery,
		New:   func() *GalleryItem { return &GalleryItem{} },
		Label: func(g *GalleryItem) string { return g.Title },
		Columns: []Column[*GalleryItem]{
			idColumn[*GalleryItem](),
			{Title: "Title", Width: 30, Value: func(g *GalleryItem) string { return g.Title }},
			{Title: "Category", Width: 16, Value: func(g *GalleryItem) string { return g.Category }},
			{Title: "Caption", Width: 30, Value: func(g *GalleryItem) string { return g.Caption }},
			photosColumn[*GalleryItem](),
		},
		Fields: []Field[*GalleryItem]{
			TextField("title", "Title", func(g *GalleryItem) *string { return &g.Title }),
			TextField("caption", "Caption", func(g *GalleryItem) *string { return &g.Caption }),
			TextField("category", "Category", func(g *GalleryItem) *string { return &g.Category }),
		},
	}
}

func PortfolioSchema() Schema[*PortfolioItem] {
	return Schema[*PortfolioItem]{
		Kind:  KindPortfolio,
		Title: "Portfolio",
		Path:  PathPortfolio,
		New:   func() *PortfolioItem { return &PortfolioItem{} },
		Label: func(p *PortfolioItem) string { return p.Title },
		Columns: []Column[*PortfolioItem]{
			idColumn[*PortfolioItem](),
			{Title: "Title", Width: 28, Value: func(p *PortfolioItem) string { return p.Title }},
			{Title: "Client", Width: 20, Value: func(p *PortfolioItem) string { return p.Client }},
			{Title: "Year", Width: 6, Value: func(p *PortfolioItem) string {
				if p.Year == 0 {
					return ""
				}
				return strconv.Itoa(p.Year)
			}},
			photosColumn[*PortfolioItem](),
		},
		Fields: []Field[*PortfolioItem]{
			TextField("title", "Title", func(p *PortfolioItem) *string { return &p.Title }),
			TextField("client", "Client", func(p *PortfolioItem) *string { return &p.Client }),
			MultilineField("description", "Description", func(p *PortfolioItem) *string { return &p.Description }),
			IntegerField("year", "Year", func(p *PortfolioItem) *int { return &p.Year }),
			TextField("link", "Link", func(p *PortfolioItem) *string { return &p.Link }),
		},
	}
}

func CustomerSchema() Schema[*Customer] {
	return Schema[*Customer]{
		Kind:  KindCustomer,
		Title: "Customers",
		Path:  PathCustomers,
		New:   func() *Customer { return &Customer{} },
		Label: func(c *Customer) string { return c.Name },
		Columns: []Column[*Customer]{
			idColumn[*Customer](),
			{Title: "Name", Width: 22, Value: func(c *Customer) string { return c.Name }},
			{Title: "Company", Width: 20, Value: func(c *Customer) string { return c.Company }},
			{Title: "Email", Width: 26, Value: func(c *Customer) string { return c.Email }},
			{Title: "Phone", Width: 14, Value: func(c *Customer) string { return c.Phone }},
		},
		Fields: []Field[*Customer]{
			TextField("name", "Name", func(c *Customer) *string { return &c.Name }),
			TextField("company", "Company", func(c *Customer) *string { return &c.Company }),
			TextField("email", "Email", func(c *Customer) *string { return &c.Email }),
			TextField("phone", "Phone", func(c *Customer) *string { return &c.Phone }),
			TextField("website", "Website", func(c *Customer) *string { return &c.Website }),
		},
	}
}

func ContactInfoSchema() Schema[*ContactInfo] {
	return Schema[*ContactInfo]{
		Kind:      KindContactInfo,
		Title:     "Contact info",
		Path:      PathContactInfo,
		Singleton: true,
		New:       func() *ContactInfo { return &ContactInfo{} },
		Label:     func(c *ContactInfo) string { return c.Email },
		Columns: []Column[*ContactInfo]{
			{Title: "Email", Width: 26, Value: func(c *ContactInfo) string { return c.Email }},
			{Title: "Phone", Width: 14, Value: func(c *ContactInfo) string { return c.Phone }},
			{Title: "Address", Width: 30, Value: func(c *ContactInfo) string { return c.Address }},
			{Title: "Hours", Width: 20, Value: func(c *ContactInfo) string { return c.Hours }},
		},
		Fields: []Field[*ContactInfo]{
			TextField("address", "Address", func(c *ContactInfo) *string { return &c.Address }),
			TextField("phone", "Phone", func(c *ContactInfo) *string { return &c.Phone }),
			TextField("email", "Email", func(c *ContactInfo) *string { return &c.Email }),
			TextField("hours", "Hours", func(c *ContactInfo) *string { return &c.Hours }),
			TextField("mapUrl", "Map URL", func(c *ContactInfo) *string { return &c.MapURL }),
		},
	}
}

func InquirySchema() Schema[*Inquiry] {
	return Schema[*Inquiry]{
		Kind:  KindInquiry,
		Title: "Inquiries",
		Path:  PathInquiries,
		New:   func() *Inquiry { return &Inquiry{} },
		Label: func(i *Inquiry) string { return i.Name + " <" + i.Email + ">" },
		Columns: []Column[*Inquiry]{
			idColumn[*Inquiry](),
			{Title: "Name", Width: 20, Value: func(i *Inquiry) string { return i.Name }},
			{Title: "Email", Width: 24, Value: func(i *Inquiry) string { return i.Email }},
			{Title: "Product", Width: 8, Value: func(i *Inquiry) string {
				if i.ProductID == nil {
					return ""
				}
				return strconv.FormatInt(*i.ProductID, 10)
			}},
			{Title: "Read", Width: 5, Value: func(i *Inquiry) string { return yesNo(i.Read) }},
			{Title: "Message", Width: 30, Value: func(i *Inquiry) string { return i.Message }},
		},
		Fields: []Field[*Inquiry]{
			TextField("name", "Name", func(i *Inquiry) *string { return &i.Name }),
			TextField("email", "Email", func(i *Inquiry) *string { return &i.Email }),
			TextField("phone", "Phone", func(i *Inquiry) *string { return &i.Phone }),
			MultilineField("message", "Message", func(i *Inquiry) *string { return &i.Message }),
			ReferenceField("productId", "Product ID", func(i *Inquiry) **int64 { return &i.ProductID }),
			BoolField("read", "Read", func(i *Inquiry) *bool { return &i.Read }),
		},
	}
}
