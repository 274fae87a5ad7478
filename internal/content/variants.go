package content

type Product struct {
	Meta
	Name        string  `json:"name" validate:"required,max=120"`
	Brand       string  `json:"brand" validate:"max=80"`
	Category    string  `json:"category" validate:"required,max=60"`
	Description string  `json:"description" validate:"max=4000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Featured    bool    `json:"featured"`
}

func (*Product) Kind() Kind { return KindProduct }

type Blog struct {
	Meta
	Title     string   `json:"title" validate:"required,max=160"`
	Author    string   `json:"author" validate:"max=80"`
	Excerpt   string   `json:"excerpt" validate:"max=400"`
	Body      string   `json:"body" validate:"required"`
	Tags      []string `json:"tags" validate:"dive,max=40"`
	Published bool     `json:"published"`
}

func (*Blog) Kind() Kind { return KindBlog }

type GalleryItem struct {
	Meta
	Title    string `json:"title" validate:"required,max=160"`
	Caption  string `json:"caption" validate:"max=400"`
	Category string `json:"category" validate:"max=60"`
}

func (*GalleryItem) Kind() Kind { return KindGallery }

type PortfolioItem struct {
	Meta
	Title       string `json:"title" validate:"required,max=160"`
	Client      string `json:"client" validate:"max=120"`
	Description string `json:"description" validate:"max=4000"`
	Year        int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Link        string `json:"link" validate:"omitempty,url"`
}

func (*PortfolioItem) Kind() Kind { return KindPortfolio }

type Customer struct {
	Meta
	Name    string `json:"name" validate:"required,max=120"`
	Company string `json:"company" validate:"max=120"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=40"`
	Website string `json:"website" validate:"omitempty,url"`
}

func (*Customer) Kind() Kind { return KindCustomer }

// ContactInfo is a singleton: there is exactly one, addressed without an id.
type ContactInfo struct {
	Meta
	Address string `json:"address" validate:"max=400"`
	Phone   string `json:"phone" validate:"max=40"`
	Email   string `json:"email" validate:"required,email"`
	Hours   string `json:"hours" validate:"max=200"`
	MapURL  string `json:"mapUrl" validate:"omitempty,url"`
}

func (*ContactInfo) Kind() Kind { return KindContactInfo }

// Inquiry is a message submitted from the public site. ProductID is a weak
// reference and may point at a product that no longer exists.
type Inquiry struct {
	Meta
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"max=40"`
	Message   string `json:"message" validate:"required,max=4000"`
	ProductID *int64 `json:"productId,omitempty" validate:"omitempty,gt=0"`
	Read      bool   `json:"read"`
}

func (*Inquiry) Kind() Kind { return KindInquiry }

var (
	_ Entity = (*Product)(nil)
	_ Entity = (*Blog)(nil)
	_ Entity = (*GalleryItem)(nil)
	_ Entity = (*PortfolioItem)(nil)
	_ Entity = (*Customer)(nil)
	_ Entity = (*ContactInfo)(nil)
	_ Entity = (*Inquiry)(nil)
)
