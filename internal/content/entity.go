package content

import "time"

// Kind names a content variant.
type Kind string

const (
	KindProduct     Kind = "product"
	KindBlog        Kind = "blog"
	KindGallery     Kind = "gallery"
	KindPortfolio   Kind = "portfolio"
	KindCustomer    Kind = "customer"
	KindContactInfo Kind = "contact_info"
	KindInquiry     Kind = "inquiry"
)

// Resource paths of the content API.
const (
	PathMe          = "/api/me"
	PathLogin       = "/api/login"
	PathLogout      = "/api/logout"
	PathProducts    = "/api/products"
	PathBlogs       = "/api/blogs"
	PathGallery     = "/api/gallery"
	PathPortfolio   = "/api/portfolio"
	PathCustomers   = "/api/customers"
	PathContactInfo = "/api/contact-info"
	PathInquiries   = "/api/inquiries"
	PathAboutStats  = "/api/about-stats"
)

// Entity is implemented by the pointer type of every content variant.
type Entity interface {
	Kind() Kind
	EntityID() int64
	PhotoRefs() []string
	SetPhotoRefs(refs []string)
}

// Meta carries the fields shared by every variant. ID and the timestamps are
// assigned by the server.
type Meta struct {
	ID        int64     `json:"id"`
	Photos    []string  `json:"photos" validate:"dive,photoref"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) EntityID() int64 { return m.ID }

// PhotoRefs returns a copy of the photo list.
func (m *Meta) PhotoRefs() []string {
	return append([]string(nil), m.Photos...)
}

func (m *Meta) SetPhotoRefs(refs []string) {
	m.Photos = append([]string{}, refs...)
}

func (m *Meta) Created() time.Time { return m.CreatedAt }

// Stamp sets the server-owned fields. Only the handler layer calls it.
func (m *Meta) Stamp(id int64, created, updated time.Time) {
	m.ID = id
	m.CreatedAt = created
	m.UpdatedAt = updated
}

// User is the authenticated operator.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AboutStats is the read-only summary shown on the about page.
type AboutStats struct {
	Years    int `json:"years"`
	Projects int `json:"projects"`
	Clients  int `json:"clients"`
	Awards   int `json:"awards"`
}
