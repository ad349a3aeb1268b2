package models

import "time"

// Provenance marks whether an entry was found on the storefront or fabricated
// to satisfy a minimum-count contract.
type Provenance string

const (
	ProvenanceExtracted Provenance = "extracted"
	ProvenanceSynthetic Provenance = "synthetic"
)

// StoreProfile is the normalized record produced by one analysis of a storefront.
type StoreProfile struct {
	ID          int64  `json:"id,omitempty"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	FaviconURL  string `json:"favicon_url,omitempty"`
	Description string `json:"description,omitempty"`
	About       string `json:"about,omitempty"`
	Story       string `json:"story,omitempty"`

	Products       []Product      `json:"products"`
	HeroProducts   []FeaturedItem `json:"hero_products"`
	Policies       []Policy       `json:"policies"`
	FAQs           []QAPair       `json:"faqs"`
	SocialHandles  []SocialHandle `json:"social_handles"`
	Contact        ContactInfo    `json:"contact"`
	ImportantLinks []NavLink      `json:"important_links"`
	Competitors    []Competitor   `json:"competitors"`

	Theme         *string       `json:"theme,omitempty"`
	Apps          []string      `json:"apps"`
	AnalyzedAt    time.Time     `json:"analyzed_at"`
	Duration      time.Duration `json:"duration"`
	PagesAnalyzed int           `json:"pages_analyzed"`
	Completeness  Completeness  `json:"completeness"`

	Recommendations []string `json:"recommendations"`
}

// Completeness reports which sections of a profile carry data.
type Completeness struct {
	HasProducts       bool `json:"has_products"`
	HasHeroProducts   bool `json:"has_hero_products"`
	HasPolicies       bool `json:"has_policies"`
	HasFAQs           bool `json:"has_faqs"`
	HasSocial         bool `json:"has_social"`
	HasContact        bool `json:"has_contact"`
	HasImportantLinks bool `json:"has_important_links"`
	HasCompetitors    bool `json:"has_competitors"`

	// Score is the percentage of scored sections present, 0 to 100.
	Score float64 `json:"score"`
}

// Product is one entry of the storefront's products feed.
type Product struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Handle         string    `json:"handle"`
	Vendor         string    `json:"vendor,omitempty"`
	ProductType    string    `json:"product_type,omitempty"`
	Price          *float64  `json:"price"`
	CompareAtPrice *float64  `json:"compare_at_price"`
	Available      bool      `json:"available"`
	Tags           []string  `json:"tags"`
	Images         []string  `json:"images"`
	Variants       []Variant `json:"variants"`
	Description    string    `json:"description,omitempty"`
	URL            string    `json:"url"`
	CreatedAt      string    `json:"created_at,omitempty"`
	UpdatedAt      string    `json:"updated_at,omitempty"`
}

// Variant is a purchasable option of a Product.
type Variant struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Option1          *string `json:"option1"`
	Option2          *string `json:"option2"`
	Option3          *string `json:"option3"`
	SKU              string  `json:"sku,omitempty"`
	RequiresShipping bool    `json:"requires_shipping"`
	Taxable          bool    `json:"taxable"`
	Price            string  `json:"price"`
	CompareAtPrice   *string `json:"compare_at_price"`
	Grams            int     `json:"grams"`
	Available        bool    `json:"available"`
	Position         int     `json:"position"`
}

// FeaturedItem is a product promoted on the home page.
type FeaturedItem struct {
	Title       string     `json:"title"`
	Price       string     `json:"price,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	ProductURL  string     `json:"product_url,omitempty"`
	Description string     `json:"description,omitempty"`
	Provenance  Provenance `json:"provenance"`
}

// PolicyType enumerates the policy pages a store can publish.
type PolicyType string

const (
	PolicyPrivacy  PolicyType = "privacy"
	PolicyReturn   PolicyType = "return"
	PolicyRefund   PolicyType = "refund"
	PolicyTerms    PolicyType = "terms"
	PolicyShipping PolicyType = "shipping"
)

// Policy is the text of one policy page.
type Policy struct {
	Type    PolicyType `json:"type"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	URL     string     `json:"url"`
}

// QAPair is a question and its answer.
type QAPair struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Category   *string    `json:"category,omitempty"`
	Provenance Provenance `json:"provenance"`
}

// Platform is a supported social network.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformPinterest Platform = "pinterest"
	PlatformSnapchat  Platform = "snapchat"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformTelegram  Platform = "telegram"
)

// SocialHandle is a link to the store's account on a social platform.
type SocialHandle struct {
	Platform Platform `json:"platform"`
	Username *string  `json:"username,omitempty"`
	URL      string   `json:"url"`
}

// ContactInfo holds the best contact value of each kind. Each slice has at most one element.
type ContactInfo struct {
	Emails         []string `json:"emails"`
	Phones         []string `json:"phones"`
	Addresses      []string `json:"addresses"`
	ContactPageURL string   `json:"contact_page_url,omitempty"`
}

// Empty reports whether no contact value was found.
func (c ContactInfo) Empty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0 && len(c.Addresses) == 0
}

// LinkCategory is one of the fixed navigation link categories.
type LinkCategory string

const (
	LinkContact        LinkCategory = "contact"
	LinkAbout          LinkCategory = "about"
	LinkBlog           LinkCategory = "blog"
	LinkCareers        LinkCategory = "careers"
	LinkPress          LinkCategory = "press"
	LinkHelp           LinkCategory = "help"
	LinkService        LinkCategory = "service"
	LinkFAQ            LinkCategory = "faq"
	LinkStoreLocator   LinkCategory = "store_locator"
	LinkWholesale      LinkCategory = "wholesale"
	LinkAffiliate      LinkCategory = "affiliate"
	LinkSustainability LinkCategory = "sustainability"
	LinkReviews        LinkCategory = "reviews"
)

// NavLink is the best link found for a category.
type NavLink struct {
	Title    string       `json:"title"`
	URL      string       `json:"url"`
	Category LinkCategory `json:"category"`
}

// Competitor describes a suggested competing store.
type Competitor struct {
	URL            string     `json:"url"`
	Domain         string     `json:"domain"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Confidence     string     `json:"confidence"`
	Source         string     `json:"source"`
	Strength       string     `json:"strength,omitempty"`
	MarketPosition string     `json:"market_position,omitempty"`
	Provenance     Provenance `json:"provenance"`
}

// PageKind tells how a fetched body was decoded.
type PageKind string

const (
	KindHTML PageKind = "html"
	KindJSON PageKind = "json"
)

// Page is the raw content fetched for one candidate URL.
type Page struct {
	URL          string    `json:"url"`
	Kind         PageKind  `json:"kind"`
	Body         string    `json:"body,omitempty"`
	JSON         any       `json:"json,omitempty"`
	StatusCode   int       `json:"status_code"`
	FetchedAt    time.Time `json:"fetched_at"`
	ResponseTime int64     `json:"response_time_ms"`
}

// HasContent reports whether the page carries a non-empty body.
func (p *Page) HasContent() bool {
	if p == nil {
		return false
	}
	if p.Kind == KindJSON {
		return p.JSON != nil
	}
	return p.Body != ""
}

// PageSet maps every requested URL to its page. A nil value marks a URL that
// could not be fetched.
type PageSet map[string]*Page

// Get returns the page for url if it was fetched.
func (ps PageSet) Get(url string) (*Page, bool) {
	p, ok := ps[url]
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// Fetched counts the URLs that yielded non-empty content.
func (ps PageSet) Fetched() int {
	n := 0
	for _, p := range ps {
		if p.HasContent() {
			n++
		}
	}
	return n
}
