// File: internal/poster/payload.go
package poster

import "fmt"

// OpenSetting is the article visibility level.
type OpenSetting string

const (
	// OpenPublic makes the article visible to everyone, inside and outside
	// the community.
	OpenPublic OpenSetting = "public"
	// OpenMembers restricts the article to community members.
	OpenMembers OpenSetting = "members"
	// OpenPrivate hides the article from everyone but the author.
	OpenPrivate OpenSetting = "private"
)

// flags expands the visibility level into the three wire booleans.
func (o OpenSetting) flags() (open, naverOpen, externalOpen bool) {
	switch o {
	case OpenPublic:
		return true, true, false
	case OpenMembers:
		return true, false, false
	default:
		return false, false, false
	}
}

// DeliveryType is a trade delivery method code.
type DeliveryType string

const (
	// DeliveryMeetup is an in-person handover.
	DeliveryMeetup DeliveryType = "M"
	// DeliveryParcel is a shipped parcel.
	DeliveryParcel DeliveryType = "D"
	// DeliveryOnline is an online transfer of the goods.
	DeliveryOnline DeliveryType = "O"
)

// ProductCondition is a trade item condition code.
type ProductCondition string

const (
	// ConditionNew means unopened.
	ConditionNew ProductCondition = "N"
	// ConditionAlmostNew means lightly used.
	ConditionAlmostNew ProductCondition = "A"
	// ConditionUsed means visibly used.
	ConditionUsed ProductCondition = "U"
)

// ImageAttachment describes an image already hosted on the platform's CDN.
// The posting API only accepts previously uploaded resources; the client
// never uploads image bytes itself.
type ImageAttachment struct {
	URL      string
	Path     string
	Domain   string
	FileName string
	FileSize int64
	Width    int
	Height   int
}

// TradeOptions carries the marketplace listing fields attached to a trade
// article.
type TradeOptions struct {
	Cost          int
	DeliveryTypes []DeliveryType
	Condition     ProductCondition
	NpayRemit     bool
	OpenPhoneNo   bool
	ImageURL      string
}

// Payload is one article to publish: the target board, the content, and the
// publishing options. Trade is nil for a plain article.
type Payload struct {
	CafeID  string
	MenuID  int
	Subject string
	Content string

	Open          OpenSetting
	EnableComment bool
	EnableScrap   bool
	EnableCopy    bool
	UseAutoSource bool
	Tags          []string

	Image *ImageAttachment
	Trade *TradeOptions
}

// Validate checks the fields the wire format cannot express being absent.
func (p *Payload) Validate() error {
	if p.CafeID == "" {
		return fmt.Errorf("payload requires a cafe id")
	}
	if p.MenuID <= 0 {
		return fmt.Errorf("payload requires a positive menu id")
	}
	if p.Subject == "" {
		return fmt.Errorf("payload requires a subject")
	}
	switch p.Open {
	case OpenPublic, OpenMembers, OpenPrivate:
	default:
		return fmt.Errorf("unknown open setting %q", p.Open)
	}
	if p.Trade != nil {
		if p.Trade.Cost < 0 {
			return fmt.Errorf("trade cost must not be negative")
		}
		if len(p.Trade.DeliveryTypes) == 0 {
			return fmt.Errorf("trade articles require at least one delivery type")
		}
	}
	return nil
}

// article is the wire representation of the publishing options.
type article struct {
	CafeID        string   `json:"cafeId"`
	ContentJSON   string   `json:"contentJson"`
	From          string   `json:"from"`
	MenuID        int      `json:"menuId"`
	Subject       string   `json:"subject"`
	TagList       []string `json:"tagList"`
	EditorVersion int      `json:"editorVersion"`
	ParentID      int      `json:"parentId"`
	Open          bool     `json:"open"`
	NaverOpen     bool     `json:"naverOpen"`
	ExternalOpen  bool     `json:"externalOpen"`
	EnableComment bool     `json:"enableComment"`
	EnableScrap   bool     `json:"enableScrap"`
	EnableCopy    bool     `json:"enableCopy"`
	UseAutoSource bool     `json:"useAutoSource"`
	CclTypes      []string `json:"cclTypes"`
	UseCcl        bool     `json:"useCcl"`
}

// personalTradeDirect is the wire representation of a direct-trade listing.
// Category codes are the platform's fixed used-goods taxonomy.
type personalTradeDirect struct {
	Category1        string         `json:"category1"`
	Category2        string         `json:"category2"`
	Category3        string         `json:"category3"`
	Cost             int            `json:"cost"`
	DeliveryTypes    []DeliveryType `json:"deliveryTypes"`
	ProductCondition string         `json:"productCondition"`
	TradeRegions     []string       `json:"tradeRegions"`
	Watermark        bool           `json:"watermark"`
	PaymentCorp      string         `json:"paymentCorp"`
	NpayRemit        bool           `json:"npayRemit"`
	Quantity         int            `json:"quantity"`
	ExpireDate       string         `json:"expireDate"`
	AllowedPayments  []string       `json:"allowedPayments"`
	MenuID           int            `json:"menuId"`
	Title            string         `json:"title"`
	Specification    string         `json:"specification"`
	ImgURL           string         `json:"imgUrl"`
	OpenPhoneNo      bool           `json:"openPhoneNo"`
	UseOtn           bool           `json:"useOtn"`
	ChannelNo        string         `json:"channelNo"`
	ChannelProductNo string         `json:"channelProductNo"`
	StorefarmImgURL  string         `json:"storefarmImgUrl"`
	UploadPhoto      struct{}       `json:"uploadPhoto"`
}

// envelope is the full request body.
type envelope struct {
	Article             article              `json:"article"`
	TradeArticle        bool                 `json:"tradeArticle"`
	PersonalTradeDirect *personalTradeDirect `json:"personalTradeDirect,omitempty"`
}

const (
	tradeCategory1 = "50000008"
	tradeCategory2 = "50000165"
	tradeCategory3 = "50001021"
)

// buildEnvelope assembles the request body from a validated payload and its
// serialized content document.
func buildEnvelope(p *Payload, contentJSON string) envelope {
	open, naverOpen, externalOpen := p.Open.flags()

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	env := envelope{
		Article: article{
			CafeID:        p.CafeID,
			ContentJSON:   contentJSON,
			From:          "pc",
			MenuID:        p.MenuID,
			Subject:       p.Subject,
			TagList:       tags,
			EditorVersion: 4,
			ParentID:      0,
			Open:          open,
			NaverOpen:     naverOpen,
			ExternalOpen:  externalOpen,
			EnableComment: p.EnableComment,
			EnableScrap:   p.EnableScrap,
			EnableCopy:    p.EnableCopy,
			UseAutoSource: p.UseAutoSource,
			CclTypes:      []string{},
			UseCcl:        false,
		},
		TradeArticle: p.Trade != nil,
	}

	if p.Trade != nil {
		env.PersonalTradeDirect = &personalTradeDirect{
			Category1:        tradeCategory1,
			Category2:        tradeCategory2,
			Category3:        tradeCategory3,
			Cost:             p.Trade.Cost,
			DeliveryTypes:    p.Trade.DeliveryTypes,
			ProductCondition: string(p.Trade.Condition),
			TradeRegions:     []string{},
			Watermark:        true,
			PaymentCorp:      "NONE",
			NpayRemit:        p.Trade.NpayRemit,
			Quantity:         0,
			ExpireDate:       "Invalid date",
			AllowedPayments:  []string{},
			MenuID:           p.MenuID,
			Title:            p.Subject,
			Specification:    p.Subject,
			ImgURL:           p.Trade.ImageURL,
			OpenPhoneNo:      p.Trade.OpenPhoneNo,
		}
	}
	return env
}
