package partners

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("partner not found")

// TargetURL is the nested transfer shape exposed for a partner's raw
// target_url/url_title columns.
type TargetURL struct {
	Href  string
	Title string
}

// Source link types recognized for partner source links.
const (
	LinkTypeWebsite   = "website"
	LinkTypeFacebook  = "facebook"
	LinkTypeInstagram = "instagram"
	LinkTypeTwitter   = "twitter"
	LinkTypeYouTube   = "youtube"
)

type SourceLink struct {
	ID        int64
	PartnerID int64
	LinkType  string
	TargetURL string
}

type Partner struct {
	ID            int64
	Title         string
	Description   string
	LogoID        *int64
	IsKeyPartner  bool
	IsVisible     bool
	TargetURL     TargetURL
	SourceLinks   []SourceLink
	StreetcodeIDs []int64
}

type SourceLinkParams struct {
	LinkType  string `validate:"required,oneof=website facebook instagram twitter youtube"`
	TargetURL string `validate:"required,url,max=255"`
}

type CreateParams struct {
	Title        string `validate:"required,max=100"`
	Description  string `validate:"max=450"`
	LogoID       *int64
	IsKeyPartner bool
	IsVisible    bool
	TargetURL    string `validate:"omitempty,url,max=255"`
	URLTitle     string `validate:"max=100"`
	SourceLinks  []SourceLinkParams
}

// UpdateParams replaces the whole partner record including its source links.
type UpdateParams = CreateParams

type Repository interface {
	List(ctx context.Context) ([]Partner, error)
	GetByID(ctx context.Context, id int64) (*Partner, error)
	ListByStreetcode(ctx context.Context, streetcodeID int64) ([]Partner, error)
	Create(ctx context.Context, params CreateParams) (*Partner, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Partner, error)
	Delete(ctx context.Context, id int64) error
	Link(ctx context.Context, partnerID, streetcodeID int64) error
	Unlink(ctx context.Context, partnerID, streetcodeID int64) error
}
