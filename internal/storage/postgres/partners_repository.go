package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/partners"
)

var _ partners.Repository = (*PartnerRepository)(nil)

type PartnerRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const partnerColumns = `p.id, p.title, p.description, p.logo_id, p.is_key_partner, p.is_visible,
       p.target_url, p.url_title`

func scanPartner(scanner pgx.Row) (partners.Partner, error) {
	var (
		partner     partners.Partner
		description *string
		targetURL   *string
		urlTitle    *string
	)
	err := scanner.Scan(
		&partner.ID,
		&partner.Title,
		&description,
		&partner.LogoID,
		&partner.IsKeyPartner,
		&partner.IsVisible,
		&targetURL,
		&urlTitle,
	)
	if err != nil {
		return partners.Partner{}, err
	}
	partner.Description = derefString(description)
	partner.TargetURL = partners.TargetURL{
		Href:  derefString(targetURL),
		Title: derefString(urlTitle),
	}
	return partner, nil
}

func (r *PartnerRepository) List(ctx context.Context) ([]partners.Partner, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT `+partnerColumns+`
  FROM partners p
 ORDER BY p.is_key_partner DESC, p.title ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	items, err := r.collectPartners(ctx, rows)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*partners.Partner, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT `+partnerColumns+`
  FROM partners p
 WHERE p.id = $1
`, id)

	partner, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, partners.ErrNotFound
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	if err := r.hydrate(ctx, &partner); err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepository) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]partners.Partner, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT `+partnerColumns+`
  FROM partners p
  JOIN streetcode_partners link ON link.partner_id = p.id
 WHERE link.streetcode_id = $1
 ORDER BY p.is_key_partner DESC, p.title ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list streetcode partners: %w", err)
	}
	defer rows.Close()

	items, err := r.collectPartners(ctx, rows)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PartnerRepository) collectPartners(ctx context.Context, rows pgx.Rows) ([]partners.Partner, error) {
	items := make([]partners.Partner, 0)
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		items = append(items, partner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partners: %w", err)
	}
	rows.Close()

	for i := range items {
		if err := r.hydrate(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// hydrate loads a partner's source links and linked streetcode ids.
func (r *PartnerRepository) hydrate(ctx context.Context, partner *partners.Partner) error {
	queryer := r.queryer()

	linkRows, err := queryer.Query(ctx, `
SELECT id, partner_id, link_type, target_url
  FROM partner_source_links
 WHERE partner_id = $1
 ORDER BY id ASC
`, partner.ID)
	if err != nil {
		return fmt.Errorf("list partner source links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var link partners.SourceLink
		if err := linkRows.Scan(&link.ID, &link.PartnerID, &link.LinkType, &link.TargetURL); err != nil {
			return fmt.Errorf("scan partner source link: %w", err)
		}
		partner.SourceLinks = append(partner.SourceLinks, link)
	}
	if err := linkRows.Err(); err != nil {
		return fmt.Errorf("iterate partner source links: %w", err)
	}

	idRows, err := queryer.Query(ctx, `
SELECT streetcode_id FROM streetcode_partners WHERE partner_id = $1 ORDER BY streetcode_id ASC
`, partner.ID)
	if err != nil {
		return fmt.Errorf("list partner streetcodes: %w", err)
	}
	defer idRows.Close()

	for idRows.Next() {
		var id int64
		if err := idRows.Scan(&id); err != nil {
			return fmt.Errorf("scan partner streetcode id: %w", err)
		}
		partner.StreetcodeIDs = append(partner.StreetcodeIDs, id)
	}
	if err := idRows.Err(); err != nil {
		return fmt.Errorf("iterate partner streetcode ids: %w", err)
	}
	return nil
}

func (r *PartnerRepository) Create(ctx context.Context, params partners.CreateParams) (*partners.Partner, error) {
	queryer := r.queryer()
	var id int64
	err := queryer.QueryRow(ctx, `
INSERT INTO partners (title, description, logo_id, is_key_partner, is_visible, target_url, url_title)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`,
		params.Title,
		nullIfEmpty(params.Description),
		params.LogoID,
		params.IsKeyPartner,
		params.IsVisible,
		nullIfEmpty(params.TargetURL),
		nullIfEmpty(params.URLTitle),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create partner: %w", err)
	}

	if err := r.replaceSourceLinks(ctx, id, params.SourceLinks); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PartnerRepository) Update(ctx context.Context, id int64, params partners.UpdateParams) (*partners.Partner, error) {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
UPDATE partners
   SET title = $2,
       description = $3,
       logo_id = $4,
       is_key_partner = $5,
       is_visible = $6,
       target_url = $7,
       url_title = $8
 WHERE id = $1
`,
		id,
		params.Title,
		nullIfEmpty(params.Description),
		params.LogoID,
		params.IsKeyPartner,
		params.IsVisible,
		nullIfEmpty(params.TargetURL),
		nullIfEmpty(params.URLTitle),
	)
	if err != nil {
		return nil, fmt.Errorf("update partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, partners.ErrNotFound
	}

	if err := r.replaceSourceLinks(ctx, id, params.SourceLinks); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PartnerRepository) replaceSourceLinks(ctx context.Context, partnerID int64, links []partners.SourceLinkParams) error {
	queryer := r.queryer()
	if _, err := queryer.Exec(ctx, `DELETE FROM partner_source_links WHERE partner_id = $1`, partnerID); err != nil {
		return fmt.Errorf("clear partner source links: %w", err)
	}
	for _, link := range links {
		_, err := queryer.Exec(ctx, `
INSERT INTO partner_source_links (partner_id, link_type, target_url)
VALUES ($1, $2, $3)
`, partnerID, link.LinkType, link.TargetURL)
		if err != nil {
			return fmt.Errorf("insert partner source link: %w", err)
		}
	}
	return nil
}

func (r *PartnerRepository) Delete(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return partners.ErrNotFound
	}
	return nil
}

func (r *PartnerRepository) Link(ctx context.Context, partnerID, streetcodeID int64) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `
INSERT INTO streetcode_partners (partner_id, streetcode_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, partnerID, streetcodeID)
	if err != nil {
		return fmt.Errorf("link partner: %w", err)
	}
	return nil
}

func (r *PartnerRepository) Unlink(ctx context.Context, partnerID, streetcodeID int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
DELETE FROM streetcode_partners WHERE partner_id = $1 AND streetcode_id = $2
`, partnerID, streetcodeID)
	if err != nil {
		return fmt.Errorf("unlink partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return partners.ErrNotFound
	}
	return nil
}

func (r *PartnerRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
