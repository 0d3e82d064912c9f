package service

// Site is the scope an attachment is addressed under, as supplied by
// the external site registry.
type Site struct {
	Slug        string
	MediaDomain string
}

// SiteResolver fronts the site registry collaborator. Resolution
// failures surface as ErrSiteUnavailable (kind ErrUnavailable).
type SiteResolver interface {
	Resolve(slug string) (Site, error)
}

// StaticSiteResolver resolves a single fixed site. Used by
// single-tenant deployments and tests.
type StaticSiteResolver struct {
	Site Site
}

// Resolve implements SiteResolver.
func (r StaticSiteResolver) Resolve(slug string) (Site, error) {
	if slug != r.Site.Slug {
		return Site{}, ErrSiteUnavailable
	}
	return r.Site, nil
}
