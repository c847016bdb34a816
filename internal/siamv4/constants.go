// Package siamv4 talks to the legacy SIAM portal, a server rendered PHP
// application scraped page by page.
package siamv4

const (
	connectPath    = "/actuel/appli/commun/utilisateur/connecter.php"
	disconnectPath = "/actuel/appli/commun/utilisateur/deconnecter.php"
	agendaPath     = "/actuel/appli/agenda/?action=lister"
	daybookPath    = "/actuel/appli/main_courante/?action=lister"
	detailPath     = "/actuel/appli/agenda/?id="

	// identifier of the shared reporting account on the portal side
	portalUserID = 7
)
