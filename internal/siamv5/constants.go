// Package siamv5 talks to the current SIAM portal. Listings come back
// as JSON, detail pages and daybook rows as embedded HTML fragments.
package siamv5

const (
	connectPath = "/actuel/lib/core/auth/"
	plannerPath = "/actuel/appli/planner/?action=doFilter"
	daybookPath = "/actuel/appli/daybook/?action=doFilter"
	detailPath  = "/actuel/appli/planner/occurrence/?action=doDisplay&source=PLN&mode=search&popup=1&Occurrence[id]="

	sourcePlanner = "PLN"
	sourceDaybook = "DBK"

	// search body expected by the doFilter endpoints. The refiner list
	// mirrors what the portal frontend sends, the backend rejects
	// shorter variants.
	searchBodyFormat = "mode=search&refiners=refiner_window%%7Crefiner_toManage%%7Crefiner_moduletypes%%7Crefiner_sites-1%%7Crefiner_chains%%7Crefiner_managers-1%%7Crefiner_tags%%7Crefiner_reference%%7Crefiner_keywords%%7Crefiner_date%%7Crefiner_sites-2%%7Crefiner_managers-2%%7Crefiner_supervisions%%7Crefiner_colors&refiner_window=%s%%3B%s%%3B-1%%3Bmonths%%3B-0%%3Bdays&refiner_moduletypes=&refiner_sites-1=&refiner_managers-1=&refiner_tags=&refiner_date=10%%2F07%%2F2018&refiner_sites-2=&refiner_managers-2=&refiner_supervisions=&refiner_colors=statusCS&search_dateRef=&search_totalItems=&search_itemsPerPage=300&search_order=ASC&source=%s"
)
