package assistant

import (
	"fmt"
	"strings"
)

// OfficialSites lists the vendor support portals, hardware news sites
// and community forums the assistant trusts. Search queries are
// restricted to these domains so answers come from pages a technician
// would actually cite.
var OfficialSites = []string{
	"support.microsoft.com",
	"support.apple.com",
	"support.lenovo.com",
	"support.hp.com",
	"dell.com/support",
	"acer.com/support",
	"asus.com/support",
	"support.intel.com",
	"nvidia.com/support",
	"techspot.com",
	"tomshardware.com",
	"bleepingcomputer.com",
	"majorgeeks.com",
	"howtogeek.com",
	"digitaltrends.com",
	"techrepublic.com",
	"pcmag.com",
	"computerworld.com",
	"makeuseof.com",
	"lifewire.com",
	"superuser.com",
	"stackoverflow.com",
	"askubuntu.com",
	"tenforums.com",
	"windowsreport.com",
	"sevenforums.com",
	"linux.org",
	"reddit.com/r/techsupport",
	"techradar.com",
	"theverge.com",
	"techcommunity.microsoft.com",
	"recoverit.wondershare.com",
}

// RestrictToOfficialSites rewrites a query so search engines only
// return results from the given domains, using the site: operator:
//
//	laptop won't boot (site:a.com OR site:b.com)
//
// An empty site list returns the query unchanged.
func RestrictToOfficialSites(query string, sites []string) string {
	if len(sites) == 0 {
		return query
	}
	restrictions := make([]string, 0, len(sites))
	for _, site := range sites {
		restrictions = append(restrictions, "site:"+site)
	}
	return fmt.Sprintf("%s (%s)", query, strings.Join(restrictions, " OR "))
}
