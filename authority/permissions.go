package authority

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

// capability strings scoped to a company as "<capability>_<companyID>"
const (
	CapContractRead  = "contract-read"
	CapContractWrite = "contract-write"
	CapWorkRead      = "work-read"
	CapWorkWrite     = "work-write"

	RoleAdmin       = "admin"
	SystemAdminPerm = "system-admin"
)

type Permissions []string

func (p Permissions) HasPerm(perm string) bool {
	for _, v := range p {
		if strings.EqualFold(v, perm) {
			return true
		}
	}
	return false
}

func (p Permissions) HasCompanyPerm(companyID types.ID, capability string) bool {
	return p.HasPerm(capability + "_" + companyID.String())
}

func (p Permissions) HasAnyCompanyPerm(companyID types.ID, capabilities ...string) bool {
	for _, capability := range capabilities {
		if p.HasCompanyPerm(companyID, capability) {
			return true
		}
	}
	return false
}

func (p Permissions) HasAllCompanyPerms(companyID types.ID, capabilities ...string) bool {
	for _, capability := range capabilities {
		if !p.HasCompanyPerm(companyID, capability) {
			return false
		}
	}
	return true
}

func (p Permissions) IsCompanyAdmin(companyID types.ID) bool {
	return p.HasCompanyPerm(companyID, RoleAdmin)
}

func (p Permissions) IsSystemAdmin() bool {
	return p.HasPerm(SystemAdminPerm)
}

// VisibleCompanies lists the company scopes present in the permission set.
func (p Permissions) VisibleCompanies() []types.ID {
	var companyIds []types.ID
	seen := map[types.ID]bool{}
	for _, v := range p {
		idx := strings.LastIndex(v, "_")
		if idx <= 0 {
			continue
		}
		id, err := types.ParseID(v[idx+1:])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		companyIds = append(companyIds, id)
	}
	if companyIds == nil {
		return []types.ID{}
	}
	return companyIds
}
