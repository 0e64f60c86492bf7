// Package authz contiene las reglas puras de autorización (sin acceso a datos).
package authz

// Nombres de roles de personal interno. Esta lista es la única definición de "staff"
// en todo el sistema: los guards de rutas llaman a IsStaff, nunca la redefinen.
const (
	RoleAdministrador    = "administrador"
	RoleSastre           = "sastre"
	RoleSastreJefe       = "sastre_jefe"
	RoleOficialSastre    = "oficial_sastre"
	RoleVendedorBasico   = "vendedor_basico"
	RoleVendedorAvanzado = "vendedor_avanzado"

	// Nombres heredados de la primera versión del esquema.
	RoleLegacyAdmin    = "admin"
	RoleLegacyContable = "contable"
	RoleLegacyGerente  = "gerente"
)

var staffRoles = map[string]struct{}{
	RoleAdministrador:    {},
	RoleSastre:           {},
	RoleSastreJefe:       {},
	RoleOficialSastre:    {},
	RoleVendedorBasico:   {},
	RoleVendedorAvanzado: {},
	RoleLegacyAdmin:      {},
	RoleLegacyContable:   {},
	RoleLegacyGerente:    {},
}

// IsStaff es true si algún rol pertenece a la lista de personal. False con roles vacíos.
func IsStaff(roleNames []string) bool {
	for _, r := range roleNames {
		if _, ok := staffRoles[r]; ok {
			return true
		}
	}
	return false
}

